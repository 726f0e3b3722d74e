// Package selection picks the next comparison pair.
//
// A uniform draw splits requests three ways: familiarity-weighted sampling,
// needs-votes selection, and plain random selection. The non-familiarity
// remainder is split evenly between the latter two. Familiarity and
// needs-votes modes exclude items seen in the trailing cooldown window;
// random mode does not.
package selection

import (
	"context"
	"math/rand"
	"time"

	"github.com/okian/faceoff/internal/domain/familiarity"
	"github.com/okian/faceoff/internal/domain/model"
	"github.com/okian/faceoff/internal/domain/rating"
)

// Mode identifies the strategy that produced a pair.
type Mode string

// Selection modes.
const (
	ModeFamiliarity Mode = "familiarity"
	ModeNeedsVotes  Mode = "needs_votes"
	ModeRandom      Mode = "random"
)

// Pair is the outcome of one selection round.
type Pair struct {
	Item1 model.Item
	Item2 model.Item
	Mode  Mode
}

// Option applies a configuration option to the Picker.
type Option func(*Picker)

// WithRand sets the random source. Inject a seeded source for
// deterministic selection in tests.
func WithRand(rng *rand.Rand) Option {
	return func(p *Picker) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// WithClock sets the time source used for familiarity recency.
func WithClock(now func() time.Time) Option {
	return func(p *Picker) {
		if now != nil {
			p.now = now
		}
	}
}

// Picker chooses comparison pairs. Randomness and time are injected so the
// policy stays deterministic under test.
type Picker struct {
	rng *rand.Rand
	now func() time.Time
}

// New creates a Picker with configuration options.
func New(opts ...Option) *Picker {
	p := &Picker{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // selection bias, not security
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pick selects two distinct eligible items. items is the full catalog
// snapshot; recent is the trailing comparison log, newest first, from which
// the cooldown exclusion set is derived. Returns ErrInsufficientItems when
// fewer than two eligible items exist system-wide.
func (p *Picker) Pick(ctx context.Context, items []model.Item, recent []model.Comparison, t model.Tuning) (Pair, error) {
	if err := ctx.Err(); err != nil {
		return Pair{}, err
	}

	eligible := make([]model.Item, 0, len(items))
	for _, it := range items {
		if it.Eligible() {
			eligible = append(eligible, it)
		}
	}
	if len(eligible) < 2 {
		return Pair{}, ErrInsufficientItems
	}

	cooldown := CooldownSet(recent, t.CooldownPeriod)

	switch p.mode(t) {
	case ModeFamiliarity:
		if pair, ok := p.pickFamiliarity(eligible, cooldown, t); ok {
			return pair, nil
		}
	case ModeNeedsVotes:
		if pair, ok := p.pickNeedsVotes(eligible, cooldown, t); ok {
			return pair, nil
		}
	case ModeRandom:
	}

	// Thin filtered pools degrade to plain random over the whole eligible set.
	a, b := p.uniformPair(eligible)
	return Pair{Item1: a, Item2: b, Mode: ModeRandom}, nil
}

// CooldownSet returns the item ids appearing in the newest period
// comparisons. An empty set means no exclusion.
func CooldownSet(recent []model.Comparison, period int) map[string]struct{} {
	set := make(map[string]struct{})
	if period <= 0 {
		return set
	}
	if len(recent) > period {
		recent = recent[:period]
	}
	for _, c := range recent {
		set[c.Item1ID] = struct{}{}
		set[c.Item2ID] = struct{}{}
	}
	return set
}

// mode performs the three-way split on a single uniform draw. The interval
// layout is [0, fw) familiarity, [fw, fw+(1-fw)/2) needs-votes, rest random.
func (p *Picker) mode(t model.Tuning) Mode {
	r := p.rng.Float64()
	fw := t.FamiliarityWeight
	switch {
	case r < fw:
		return ModeFamiliarity
	case r < fw+(1-fw)/2:
		return ModeNeedsVotes
	default:
		return ModeRandom
	}
}

func (p *Picker) pickFamiliarity(eligible []model.Item, cooldown map[string]struct{}, t model.Tuning) (Pair, bool) {
	pool := outside(eligible, cooldown)
	if len(pool) < 2 {
		return Pair{}, false
	}

	now := p.now()
	weights := make([]float64, len(pool))
	for i, it := range pool {
		weights[i] = familiarity.Score(it, now, t)
	}

	first := p.weightedIndex(weights)
	a := pool[first]
	pool = append(pool[:first], pool[first+1:]...)
	weights = append(weights[:first], weights[first+1:]...)
	b := pool[p.weightedIndex(weights)]

	return Pair{Item1: a, Item2: b, Mode: ModeFamiliarity}, true
}

func (p *Picker) pickNeedsVotes(eligible []model.Item, cooldown map[string]struct{}, t model.Tuning) (Pair, bool) {
	var pool []model.Item
	for _, it := range outside(eligible, cooldown) {
		if rating.Confidence(it.ComparisonCount, t) < t.NeedsVotesConfidenceThreshold &&
			it.ComparisonCount < t.NeedsVotesComparisonThreshold {
			pool = append(pool, it)
		}
	}
	if len(pool) < 2 {
		return Pair{}, false
	}
	a, b := p.uniformPair(pool)
	return Pair{Item1: a, Item2: b, Mode: ModeNeedsVotes}, true
}

// weightedIndex draws an index proportionally to its weight via a cumulative
// scan. An all-zero weight vector degrades to a uniform draw.
func (p *Picker) weightedIndex(weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return p.rng.Intn(len(weights))
	}

	r := p.rng.Float64() * total
	var cum float64
	for i, w := range weights {
		if w > 0 {
			cum += w
		}
		if r < cum {
			return i
		}
	}
	return len(weights) - 1
}

// uniformPair draws two distinct indices uniformly. The second draw is over
// n-1 slots and shifted past the first, so a self-pair is impossible.
func (p *Picker) uniformPair(pool []model.Item) (model.Item, model.Item) {
	i := p.rng.Intn(len(pool))
	j := p.rng.Intn(len(pool) - 1)
	if j >= i {
		j++
	}
	return pool[i], pool[j]
}

func outside(items []model.Item, cooldown map[string]struct{}) []model.Item {
	if len(cooldown) == 0 {
		return append([]model.Item(nil), items...)
	}
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if _, excluded := cooldown[it.ID]; !excluded {
			out = append(out, it)
		}
	}
	return out
}
