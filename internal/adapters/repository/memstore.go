package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/faceoff/internal/domain/model"
)

// MemStore is an in-memory Store. It backs tests and serves as the default
// engine when no database DSN is configured.
//
// Writes are staged on value copies and committed under the lock only after
// every step succeeds, so a failure mid-operation leaves no partial state.
type MemStore struct {
	mu          sync.RWMutex
	items       map[string]model.Item
	order       []string // insertion order, keeps reads deterministic
	comparisons []model.Comparison
	tuning      model.Tuning

	// commitHook, when set, runs between staged writes of a vote. It exists
	// for fault-injection in atomicity tests.
	commitHook func(stage string) error
}

// MemOption applies a configuration option to the MemStore.
type MemOption func(*MemStore)

// WithTuning sets the initial tuning snapshot.
func WithTuning(t model.Tuning) MemOption {
	return func(s *MemStore) {
		s.tuning = t
	}
}

// WithCommitHook installs a hook invoked between the staged writes of
// RecordVote. A non-nil error aborts the operation before anything commits.
func WithCommitHook(hook func(stage string) error) MemOption {
	return func(s *MemStore) {
		s.commitHook = hook
	}
}

// NewMemStore creates an in-memory store with configuration options.
func NewMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{
		items:  make(map[string]model.Item),
		tuning: model.DefaultTuning(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddItem inserts a new catalog entry.
func (s *MemStore) AddItem(ctx context.Context, it model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[it.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, it.ID)
	}
	s.items[it.ID] = it
	s.order = append(s.order, it.ID)
	return nil
}

// Item returns a single item by id.
func (s *MemStore) Item(ctx context.Context, id string) (model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return model.Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return it, nil
}

// EligibleItems returns every item with an image, in insertion order.
func (s *MemStore) EligibleItems(ctx context.Context) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Item, 0, len(s.order))
	for _, id := range s.order {
		if it := s.items[id]; it.Eligible() {
			out = append(out, it)
		}
	}
	return out, nil
}

// Rankings returns up to limit items ordered by rating descending.
func (s *MemStore) Rankings(ctx context.Context, limit int) ([]model.Item, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	// Insertion sort keeps ties in stable insertion order.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Rating > out[j-1].Rating; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of items tracked in the catalog.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// ComparisonCount returns the number of rows in the comparison log.
func (s *MemStore) ComparisonCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comparisons)
}

// RecentComparisons returns up to limit comparison rows, newest first.
func (s *MemStore) RecentComparisons(ctx context.Context, limit int) ([]model.Comparison, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 0 {
		limit = 0
	}
	if limit > len(s.comparisons) {
		limit = len(s.comparisons)
	}
	out := make([]model.Comparison, 0, limit)
	for i := len(s.comparisons) - 1; i >= len(s.comparisons)-limit; i-- {
		out = append(out, s.comparisons[i])
	}
	return out, nil
}

// RecordVote atomically applies both updates and appends the comparison row.
func (s *MemStore) RecordVote(ctx context.Context, winner, loser VoteUpdate, at time.Time) (model.Item, model.Item, model.Comparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.items[winner.ItemID]
	if !ok {
		return model.Item{}, model.Item{}, model.Comparison{}, fmt.Errorf("%w: %s", ErrNotFound, winner.ItemID)
	}

	// Stage the winner on a copy; nothing is visible until commit.
	w.Rating += winner.RatingDelta
	w.ComparisonCount++
	w.Wins++
	w.LastComparedAt = at

	if err := s.hook("winner-staged"); err != nil {
		return model.Item{}, model.Item{}, model.Comparison{}, err
	}

	l, ok := s.items[loser.ItemID]
	if !ok {
		return model.Item{}, model.Item{}, model.Comparison{}, fmt.Errorf("%w: %s", ErrNotFound, loser.ItemID)
	}
	l.Rating += loser.RatingDelta
	l.ComparisonCount++
	l.Losses++
	l.LastComparedAt = at

	if err := s.hook("loser-staged"); err != nil {
		return model.Item{}, model.Item{}, model.Comparison{}, err
	}

	comp := model.Comparison{
		ID:        uuid.NewString(),
		Item1ID:   winner.ItemID,
		Item2ID:   loser.ItemID,
		WinnerID:  winner.ItemID,
		CreatedAt: at,
	}

	s.items[w.ID] = w
	s.items[l.ID] = l
	s.comparisons = append(s.comparisons, comp)
	return w, l, comp, nil
}

// RecordSkip atomically bumps both skip counts and appends a winnerless row.
func (s *MemStore) RecordSkip(ctx context.Context, item1ID, item2ID string, at time.Time) (model.Item, model.Item, model.Comparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.items[item1ID]
	if !ok {
		return model.Item{}, model.Item{}, model.Comparison{}, fmt.Errorf("%w: %s", ErrNotFound, item1ID)
	}
	b, ok := s.items[item2ID]
	if !ok {
		return model.Item{}, model.Item{}, model.Comparison{}, fmt.Errorf("%w: %s", ErrNotFound, item2ID)
	}

	a.SkipCount++
	b.SkipCount++

	comp := model.Comparison{
		ID:        uuid.NewString(),
		Item1ID:   item1ID,
		Item2ID:   item2ID,
		CreatedAt: at,
	}

	s.items[a.ID] = a
	s.items[b.ID] = b
	s.comparisons = append(s.comparisons, comp)
	return a, b, comp, nil
}

// Tuning returns the current engine configuration snapshot.
func (s *MemStore) Tuning(ctx context.Context) (model.Tuning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tuning, nil
}

// SetTuning replaces the tuning snapshot. In-flight operations keep the
// snapshot they already read.
func (s *MemStore) SetTuning(ctx context.Context, t model.Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tuning = t
	return nil
}

func (s *MemStore) hook(stage string) error {
	if s.commitHook == nil {
		return nil
	}
	return s.commitHook(stage)
}
