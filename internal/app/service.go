// Package service provides the comparison orchestrator: it composes pair
// selection, the rating model, and the familiarity scorer against the item
// store, and implements the request-facing ServeComparison and SubmitVote
// operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/faceoff/internal/adapters/repository"
	"github.com/okian/faceoff/internal/domain/familiarity"
	"github.com/okian/faceoff/internal/domain/model"
	"github.com/okian/faceoff/internal/domain/rating"
	"github.com/okian/faceoff/internal/domain/selection"
	"github.com/okian/faceoff/pkg/logger"
	"github.com/okian/faceoff/pkg/metrics"
)

// weightDriftTolerance bounds acceptable familiarity weight-sum drift before
// a warning is logged.
const weightDriftTolerance = 0.01

// VoteResult is returned to callers after a resolved vote or skip. Item1 and
// Item2 preserve the submitted order.
type VoteResult struct {
	Item1    model.Item `json:"item1"`
	Item2    model.Item `json:"item2"`
	WasUpset bool       `json:"was_upset"`
	Skipped  bool       `json:"skipped"`
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPicker sets a custom pair picker, e.g. one with a seeded random
// source for deterministic tests.
func WithPicker(p *selection.Picker) Option {
	return func(s *Service) {
		if p != nil {
			s.picker = p
		}
	}
}

// WithClock sets the time source used to stamp votes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service is the comparison orchestrator. Each operation reads one tuning
// snapshot up front and never re-reads it mid-request, so a hot reload can
// never produce a torn view inside a single call.
type Service struct {
	store  repository.Store
	picker *selection.Picker
	now    func() time.Time
	logger logger.Logger
}

// New constructs a Service around a store with configuration options.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		picker: selection.New(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// ServeComparison picks the next pair to present. It is read-only: no
// comparison row is persisted until the client submits a vote or skip.
func (s *Service) ServeComparison(ctx context.Context) (model.Item, model.Item, error) {
	start := time.Now()
	defer func() {
		metrics.RecordSelectionLatency(float64(time.Since(start).Milliseconds()))
	}()

	t, err := s.store.Tuning(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "tuning_load")
		return model.Item{}, model.Item{}, fmt.Errorf("failed to load tuning: %w", err)
	}
	s.warnOnWeightDrift(ctx, t)

	items, err := s.store.EligibleItems(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "catalog_load")
		return model.Item{}, model.Item{}, fmt.Errorf("failed to load eligible items: %w", err)
	}

	recent, err := s.store.RecentComparisons(ctx, t.CooldownPeriod)
	if err != nil {
		metrics.RecordErrorByComponent("service", "cooldown_load")
		return model.Item{}, model.Item{}, fmt.Errorf("failed to load recent comparisons: %w", err)
	}

	pair, err := s.picker.Pick(ctx, items, recent, t)
	if err != nil {
		if errors.Is(err, selection.ErrInsufficientItems) {
			metrics.RecordErrorByComponent("service", "insufficient_items")
		}
		return model.Item{}, model.Item{}, err
	}

	metrics.RecordComparisonServed(string(pair.Mode))
	s.logger.Debug(ctx, "comparison served",
		logger.String("item1", pair.Item1.ID),
		logger.String("item2", pair.Item2.ID),
		logger.String("mode", string(pair.Mode)),
	)
	return pair.Item1, pair.Item2, nil
}

// SubmitVote resolves a presented pair. An empty winnerID records a skip.
// Upset detection happens before any rating moves; persistence of both item
// updates and the comparison row is a single atomic unit in the store.
func (s *Service) SubmitVote(ctx context.Context, item1ID, item2ID, winnerID string) (VoteResult, error) {
	start := time.Now()
	defer func() {
		metrics.RecordVoteLatency(float64(time.Since(start).Milliseconds()))
	}()

	if item1ID == item2ID {
		return VoteResult{}, fmt.Errorf("%w: pair items must be distinct", ErrInvalidWinner)
	}

	t, err := s.store.Tuning(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("service", "tuning_load")
		return VoteResult{}, fmt.Errorf("failed to load tuning: %w", err)
	}
	s.warnOnWeightDrift(ctx, t)

	item1, err := s.loadVotable(ctx, item1ID)
	if err != nil {
		return VoteResult{}, err
	}
	item2, err := s.loadVotable(ctx, item2ID)
	if err != nil {
		return VoteResult{}, err
	}

	if winnerID == "" {
		return s.submitSkip(ctx, item1, item2)
	}
	if winnerID != item1.ID && winnerID != item2.ID {
		return VoteResult{}, fmt.Errorf("%w: %s is not part of the pair", ErrInvalidWinner, winnerID)
	}

	winner, loser := item1, item2
	if winnerID == item2.ID {
		winner, loser = item2, item1
	}

	wasUpset := rating.DetectUpset(winner, loser, t)
	now := s.now()
	updatedWinner, updatedLoser := rating.ApplyResult(winner, loser, now, t)

	w, l, _, err := s.store.RecordVote(ctx,
		repository.VoteUpdate{ItemID: winner.ID, RatingDelta: updatedWinner.Rating - winner.Rating, Won: true},
		repository.VoteUpdate{ItemID: loser.ID, RatingDelta: updatedLoser.Rating - loser.Rating},
		now,
	)
	if err != nil {
		metrics.RecordErrorByComponent("service", "vote_persist")
		if errors.Is(err, repository.ErrNotFound) {
			return VoteResult{}, fmt.Errorf("%w: %v", ErrStaleComparison, err)
		}
		return VoteResult{}, fmt.Errorf("failed to record vote: %w", err)
	}

	metrics.RecordVote()
	if wasUpset {
		metrics.RecordUpset()
		s.logger.Info(ctx, "upset recorded",
			logger.String("winner", winner.ID),
			logger.Float64("winnerRating", winner.Rating),
			logger.String("loser", loser.ID),
			logger.Float64("loserRating", loser.Rating),
		)
	}

	res := VoteResult{Item1: w, Item2: l, WasUpset: wasUpset}
	if winner.ID == item2.ID {
		res.Item1, res.Item2 = l, w
	}
	return res, nil
}

// submitSkip records a skipped pair: both skip counts advance, a winnerless
// comparison row is appended, and no rating moves.
func (s *Service) submitSkip(ctx context.Context, item1, item2 model.Item) (VoteResult, error) {
	a, b, _, err := s.store.RecordSkip(ctx, item1.ID, item2.ID, s.now())
	if err != nil {
		metrics.RecordErrorByComponent("service", "skip_persist")
		if errors.Is(err, repository.ErrNotFound) {
			return VoteResult{}, fmt.Errorf("%w: %v", ErrStaleComparison, err)
		}
		return VoteResult{}, fmt.Errorf("failed to record skip: %w", err)
	}
	metrics.RecordSkip()
	return VoteResult{Item1: a, Item2: b, Skipped: true}, nil
}

// loadVotable fetches an item for vote resolution; a missing or
// no-longer-eligible item means the presented comparison went stale.
func (s *Service) loadVotable(ctx context.Context, id string) (model.Item, error) {
	it, err := s.store.Item(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Item{}, fmt.Errorf("%w: %s", ErrStaleComparison, id)
		}
		return model.Item{}, fmt.Errorf("failed to load item: %w", err)
	}
	if !it.Eligible() {
		return model.Item{}, fmt.Errorf("%w: %s lost its image", ErrStaleComparison, id)
	}
	return it, nil
}

// Rankings returns the top rated items.
func (s *Service) Rankings(ctx context.Context, limit int) ([]model.Item, error) {
	items, err := s.store.Rankings(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load rankings: %w", err)
	}
	return items, nil
}

// AddItem inserts a new catalog entry, assigning an id and the default
// rating when unset.
func (s *Service) AddItem(ctx context.Context, it model.Item) (model.Item, error) {
	if it.Rating == 0 {
		it.Rating = model.DefaultRating
	}
	if err := s.store.AddItem(ctx, it); err != nil {
		return model.Item{}, fmt.Errorf("failed to add item: %w", err)
	}
	return it, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	ctx := context.Background()
	items := s.store.Count(ctx)
	comparisons := s.store.ComparisonCount(ctx)
	metrics.UpdateCatalogItems(items)
	metrics.UpdateComparisonsLogged(comparisons)
	return map[string]any{
		"totalItems":       items,
		"totalComparisons": comparisons,
	}
}

// warnOnWeightDrift logs the configuration-inconsistency warning when the
// familiarity factor weights stray from summing to one. Computation proceeds
// either way; scores are clamped.
func (s *Service) warnOnWeightDrift(ctx context.Context, t model.Tuning) {
	if drift := familiarity.WeightDrift(t); drift > weightDriftTolerance {
		s.logger.Warn(ctx, "familiarity factor weights do not sum to 1.0",
			logger.Float64("drift", drift),
		)
	}
}
