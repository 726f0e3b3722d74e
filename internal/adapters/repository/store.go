// Package repository defines the item store contract and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/faceoff/internal/domain/model"
)

// VoteUpdate describes the per-item effect of one decided vote. Ratings move
// by delta rather than absolute value so the store can apply them inside its
// own unit of work; two concurrent votes sharing an item then serialize on
// the row instead of overwriting each other.
type VoteUpdate struct {
	ItemID      string
	RatingDelta float64
	Won         bool
}

// Store provides read/write access to the catalog, the comparison log, and
// the engine tuning snapshot.
type Store interface {
	// AddItem inserts a new catalog entry.
	AddItem(ctx context.Context, it model.Item) error

	// Item returns a single item by id. Returns ErrNotFound if absent.
	Item(ctx context.Context, id string) (model.Item, error)

	// EligibleItems returns every item that currently has an image.
	EligibleItems(ctx context.Context) ([]model.Item, error)

	// Rankings returns up to limit items ordered by rating descending.
	// Returns ErrInvalidLimit when limit is not positive.
	Rankings(ctx context.Context, limit int) ([]model.Item, error)

	// Count returns the number of items tracked in the catalog.
	Count(ctx context.Context) int

	// ComparisonCount returns the number of rows in the comparison log.
	ComparisonCount(ctx context.Context) int

	// RecentComparisons returns up to limit comparison rows, newest first.
	RecentComparisons(ctx context.Context, limit int) ([]model.Comparison, error)

	// RecordVote atomically applies both updates and appends the comparison
	// row. On any failure nothing persists. Returns the post-vote winner and
	// loser items, in that order, plus the appended row.
	RecordVote(ctx context.Context, winner, loser VoteUpdate, at time.Time) (model.Item, model.Item, model.Comparison, error)

	// RecordSkip atomically bumps both skip counts and appends a winnerless
	// comparison row. Ratings and tallies are untouched.
	RecordSkip(ctx context.Context, item1ID, item2ID string, at time.Time) (model.Item, model.Item, model.Comparison, error)

	// Tuning returns the current engine configuration snapshot.
	Tuning(ctx context.Context) (model.Tuning, error)
}
