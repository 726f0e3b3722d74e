package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver, cgo-free

	"github.com/okian/faceoff/internal/domain/model"
)

// SQLStore is a Store backed by database/sql. It works against SQLite
// (driver "sqlite") and Postgres (driver "postgres"); every query uses $N
// placeholders, which both drivers accept.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore opens the database, bootstraps the schema, and seeds the
// tuning row with defaults when absent.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := createSchema(db); err != nil {
		return nil, err
	}

	s := &SQLStore{db: db}
	if err := s.seedTuning(ctx, model.DefaultTuning()); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// AddItem inserts a new catalog entry.
func (s *SQLStore) AddItem(ctx context.Context, it model.Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO item (id, title, image_url, elo_rating, comparison_count, wins, losses, skip_count, last_compared_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, it.ID, it.Title, nullString(it.ImageURL), it.Rating, it.ComparisonCount, it.Wins, it.Losses, it.SkipCount, nullTime(it.LastComparedAt))
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// Item returns a single item by id.
func (s *SQLStore) Item(ctx context.Context, id string) (model.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, image_url, elo_rating, comparison_count, wins, losses, skip_count, last_compared_at
		FROM item WHERE id = $1
	`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return it, err
}

// EligibleItems returns every item that currently has an image.
func (s *SQLStore) EligibleItems(ctx context.Context) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, image_url, elo_rating, comparison_count, wins, losses, skip_count, last_compared_at
		FROM item WHERE image_url IS NOT NULL AND image_url != ''
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// Rankings returns up to limit items ordered by rating descending.
func (s *SQLStore) Rankings(ctx context.Context, limit int) ([]model.Item, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, image_url, elo_rating, comparison_count, wins, losses, skip_count, last_compared_at
		FROM item ORDER BY elo_rating DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rankings: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// Count returns the number of items tracked in the catalog.
func (s *SQLStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM item`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// ComparisonCount returns the number of rows in the comparison log.
func (s *SQLStore) ComparisonCount(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comparison`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// RecentComparisons returns up to limit comparison rows, newest first.
func (s *SQLStore) RecentComparisons(ctx context.Context, limit int) ([]model.Comparison, error) {
	if limit < 1 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item1_id, item2_id, winner_id, created_at
		FROM comparison ORDER BY created_at DESC, id LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparisons: %w", err)
	}
	defer rows.Close()

	var out []model.Comparison
	for rows.Next() {
		var c model.Comparison
		var winner sql.NullString
		if err := rows.Scan(&c.ID, &c.Item1ID, &c.Item2ID, &winner, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}
		c.WinnerID = winner.String
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comparisons: %w", err)
	}
	return out, nil
}

// RecordVote atomically applies both rating updates and appends the
// comparison row; the transaction guarantees full rollback on any failure.
func (s *SQLStore) RecordVote(ctx context.Context, winner, loser VoteUpdate, at time.Time) (model.Item, model.Item, model.Comparison, error) {
	var w, l model.Item
	var comp model.Comparison

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return w, l, comp, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := applyVoteUpdate(ctx, tx, winner, at); err != nil {
		return w, l, comp, err
	}
	if err := applyVoteUpdate(ctx, tx, loser, at); err != nil {
		return w, l, comp, err
	}

	comp = model.Comparison{
		ID:        uuid.NewString(),
		Item1ID:   winner.ItemID,
		Item2ID:   loser.ItemID,
		WinnerID:  winner.ItemID,
		CreatedAt: at,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO comparison (id, item1_id, item2_id, winner_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, comp.ID, comp.Item1ID, comp.Item2ID, comp.WinnerID, comp.CreatedAt); err != nil {
		return w, l, comp, fmt.Errorf("failed to insert comparison: %w", err)
	}

	if w, err = itemInTx(ctx, tx, winner.ItemID); err != nil {
		return w, l, comp, err
	}
	if l, err = itemInTx(ctx, tx, loser.ItemID); err != nil {
		return w, l, comp, err
	}

	if err := tx.Commit(); err != nil {
		return w, l, comp, fmt.Errorf("failed to commit vote: %w", err)
	}
	return w, l, comp, nil
}

// RecordSkip atomically bumps both skip counts and appends a winnerless row.
func (s *SQLStore) RecordSkip(ctx context.Context, item1ID, item2ID string, at time.Time) (model.Item, model.Item, model.Comparison, error) {
	var a, b model.Item
	var comp model.Comparison

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return a, b, comp, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, id := range []string{item1ID, item2ID} {
		res, err := tx.ExecContext(ctx, `UPDATE item SET skip_count = skip_count + 1 WHERE id = $1`, id)
		if err != nil {
			return a, b, comp, fmt.Errorf("failed to record skip: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return a, b, comp, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}

	comp = model.Comparison{
		ID:        uuid.NewString(),
		Item1ID:   item1ID,
		Item2ID:   item2ID,
		CreatedAt: at,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO comparison (id, item1_id, item2_id, winner_id, created_at)
		VALUES ($1, $2, $3, NULL, $4)
	`, comp.ID, comp.Item1ID, comp.Item2ID, comp.CreatedAt); err != nil {
		return a, b, comp, fmt.Errorf("failed to insert comparison: %w", err)
	}

	if a, err = itemInTx(ctx, tx, item1ID); err != nil {
		return a, b, comp, err
	}
	if b, err = itemInTx(ctx, tx, item2ID); err != nil {
		return a, b, comp, err
	}

	if err := tx.Commit(); err != nil {
		return a, b, comp, fmt.Errorf("failed to commit skip: %w", err)
	}
	return a, b, comp, nil
}

// Tuning returns the current engine configuration snapshot.
func (s *SQLStore) Tuning(ctx context.Context) (model.Tuning, error) {
	var t model.Tuning
	err := s.db.QueryRowContext(ctx, `
		SELECT familiarity_weight, cooldown_period,
		       needs_votes_confidence_threshold, needs_votes_comparison_threshold,
		       base_k_factor, high_confidence_k, medium_confidence_k, low_confidence_k,
		       high_confidence_threshold, medium_confidence_threshold,
		       upset_threshold, min_comparisons_for_confidence,
		       comparison_saturation_point, recency_decay_days,
		       comparison_factor_weight, win_rate_factor_weight,
		       recency_factor_weight, engagement_factor_weight
		FROM tuning WHERE id = 1
	`).Scan(
		&t.FamiliarityWeight, &t.CooldownPeriod,
		&t.NeedsVotesConfidenceThreshold, &t.NeedsVotesComparisonThreshold,
		&t.BaseK, &t.HighConfidenceK, &t.MediumConfidenceK, &t.LowConfidenceK,
		&t.HighConfidenceThreshold, &t.MediumConfidenceThreshold,
		&t.UpsetThreshold, &t.MinComparisonsForConfidence,
		&t.ComparisonSaturationPoint, &t.RecencyDecayDays,
		&t.ComparisonFactorWeight, &t.WinRateFactorWeight,
		&t.RecencyFactorWeight, &t.EngagementFactorWeight,
	)
	if err != nil {
		return t, fmt.Errorf("failed to load tuning: %w", err)
	}
	return t, nil
}

// SetTuning replaces the tuning row. Requests already in flight keep the
// snapshot they read.
func (s *SQLStore) SetTuning(ctx context.Context, t model.Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE tuning SET
		    familiarity_weight = $1, cooldown_period = $2,
		    needs_votes_confidence_threshold = $3, needs_votes_comparison_threshold = $4,
		    base_k_factor = $5, high_confidence_k = $6, medium_confidence_k = $7, low_confidence_k = $8,
		    high_confidence_threshold = $9, medium_confidence_threshold = $10,
		    upset_threshold = $11, min_comparisons_for_confidence = $12,
		    comparison_saturation_point = $13, recency_decay_days = $14,
		    comparison_factor_weight = $15, win_rate_factor_weight = $16,
		    recency_factor_weight = $17, engagement_factor_weight = $18
		WHERE id = 1
	`, t.FamiliarityWeight, t.CooldownPeriod,
		t.NeedsVotesConfidenceThreshold, t.NeedsVotesComparisonThreshold,
		t.BaseK, t.HighConfidenceK, t.MediumConfidenceK, t.LowConfidenceK,
		t.HighConfidenceThreshold, t.MediumConfidenceThreshold,
		t.UpsetThreshold, t.MinComparisonsForConfidence,
		t.ComparisonSaturationPoint, t.RecencyDecayDays,
		t.ComparisonFactorWeight, t.WinRateFactorWeight,
		t.RecencyFactorWeight, t.EngagementFactorWeight)
	if err != nil {
		return fmt.Errorf("failed to update tuning: %w", err)
	}
	return nil
}

func (s *SQLStore) seedTuning(ctx context.Context, t model.Tuning) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tuning (
		    id, familiarity_weight, cooldown_period,
		    needs_votes_confidence_threshold, needs_votes_comparison_threshold,
		    base_k_factor, high_confidence_k, medium_confidence_k, low_confidence_k,
		    high_confidence_threshold, medium_confidence_threshold,
		    upset_threshold, min_comparisons_for_confidence,
		    comparison_saturation_point, recency_decay_days,
		    comparison_factor_weight, win_rate_factor_weight,
		    recency_factor_weight, engagement_factor_weight
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO NOTHING
	`, t.FamiliarityWeight, t.CooldownPeriod,
		t.NeedsVotesConfidenceThreshold, t.NeedsVotesComparisonThreshold,
		t.BaseK, t.HighConfidenceK, t.MediumConfidenceK, t.LowConfidenceK,
		t.HighConfidenceThreshold, t.MediumConfidenceThreshold,
		t.UpsetThreshold, t.MinComparisonsForConfidence,
		t.ComparisonSaturationPoint, t.RecencyDecayDays,
		t.ComparisonFactorWeight, t.WinRateFactorWeight,
		t.RecencyFactorWeight, t.EngagementFactorWeight)
	if err != nil {
		return fmt.Errorf("failed to seed tuning: %w", err)
	}
	return nil
}

func applyVoteUpdate(ctx context.Context, tx *sql.Tx, u VoteUpdate, at time.Time) error {
	col := "losses"
	if u.Won {
		col = "wins"
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE item SET
		    elo_rating = elo_rating + $1,
		    comparison_count = comparison_count + 1,
		    `+col+` = `+col+` + 1,
		    last_compared_at = $2
		WHERE id = $3
	`, u.RatingDelta, at, u.ItemID)
	if err != nil {
		return fmt.Errorf("failed to update item rating: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, u.ItemID)
	}
	return nil
}

func itemInTx(ctx context.Context, tx *sql.Tx, id string) (model.Item, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, title, image_url, elo_rating, comparison_count, wins, losses, skip_count, last_compared_at
		FROM item WHERE id = $1
	`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return it, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (model.Item, error) {
	var it model.Item
	var image sql.NullString
	var last sql.NullTime
	if err := row.Scan(&it.ID, &it.Title, &image, &it.Rating, &it.ComparisonCount, &it.Wins, &it.Losses, &it.SkipCount, &last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return it, err
		}
		return it, fmt.Errorf("failed to scan item: %w", err)
	}
	it.ImageURL = image.String
	it.LastComparedAt = last.Time
	return it, nil
}

func collectItems(rows *sql.Rows) ([]model.Item, error) {
	var out []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return out, nil
}
