package repository

import (
	"database/sql"
	"fmt"
)

// createSchema creates all tables the SQL store needs. Safe to call multiple
// times; uses IF NOT EXISTS. The DDL sticks to the type names SQLite and
// Postgres both accept.
func createSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
-- Catalog
CREATE TABLE IF NOT EXISTS item (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    image_url TEXT,
    elo_rating REAL NOT NULL DEFAULT 1500,
    comparison_count INTEGER NOT NULL DEFAULT 0,
    wins INTEGER NOT NULL DEFAULT 0,
    losses INTEGER NOT NULL DEFAULT 0,
    skip_count INTEGER NOT NULL DEFAULT 0,
    last_compared_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_item_elo_rating ON item(elo_rating);

-- Append-only comparison log
CREATE TABLE IF NOT EXISTS comparison (
    id TEXT PRIMARY KEY,
    item1_id TEXT NOT NULL REFERENCES item(id),
    item2_id TEXT NOT NULL REFERENCES item(id),
    winner_id TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_comparison_created_at ON comparison(created_at);

-- Single-row engine tuning, hot-reloadable
CREATE TABLE IF NOT EXISTS tuning (
    id INTEGER PRIMARY KEY,
    familiarity_weight REAL NOT NULL,
    cooldown_period INTEGER NOT NULL,
    needs_votes_confidence_threshold REAL NOT NULL,
    needs_votes_comparison_threshold INTEGER NOT NULL,
    base_k_factor REAL NOT NULL,
    high_confidence_k REAL NOT NULL,
    medium_confidence_k REAL NOT NULL,
    low_confidence_k REAL NOT NULL,
    high_confidence_threshold REAL NOT NULL,
    medium_confidence_threshold REAL NOT NULL,
    upset_threshold REAL NOT NULL,
    min_comparisons_for_confidence INTEGER NOT NULL,
    comparison_saturation_point INTEGER NOT NULL,
    recency_decay_days INTEGER NOT NULL,
    comparison_factor_weight REAL NOT NULL,
    win_rate_factor_weight REAL NOT NULL,
    recency_factor_weight REAL NOT NULL,
    engagement_factor_weight REAL NOT NULL
);
`
