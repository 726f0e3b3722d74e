// Package model contains domain models passed between layers.
package model

import "time"

// DefaultRating is the Elo rating assigned to newly created items.
const DefaultRating = 1500

// Item is a catalog entry subject to head-to-head comparison.
type Item struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	ImageURL        string    `json:"image_url,omitempty"` // empty means no image
	Rating          float64   `json:"rating"`
	ComparisonCount int       `json:"comparison_count"`
	Wins            int       `json:"wins"`
	Losses          int       `json:"losses"`
	SkipCount       int       `json:"skip_count"`
	LastComparedAt  time.Time `json:"last_compared_at"` // zero means never compared
}

// Eligible reports whether the item may be served in a comparison.
// Items without an image are never presented.
func (it Item) Eligible() bool {
	return it.ImageURL != ""
}

// Comparison is one served-and-resolved pair. Rows are append-only.
type Comparison struct {
	ID        string    `json:"id"`
	Item1ID   string    `json:"item1_id"`
	Item2ID   string    `json:"item2_id"`
	WinnerID  string    `json:"winner_id,omitempty"` // empty means the pair was skipped
	CreatedAt time.Time `json:"created_at"`
}

// Skipped reports whether the comparison resolved without a winner.
func (c Comparison) Skipped() bool {
	return c.WinnerID == ""
}
