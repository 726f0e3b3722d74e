package service

import "errors"

// Sentinel kinds for orchestrator errors.
var (
	// ErrStaleComparison means one or both presented items no longer exist
	// or lost eligibility by vote time; the caller should request a fresh
	// comparison.
	ErrStaleComparison = errors.New("stale comparison")

	// ErrInvalidWinner means the submitted winner id is not part of the
	// presented pair. Nothing is mutated.
	ErrInvalidWinner = errors.New("invalid winner")
)
