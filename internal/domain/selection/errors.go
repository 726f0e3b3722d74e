package selection

import "errors"

// Sentinel kinds for selection errors.
var (
	ErrInsufficientItems = errors.New("not enough eligible items")
)
