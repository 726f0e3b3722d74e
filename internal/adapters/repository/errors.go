package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("item not found")
	ErrDuplicateID  = errors.New("duplicate item id")
	ErrInvalidLimit = errors.New("invalid rankings limit")
)
