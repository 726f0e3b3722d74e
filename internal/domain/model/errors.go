package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrInvalidTuning = errors.New("invalid tuning")
)
