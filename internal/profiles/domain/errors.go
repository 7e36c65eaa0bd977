package domain

import "errors"

var (
	ErrNoResolutionSelected    = errors.New("no resolution selected")
	ErrManualValueRequired     = errors.New("manual value is required")
	ErrUnknownResolution       = errors.New("unknown resolution")
	ErrConflictNotFound        = errors.New("conflict not found")
	ErrConflictAlreadyResolved = errors.New("conflict already resolved")
	ErrProfileNotFound         = errors.New("profile not found")
)
