package domain

import "errors"

var (
	ErrUnknownFeature     = errors.New("unknown feature")
	ErrUnknownAccessLevel = errors.New("unknown access level")
)
