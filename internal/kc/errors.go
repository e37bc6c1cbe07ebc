package kc

import "errors"

var (
	// ErrBeforePlanting reports a query for a date or day earlier than
	// planting. Elapsed days into a season are never negative.
	ErrBeforePlanting = errors.New("date precedes planting")

	// ErrInvalidCurve reports curve construction from stage boundaries that
	// are not strictly increasing, or coefficients outside [0, 2].
	ErrInvalidCurve = errors.New("invalid coefficient curve")
)
