package catalog

import "errors"

var (
	// ErrMalformedData reports a document that violates the catalog schema:
	// a missing required field, wrong growth_stages_days arity, or a value
	// of the wrong type. Loading aborts entirely; no partial catalog is
	// returned.
	ErrMalformedData = errors.New("malformed catalog data")

	// ErrUnknownCrop reports a lookup of an identifier not present in the
	// catalog.
	ErrUnknownCrop = errors.New("unknown crop")
)
