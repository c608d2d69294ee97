package schema

import "errors"

// Sentinel errors of the grouping-and-ranking pipeline. Wrap them with %w and test with errors.Is.
var (
	// ErrMalformedRecord marks a raw record with an empty title, negative counts or a foreign category.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrOutOfOrderSnapshot marks an append whose timestamp is not after the last snapshot.
	ErrOutOfOrderSnapshot = errors.New("out-of-order snapshot")

	// ErrNoData marks a ranking or series request against a history with no usable snapshot.
	ErrNoData = errors.New("no data")
)
