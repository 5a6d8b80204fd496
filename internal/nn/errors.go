package nn

import "errors"

// Contract-violation sentinels. Every failure in this package is a
// construction-time or call-time programming error: fail fast, no retries,
// no partial success. Callers match with errors.Is.
var (
	// ErrInvalidDimensions reports a non-positive layer size or a negative
	// hidden-layer count at construction.
	ErrInvalidDimensions = errors.New("nn: invalid network dimensions")

	// ErrEmptyLayer reports an attempt to wire edges into a nil or empty layer.
	ErrEmptyLayer = errors.New("nn: cannot attach to nil or empty layer")

	// ErrNotInitialized reports a pass driven through a network that is
	// missing its input or output layer.
	ErrNotInitialized = errors.New("nn: network not properly initialized")

	// ErrSizeMismatch reports an input or expected-output vector whose length
	// does not match the corresponding layer's node count.
	ErrSizeMismatch = errors.New("nn: vector size mismatch")
)
