package sanitize

import "errors"

var (
	// ErrInvalidBindingShape is returned when bindings are not a keyed
	// mapping: a sequence, a non-string keyed map, or a bad key.
	ErrInvalidBindingShape = errors.New("sanitize: bindings must be a keyed mapping")

	// ErrNotSequence is returned when an ordered list is required but a
	// mapping or scalar was given.
	ErrNotSequence = errors.New("sanitize: input must be a sequence")

	// ErrUnmatchedToken is reported by Check for template tokens that have
	// no binding.
	ErrUnmatchedToken = errors.New("sanitize: unmatched template token")

	// ErrUnusedBinding is reported by Check for bindings whose token does
	// not occur in the template.
	ErrUnusedBinding = errors.New("sanitize: unused binding")
)
