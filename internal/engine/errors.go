package engine

import "errors"

// Error kinds surfaced to callers. Handlers map these to HTTP statuses with
// errors.Is; everything else is treated as an internal failure.
var (
	// ErrNotFound: salon, service, staff or appointment id cannot be resolved.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInterval: start >= end or a malformed date.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrConflict: the interval is unavailable at booking time. Not retried
	// here; the caller may retry with a different slot.
	ErrConflict = errors.New("booking conflict")

	// ErrInvalidState: a lifecycle transition from a terminal or otherwise
	// disallowed state.
	ErrInvalidState = errors.New("invalid appointment state")

	// ErrPolicyViolation: duration/price constraints, e.g. a non-positive
	// service duration.
	ErrPolicyViolation = errors.New("policy violation")
)
