package application

import "errors"

// Sentinel outcomes of engine operations. All of them are recoverable and
// reported back to the transport layer; none is ever fatal to the process.
var (
	// ErrUnknownTask is returned when an operation references a task the
	// catalog does not track for completion.
	ErrUnknownTask = errors.New("application: unknown task")
	// ErrAlreadyCompleted signals a duplicate completion attempt. The original
	// completer and time are kept; this is a no-op signal, not a failure.
	ErrAlreadyCompleted = errors.New("application: task already completed")
	// ErrNotEligible is returned when a duty assignment violates the
	// majority-presence rule.
	ErrNotEligible = errors.New("application: employee not eligible for duty")
	// ErrInvalidWeekToken is returned for malformed or non-Monday week
	// specifiers.
	ErrInvalidWeekToken = errors.New("application: invalid week token")
	// ErrThreadAlreadySet is returned when a daily thread would be redirected
	// after it has been initialised.
	ErrThreadAlreadySet = errors.New("application: daily thread already set")
	// ErrStaleState is returned when a completion arrives for a day whose
	// state has not been initialised yet.
	ErrStaleState = errors.New("application: no active day")
	// ErrUnknownEmployee is returned when a directory lookup misses.
	ErrUnknownEmployee = errors.New("application: unknown employee")
)

// ValidationError captures field level issues found while loading a stored
// document. A document with any invalid field fails to load entirely; a
// half-loaded catalog would silently drop or duplicate tasks downstream.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
