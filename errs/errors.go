// Package errs defines the error taxonomy shared by the availability and
// booking packages. Controllers map these to HTTP status codes.
package errs

import "fmt"

// NotFoundError: a referenced business, employee, service or appointment
// does not exist.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.Key)
}

func NotFound(entity string, key any) error {
	return &NotFoundError{Entity: entity, Key: key}
}

// InvalidRuleError: malformed weekly rule or break data. Surfaced, never
// degraded to "no slots", so operator mistakes stay visible.
type InvalidRuleError struct {
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return "invalid rule: " + e.Reason
}

func InvalidRule(format string, args ...any) error {
	return &InvalidRuleError{Reason: fmt.Sprintf(format, args...)}
}

// PolicyRejectedError: the requested date lies outside the booking notice or
// advance window. Distinct from a fully booked day.
type PolicyRejectedError struct {
	Reason string
}

func (e *PolicyRejectedError) Error() string {
	return "booking policy rejected request: " + e.Reason
}

func PolicyRejected(format string, args ...any) error {
	return &PolicyRejectedError{Reason: fmt.Sprintf(format, args...)}
}

// ConflictError: the slot was taken between generation and commit.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

// InvalidTransitionError: an illegal lifecycle move.
type InvalidTransitionError struct {
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return "invalid transition: " + e.Reason
}

func InvalidTransition(format string, args ...any) error {
	return &InvalidTransitionError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError: malformed caller input (bad time format, start >= end,
// weekday out of range, non-ISO date).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func Validation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
