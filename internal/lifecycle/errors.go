// Package lifecycle implements the donation/request/assignment state machines
// and the rules that keep the three entities consistent. Each service owns one
// entity's transitions; cascaded writes to the other entities are best-effort
// and never unwind the primary write.
package lifecycle

import "fmt"

// ValidationError - malformed input or a failed business rule (capacity,
// schedule, hygiene). Maps to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError - a referenced entity does not exist. Maps to 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func notFoundf(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError - the actor is authenticated but not allowed to act on this
// entity. Maps to 403.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func forbiddenf(format string, args ...interface{}) error {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError - the entity's state is incompatible with the requested
// transition, including uniqueness violations. Maps to 409.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func conflictf(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}
