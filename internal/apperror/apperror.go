// Package apperror defines the error kinds shared by every layer of the API.
//
// Lower layers return (or wrap) an *AppError whose Err field is one of the
// sentinels below. The HTTP layer classifies errors with errors.Is against
// those sentinels in exactly one place (handler.WriteError), so new handlers
// inherit the same status mapping for free.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("malformatted id")
	ErrDuplicate       = errors.New("duplicate")
	ErrUnauthenticated = errors.New("authentication error")
	ErrForbidden       = errors.New("forbidden")
)

type AppError struct {
	Err     error  // sentinel kind, one of the Err* values above
	Cause   error  // optional: more specific reason (e.g. auth.ErrMalformedToken)
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the cause, so errors.Is matches either.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// InvalidID reports an identifier that is not syntactically valid for the
// store. It is distinct from NotFound, which means well-formed but absent.
func InvalidID(resource, id string) *AppError {
	return &AppError{
		Err:     ErrInvalidID,
		Message: fmt.Sprintf("malformatted %s id %q", resource, id),
		Field:   "id",
	}
}

func Duplicate(field, value string) *AppError {
	return &AppError{
		Err:     ErrDuplicate,
		Message: fmt.Sprintf("expected `%s` to be unique, %q is already taken", field, value),
		Field:   field,
	}
}

// Unauthenticated returns an AppError for a missing, invalid or unresolvable
// credential. HTTP handlers map this to 401 Unauthorized.
func Unauthenticated(cause error, message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Cause:   cause,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}
