// Package validation checks client input before it reaches the database.
package validation

import (
	"errors"
	"fmt"
)

// Error is a client-facing validation failure. Message is sent as-is in the
// error envelope.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Required fails with "<field> is required." when the value is missing.
func Required(field string, present bool) error {
	if !present {
		return newError(field, "%s is required.", field)
	}
	return nil
}

// IsValidation reports whether err carries a validation Error.
func IsValidation(err error) bool {
	var v *Error
	return errors.As(err, &v)
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
