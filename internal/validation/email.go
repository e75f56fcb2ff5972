package validation

import (
	"net/mail"
)

// ValidateEmail validates email format and length
// Uses Go's built-in net/mail parser which follows RFC 5322
func ValidateEmail(email string) error {
	if email == "" {
		return newError("email", "email is required.")
	}

	// RFC 5321: total max 254 with @
	if len(email) > 254 {
		return newError("email", "email is too long (max 254 characters).")
	}

	// Reject display-name forms like "Bob <bob@x.com>"
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return newError("email", "email is not a valid address.")
	}

	return nil
}
