package validation

import (
	"strings"
	"unicode/utf8"
)

const maxNameLength = 100

// ValidateName checks a required display field such as a username, a workout
// name or a goal title.
func ValidateName(field, name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return newError(field, "%s is required.", field)
	}

	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return newError(field, "%s is too long (max %d characters).", field, maxNameLength)
	}

	return nil
}
