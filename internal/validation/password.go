package validation

const (
	minPasswordLength = 6
	// bcrypt silently truncates passwords longer than 72 bytes
	maxPasswordLength = 72
)

// ValidatePassword enforces the length bounds bcrypt can handle.
func ValidatePassword(password string) error {
	if password == "" {
		return newError("password", "password is required.")
	}

	if len(password) < minPasswordLength {
		return newError("password", "password must be at least %d characters.", minPasswordLength)
	}

	if len(password) > maxPasswordLength {
		return newError("password", "password must not exceed %d characters.", maxPasswordLength)
	}

	return nil
}
