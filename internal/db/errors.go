package db

import "strings"

// SanitizeError reduces a driver error to the first single-quoted fragment of
// its message (typically the offending column or constraint), so callers can
// surface it without echoing the full statement. Messages without a quoted
// fragment are returned unchanged.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	start := strings.IndexByte(msg, '\'')
	if start < 0 {
		return msg
	}
	end := strings.IndexByte(msg[start+1:], '\'')
	if end < 0 {
		return msg
	}
	return msg[start+1 : start+1+end]
}

// IsUniqueViolation reports whether err is a UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a FOREIGN KEY constraint failure.
func IsForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
