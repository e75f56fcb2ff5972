package service

import (
	"errors"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/trainlog/trainlog/internal/normalize"
)

// ErrForbidden is returned when the caller may see a record but not change it.
var ErrForbidden = errors.New("forbidden")

// parseObject validates that body is a JSON object and returns it parsed.
// An empty body is treated as {}.
func parseObject(body []byte) (gjson.Result, error) {
	if len(body) == 0 {
		return gjson.Parse("{}"), nil
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, normalize.ErrNotObject
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return gjson.Result{}, normalize.ErrNotObject
	}
	return parsed, nil
}

// toInt64 converts a normalized body value into an integer id.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// toFloat64 converts a normalized body value into a number.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// clampLimit applies a default and an upper bound to a client supplied limit.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
