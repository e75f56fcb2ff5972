// Package rowmap turns SQL result rows into application values: typed structs
// for table reads and loosely typed records for aggregate queries.
package rowmap

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// JSONPrefix marks a text column holding an embedded JSON document.
const JSONPrefix = "JSON:"

// ErrNoRows is returned by One when the query produced no row.
var ErrNoRows = errors.New("no rows")

// numberPattern accepts plain decimal literals. Exponents and leading zeros
// are left as text, so "1e3" and "007" survive as strings.
var numberPattern = regexp.MustCompile(`^[+-]?(?:(?:0|[1-9]\d*)(?:\.\d*)?|\.\d+)$`)

// Record is a single row keyed by column name.
type Record map[string]any

// RowMapper maps every row of a result set into values of type T.
type RowMapper[T any] interface {
	Map(rows *sqlx.Rows) ([]T, error)
}

// StructMapper scans rows into T using sqlx `db` struct tags.
type StructMapper[T any] struct{}

func Struct[T any]() StructMapper[T] {
	return StructMapper[T]{}
}

func (StructMapper[T]) Map(rows *sqlx.Rows) ([]T, error) {
	out := []T{}
	for rows.Next() {
		var v T
		if err := rows.StructScan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// DynamicMapper produces Records, inferring numbers and embedded JSON from
// the raw column values.
type DynamicMapper struct{}

func Dynamic() DynamicMapper {
	return DynamicMapper{}
}

func (DynamicMapper) Map(rows *sqlx.Rows) ([]Record, error) {
	out := []Record{}
	for rows.Next() {
		raw := map[string]any{}
		if err := rows.MapScan(raw); err != nil {
			return nil, err
		}
		rec := make(Record, len(raw))
		for col, v := range raw {
			rec[col] = Value(v)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Query runs query and maps every row with m.
func Query[T any](ctx context.Context, q sqlx.QueryerContext, m RowMapper[T], query string, args ...any) ([]T, error) {
	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return m.Map(rows)
}

// One runs query and returns its first row, or ErrNoRows.
func One[T any](ctx context.Context, q sqlx.QueryerContext, m RowMapper[T], query string, args ...any) (T, error) {
	var zero T
	all, err := Query(ctx, q, m, query, args...)
	if err != nil {
		return zero, err
	}
	if len(all) == 0 {
		return zero, ErrNoRows
	}
	return all[0], nil
}

// Value converts one driver value: NULL stays nil, JSON-prefixed text is
// decoded, other text is numeric-coerced, and typed values pass through.
func Value(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return textValue(string(t))
	case string:
		return textValue(t)
	default:
		return v
	}
}

func textValue(s string) any {
	if raw, ok := strings.CutPrefix(s, JSONPrefix); ok {
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			return decoded
		}
		return Coerce(raw)
	}
	return Coerce(s)
}

// Coerce returns s as int64 or float64 when it is a plain integer or decimal
// literal, and s unchanged otherwise.
func Coerce(s string) any {
	if !numberPattern.MatchString(s) {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
