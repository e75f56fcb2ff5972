// Package normalize cleans client JSON bodies into column-ready values for
// inserts and updates.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"

	"github.com/trainlog/trainlog/internal/rowmap"
)

// UsersTable gets credential handling: key renames, password hashing and role stripping.
const UsersTable = "users"

var ErrNotObject = errors.New("request body must be a JSON object")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// userRenames maps client keys to users column names.
var userRenames = map[string]string{
	"email":    "Email",
	"username": "Username",
}

// Hasher turns a plaintext password into a storable hash.
type Hasher interface {
	Hash(password string) (string, error)
}

// BcryptHasher hashes with bcrypt at Cost (bcrypt.DefaultCost when zero).
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type Normalizer struct {
	hasher Hasher
}

func New(hasher Hasher) *Normalizer {
	return &Normalizer{hasher: hasher}
}

// Normalize parses body and returns its keys in document order with coerced
// values. Keys that are not plain identifiers are dropped. Nested objects and
// arrays are stored as JSON-prefixed text.
func (n *Normalizer) Normalize(table string, body []byte) (Result, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		trimmed = "{}"
	}
	if !gjson.Valid(trimmed) {
		return Result{}, ErrNotObject
	}
	parsed := gjson.Parse(trimmed)
	if !parsed.IsObject() {
		return Result{}, ErrNotObject
	}

	res := Result{Body: map[string]any{}}
	var hashErr error

	parsed.ForEach(func(k, v gjson.Result) bool {
		key := k.String()

		if table == UsersTable {
			lower := strings.ToLower(key)
			switch {
			case lower == "role" || lower == "passwordhash":
				return true
			case key == "password":
				hash, err := n.hasher.Hash(v.String())
				if err != nil {
					hashErr = err
					return false
				}
				res = res.With("PasswordHash", hash)
				return true
			}
			if renamed, ok := userRenames[key]; ok {
				key = renamed
			}
		}

		if !identifierPattern.MatchString(key) {
			return true
		}
		res = res.With(key, value(v))
		return true
	})

	if hashErr != nil {
		return Result{}, fmt.Errorf("failed to hash password: %w", hashErr)
	}
	return res, nil
}

func value(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if i, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return i
		}
		return v.Float()
	case gjson.String:
		return rowmap.Coerce(v.Str)
	default:
		return rowmap.JSONPrefix + v.Raw
	}
}

// Result is a cleaned body plus the SQL fragments derived from it. Fragments
// use sqlx named parameters bound against Body.
type Result struct {
	Columns []string
	Body    map[string]any
}

func (r Result) Has(col string) bool {
	_, ok := r.Body[col]
	return ok
}

// String returns the column value as text, or "" when absent or null.
func (r Result) String(col string) string {
	v, ok := r.Body[col]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// With returns a copy with col set to v. New columns are appended.
func (r Result) With(col string, v any) Result {
	out := r.clone()
	if _, ok := out.Body[col]; !ok {
		out.Columns = append(out.Columns, col)
	}
	out.Body[col] = v
	return out
}

// Only returns a copy restricted to the allowed columns, keeping order.
func (r Result) Only(allowed ...string) Result {
	out := Result{Body: map[string]any{}}
	for _, col := range r.Columns {
		if slices.Contains(allowed, col) {
			out.Columns = append(out.Columns, col)
			out.Body[col] = r.Body[col]
		}
	}
	return out
}

// Without returns a copy with the named columns removed.
func (r Result) Without(cols ...string) Result {
	out := Result{Body: map[string]any{}}
	for _, col := range r.Columns {
		if !slices.Contains(cols, col) {
			out.Columns = append(out.Columns, col)
			out.Body[col] = r.Body[col]
		}
	}
	return out
}

func (r Result) Empty() bool {
	return len(r.Columns) == 0
}

// InsertColumns is "a,b,c".
func (r Result) InsertColumns() string {
	return strings.Join(r.Columns, ",")
}

// InsertValues is ":a,:b,:c".
func (r Result) InsertValues() string {
	params := make([]string, len(r.Columns))
	for i, col := range r.Columns {
		params[i] = ":" + col
	}
	return strings.Join(params, ",")
}

// UpdateAssignments is "a=:a,b=:b", never including the primary key.
func (r Result) UpdateAssignments() string {
	var parts []string
	for _, col := range r.Columns {
		if col == "id" || col == "Id" {
			continue
		}
		parts = append(parts, col+"=:"+col)
	}
	return strings.Join(parts, ",")
}

func (r Result) clone() Result {
	out := Result{
		Columns: slices.Clone(r.Columns),
		Body:    make(map[string]any, len(r.Body)+1),
	}
	for k, v := range r.Body {
		out.Body[k] = v
	}
	return out
}
