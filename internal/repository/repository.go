package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/trainlog/trainlog/internal/normalize"
	"github.com/trainlog/trainlog/internal/rowmap"
)

var (
	// ErrNotFound is wrapped by every per-entity not-found error.
	ErrNotFound = errors.New("no rows")
	// ErrNoFields is returned when a write has no writable columns left.
	ErrNoFields = errors.New("no writable fields")
)

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// one maps the first row into T, translating an empty result into notFoundErr.
func one[T any](ctx context.Context, q sqlx.QueryerContext, notFoundErr error, query string, args ...any) (*T, error) {
	v, err := rowmap.One(ctx, q, rowmap.Struct[T](), query, args...)
	if errors.Is(err, rowmap.ErrNoRows) {
		return nil, notFoundErr
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func many[T any](ctx context.Context, q sqlx.QueryerContext, query string, args ...any) ([]*T, error) {
	rows, err := rowmap.Query(ctx, q, rowmap.Struct[T](), query, args...)
	if err != nil {
		return nil, err
	}
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func records(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) ([]rowmap.Record, error) {
	return rowmap.Query(ctx, q, rowmap.Dynamic(), query, args...)
}

// insertRow inserts the normalized columns into table and returns the new row id.
func insertRow(ctx context.Context, e sqlx.ExtContext, table string, res normalize.Result) (int64, error) {
	if res.Empty() {
		return 0, ErrNoFields
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, res.InsertColumns(), res.InsertValues())
	result, err := sqlx.NamedExecContext(ctx, e, query, res.Body)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// updateRow applies the normalized columns to rows matching where. where uses
// named parameters taken from params; a zero row count maps to notFoundErr.
func updateRow(ctx context.Context, e sqlx.ExtContext, table string, res normalize.Result, where string, params map[string]any, notFoundErr error) error {
	assignments := res.UpdateAssignments()
	if assignments == "" {
		return ErrNoFields
	}
	args := make(map[string]any, len(res.Body)+len(params))
	for k, v := range res.Body {
		args[k] = v
	}
	for k, v := range params {
		args[k] = v
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, assignments, where)
	result, err := sqlx.NamedExecContext(ctx, e, query, args)
	if err != nil {
		return err
	}
	return expectRows(result.RowsAffected, notFoundErr)
}

func expectRows(affected func() (int64, error), notFoundErr error) error {
	rows, err := affected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFoundErr
	}
	return nil
}

// likePattern escapes LIKE wildcards in s and wraps it for substring search.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
