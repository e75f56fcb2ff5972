package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrSessionNotFound = notFound("session")

// sqliteTimeLayout matches DATETIME('now') text.
const sqliteTimeLayout = "2006-01-02 15:04:05"

type SessionRepository interface {
	Create(ctx context.Context, id string) error
	Data(ctx context.Context, id string) (string, error)
	HasModifiedColumn(ctx context.Context) (bool, error)
	UpdateData(ctx context.Context, id, data string, touchModified bool) error
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO sessions (id, data) VALUES (?, '{}')`, id)
	return err
}

func (r *sessionRepository) Data(ctx context.Context, id string) (string, error) {
	var data string
	err := r.db.GetContext(ctx, &data, `SELECT data FROM sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSessionNotFound
	}
	return data, err
}

func (r *sessionRepository) HasModifiedColumn(ctx context.Context) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM pragma_table_info('sessions') WHERE name = 'modified'`)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sessionRepository) UpdateData(ctx context.Context, id, data string, touchModified bool) error {
	query := `UPDATE sessions SET data = ? WHERE id = ?`
	if touchModified {
		query = `UPDATE sessions SET modified = DATETIME('now'), data = ? WHERE id = ?`
	}
	result, err := r.db.ExecContext(ctx, query, data, id)
	if err != nil {
		return err
	}
	return expectRows(result.RowsAffected, ErrSessionNotFound)
}

func (r *sessionRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE created < ?`, cutoff.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
