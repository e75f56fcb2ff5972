package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/trainlog/trainlog/internal/model"
)

type ACLRepository interface {
	Rules(ctx context.Context) ([]*model.ACLRule, error)
	Create(ctx context.Context, rule *model.ACLRule) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type aclRepository struct {
	db *sqlx.DB
}

func NewACLRepository(db *sqlx.DB) ACLRepository {
	return &aclRepository{db: db}
}

func (r *aclRepository) Rules(ctx context.Context) ([]*model.ACLRule, error) {
	return many[model.ACLRule](ctx, r.db, `SELECT * FROM acl ORDER BY allow, id`)
}

func (r *aclRepository) Create(ctx context.Context, rule *model.ACLRule) (int64, error) {
	result, err := r.db.NamedExecContext(ctx,
		`INSERT INTO acl (userRoles, method, route, allow) VALUES (:userRoles, :method, :route, :allow)`, rule)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (r *aclRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM acl WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRows(result.RowsAffected, notFound("acl rule"))
}
