package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// SQLRepository implements Repository over database/sql. Queries are
// selected per driver because placeholders differ.
type SQLRepository struct {
	db  dbx.DBTX
	q   queries
	now func() time.Time
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: postgresQueries, now: time.Now}
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, q: sqliteQueries, now: time.Now}
}

func (r *SQLRepository) Create(ctx context.Context, email string, role models.Role) (*models.Account, error) {
	acc := &models.Account{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      role,
		CreatedAt: r.now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, r.q.create, acc.ID, acc.Email, int32(acc.Role), acc.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email already registered", common.ErrorConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return acc, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, r.q.getByID, id))
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, r.q.getByEmail, email))
}

func (r *SQLRepository) UpdateRole(ctx context.Context, id string, role models.Role) (*models.Account, error) {
	res, err := r.db.ExecContext(ctx, r.q.updateRole, int32(role), id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r.reread(ctx, id, res)
}

func (r *SQLRepository) UpdateEmail(ctx context.Context, id, email string) (*models.Account, error) {
	res, err := r.db.ExecContext(ctx, r.q.updateEmail, email, id)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email already registered", common.ErrorConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r.reread(ctx, id, res)
}

// reread loads the row touched by an UPDATE, or reports it missing.
func (r *SQLRepository) reread(ctx context.Context, id string, res sql.Result) (*models.Account, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *SQLRepository) List(ctx context.Context) ([]models.Account, error) {
	rows, err := r.db.QueryContext(ctx, r.q.list)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Role, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	if err := row.Scan(&a.ID, &a.Email, &a.Role, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}
