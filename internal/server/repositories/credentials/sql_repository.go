package credentials

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

func (r *SQLRepository) Create(ctx context.Context, accountID string, salt []byte, hash string) (*models.Credential, error) {
	now := r.now().UTC()
	c := &models.Credential{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Salt:      salt,
		Hash:      hash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.ExecContext(ctx, r.q.create, c.ID, c.AccountID, c.Salt, c.Hash, now)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return nil, fmt.Errorf("%w: credential already exists", common.ErrorConflict)
		case dbx.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("%w: account %s", common.ErrorNotFound, accountID)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *SQLRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Credential, error) {
	c := &models.Credential{}
	err := r.db.QueryRowContext(ctx, r.q.getByAccountID, accountID).
		Scan(&c.ID, &c.AccountID, &c.Salt, &c.Hash, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *SQLRepository) Replace(ctx context.Context, accountID string, salt []byte, hash string) (*models.Credential, error) {
	res, err := r.db.ExecContext(ctx, r.q.replace, salt, hash, r.now().UTC(), accountID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: salt reused", common.ErrorConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}

	return r.GetByAccountID(ctx, accountID)
}
