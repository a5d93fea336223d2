// Package identity is the SQL-backed identity store: accounts and their
// credentials. Every method touches a single record. Updates write and
// re-read that record inside one transaction; callers must not assume
// transactions spanning several calls.
package identity

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

type Store struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewStore(db *sql.DB, m repomanager.RepositoryManager) *Store {
	return &Store{db: db, repomanager: m}
}

// FindAccountByEmail expects an already normalized email.
func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
}

func (s *Store) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByID(ctx, id)
}

// CreateAccount relies on the UNIQUE email constraint; concurrent callers
// racing on one email get common.ErrorConflict except the winner.
func (s *Store) CreateAccount(ctx context.Context, email string, role models.Role) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).Create(ctx, email, role)
}

func (s *Store) UpdateAccountRole(ctx context.Context, id string, role models.Role) (*models.Account, error) {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.Account, error) {
		return s.repomanager.Accounts(tx).UpdateRole(ctx, id, role)
	})
}

// UpdateAccountEmail expects an already normalized email.
func (s *Store) UpdateAccountEmail(ctx context.Context, id, email string) (*models.Account, error) {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.Account, error) {
		return s.repomanager.Accounts(tx).UpdateEmail(ctx, id, email)
	})
}

func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.repomanager.Accounts(s.db).List(ctx)
}

func (s *Store) FindCredentialByAccountID(ctx context.Context, accountID string) (*models.Credential, error) {
	return s.repomanager.Credentials(s.db).GetByAccountID(ctx, accountID)
}

func (s *Store) CreateCredential(ctx context.Context, accountID string, salt []byte, hash string) (*models.Credential, error) {
	return s.repomanager.Credentials(s.db).Create(ctx, accountID, salt, hash)
}

func (s *Store) ReplaceCredential(ctx context.Context, accountID string, salt []byte, hash string) (*models.Credential, error) {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (*models.Credential, error) {
		return s.repomanager.Credentials(tx).Replace(ctx, accountID, salt, hash)
	})
}
