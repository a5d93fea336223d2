// Package services implements the credential lifecycle (signup, signin,
// refresh-token rotation) and account profile operations on top of small
// collaborator interfaces.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// IdentityStore persists accounts and credentials. Missing records are
// reported as common.ErrorNotFound and uniqueness violations as
// common.ErrorConflict. Operations are atomic per record only.
type IdentityStore interface {
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	FindAccountByID(ctx context.Context, id string) (*models.Account, error)
	CreateAccount(ctx context.Context, email string, role models.Role) (*models.Account, error)
	UpdateAccountRole(ctx context.Context, id string, role models.Role) (*models.Account, error)
	UpdateAccountEmail(ctx context.Context, id, email string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)

	FindCredentialByAccountID(ctx context.Context, accountID string) (*models.Credential, error)
	CreateCredential(ctx context.Context, accountID string, salt []byte, hash string) (*models.Credential, error)
	ReplaceCredential(ctx context.Context, accountID string, salt []byte, hash string) (*models.Credential, error)
}

// PasswordHasher derives and checks credential hashes. NeedsRehash reports
// whether a stored hash was made with weaker settings than the current ones.
type PasswordHasher interface {
	Hash(password string) (salt []byte, hash string, err error)
	Verify(password string, salt []byte, hash string) (bool, error)
	NeedsRehash(hash string) bool
}

type TokenIssuer interface {
	IssueAccess(accountID string, role models.Role) (string, error)
	IssueRefresh(accountID string) (string, error)
	VerifyKind(token string, kind auth.Kind) (*auth.Claims, error)
}

// RefreshLedger remembers exchanged refresh tokens. Consume returns
// common.ErrRefreshTokenReused on a second call for the same id.
type RefreshLedger interface {
	Consume(ctx context.Context, tokenID, accountID string, expiresAt time.Time) error
}
