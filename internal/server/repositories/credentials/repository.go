// Package credentials declares the repository contract for credential
// records and its SQL implementation.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository persists at most one credential per account.
type Repository interface {
	// Create fails with common.ErrorConflict when the account already has a
	// credential and with common.ErrorNotFound when the account is missing.
	Create(ctx context.Context, accountID string, salt []byte, hash string) (*models.Credential, error)

	GetByAccountID(ctx context.Context, accountID string) (*models.Credential, error)

	// Replace swaps salt and hash of an existing credential.
	Replace(ctx context.Context, accountID string, salt []byte, hash string) (*models.Credential, error)
}
