// Package accounts declares the repository contract for account records and
// its SQL implementation.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository persists accounts. Lookups return common.ErrorNotFound for a
// missing row; Create and UpdateEmail return common.ErrorConflict when the
// email is taken.
type Repository interface {
	Create(ctx context.Context, email string, role models.Role) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateRole(ctx context.Context, id string, role models.Role) (*models.Account, error)
	UpdateEmail(ctx context.Context, id, email string) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
}
