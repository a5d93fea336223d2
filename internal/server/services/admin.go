package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// ProvisionAdmin makes sure an admin account exists for email. A missing
// account is signed up with password. An existing account is promoted when
// needed and keeps its current password.
func ProvisionAdmin(ctx context.Context, as *AuthService, acs *AccountService, email, password string) (*models.Account, error) {
	acc, err := as.Signup(ctx, email, password, models.RoleAdmin)
	if errors.Is(err, common.ErrorConflict) {
		acc, err = acs.GetAccountByEmail(ctx, email)
	}
	if err != nil {
		return nil, err
	}
	if acc.Role == models.RoleAdmin {
		return acc, nil
	}

	acs.logger.Warn(ctx, "promoting existing account to admin", "account_id", acc.ID)
	return acs.UpdateRole(ctx, acc.ID, models.RoleAdmin)
}
