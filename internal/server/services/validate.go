package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 1024
)

func normalizeEmail(email string) (string, error) {
	norm, ok := models.NormalizeEmail(email)
	if !ok {
		if norm == "" {
			return "", fmt.Errorf("%w: email is required", common.ErrorInvalidInput)
		}
		return "", fmt.Errorf("%w: malformed email", common.ErrorInvalidInput)
	}
	return norm, nil
}

func validatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return fmt.Errorf("%w: password must be at least %d bytes", common.ErrorInvalidInput, MinPasswordLength)
	case len(password) > MaxPasswordLength:
		return fmt.Errorf("%w: password must be at most %d bytes", common.ErrorInvalidInput, MaxPasswordLength)
	}
	return nil
}

// signupRole maps the unset role to RoleUser.
func signupRole(role models.Role) (models.Role, error) {
	if role == models.RoleUnspecified {
		return models.RoleUser, nil
	}
	if !role.Valid() {
		return 0, fmt.Errorf("%w: unknown role %d", common.ErrorInvalidInput, role)
	}
	return role, nil
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorStoreFailure, err)
}

func cryptoFailure(err error) error {
	if errors.Is(err, common.ErrorCryptoFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrorCryptoFailure, err)
}
