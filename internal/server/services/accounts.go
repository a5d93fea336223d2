package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// AccountService exposes read, email and role-management operations on
// accounts. It never touches credentials.
type AccountService struct {
	store  IdentityStore
	logger logging.Logger
	obs    *instruments
}

func NewAccountService(store IdentityStore, logger logging.Logger, opts ...Option) (*AccountService, error) {
	o := applyOptions(opts)

	obs, err := newInstruments(o.meter, o.tracer)
	if err != nil {
		return nil, fmt.Errorf("account metrics: %w", err)
	}

	return &AccountService{
		store:  store,
		logger: logger.With("module", "account_service"),
		obs:    obs,
	}, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (acc *models.Account, err error) {
	ctx, done := s.obs.start(ctx, "get_account")
	defer func() { done(err) }()

	if err = validateAccountID(id); err != nil {
		return nil, err
	}
	return s.lookup(s.store.FindAccountByID(ctx, id))
}

func (s *AccountService) GetAccountByEmail(ctx context.Context, email string) (acc *models.Account, err error) {
	ctx, done := s.obs.start(ctx, "get_account_by_email")
	defer func() { done(err) }()

	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return s.lookup(s.store.FindAccountByEmail(ctx, email))
}

// ListAccounts returns every account ordered by email.
func (s *AccountService) ListAccounts(ctx context.Context) (list []models.Account, err error) {
	ctx, done := s.obs.start(ctx, "list_accounts")
	defer func() { done(err) }()

	list, err = s.store.ListAccounts(ctx)
	if err != nil {
		return nil, storeFailure(err)
	}
	return list, nil
}

// UpdateRole changes the role of an account. Tokens already issued keep the
// old role until they expire; refresh picks up the new one.
func (s *AccountService) UpdateRole(ctx context.Context, id string, role models.Role) (acc *models.Account, err error) {
	ctx, done := s.obs.start(ctx, "update_role")
	defer func() { done(err) }()

	if err = validateAccountID(id); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %d", common.ErrorInvalidInput, role)
	}

	acc, err = s.lookup(s.store.UpdateAccountRole(ctx, id, role))
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account role updated", "account_id", id, "role", role.String())
	return acc, nil
}

// UpdateEmail moves an account to a new address. Signin uses the new email
// from then on; issued tokens are unaffected since they carry no email.
func (s *AccountService) UpdateEmail(ctx context.Context, id, email string) (acc *models.Account, err error) {
	ctx, done := s.obs.start(ctx, "update_email")
	defer func() { done(err) }()

	if err = validateAccountID(id); err != nil {
		return nil, err
	}
	if email, err = normalizeEmail(email); err != nil {
		return nil, err
	}

	acc, err = s.store.UpdateAccountEmail(ctx, id, email)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("%w: email already registered", common.ErrorConflict)
		}
		return s.lookup(nil, err)
	}

	s.logger.Info(ctx, "account email updated", "account_id", id)
	return acc, nil
}

func validateAccountID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: account id is required", common.ErrorInvalidInput)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed account id", common.ErrorInvalidInput)
	}
	return nil
}

func (s *AccountService) lookup(acc *models.Account, err error) (*models.Account, error) {
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, storeFailure(err)
	}
	return acc, nil
}
