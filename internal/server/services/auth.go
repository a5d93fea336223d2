package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// AuthService coordinates the identity store, the hasher and the token
// issuer. It keeps no mutable state after construction and holds no lock
// across store or hashing calls.
type AuthService struct {
	store  IdentityStore
	hasher PasswordHasher
	issuer TokenIssuer
	ledger RefreshLedger
	logger logging.Logger
	obs    *instruments

	// verified against when the account or credential is missing
	dummySalt []byte
	dummyHash string
}

type options struct {
	ledger RefreshLedger
	meter  metric.Meter
	tracer trace.Tracer
}

type Option func(*options)

// WithRefreshLedger enables refresh-token reuse detection.
func WithRefreshLedger(l RefreshLedger) Option {
	return func(o *options) { o.ledger = l }
}

// WithMeter and WithTracer default to the global otel providers.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

func NewAuthService(store IdentityStore, hasher PasswordHasher, issuer TokenIssuer, logger logging.Logger, opts ...Option) (*AuthService, error) {
	o := applyOptions(opts)

	obs, err := newInstruments(o.meter, o.tracer)
	if err != nil {
		return nil, fmt.Errorf("auth metrics: %w", err)
	}

	s := &AuthService{
		store:  store,
		hasher: hasher,
		issuer: issuer,
		ledger: o.ledger,
		logger: logger.With("module", "auth_service"),
		obs:    obs,
	}

	pw, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, cryptoFailure(err)
	}
	s.dummySalt, s.dummyHash, err = hasher.Hash(pw)
	if err != nil {
		return nil, cryptoFailure(err)
	}

	return s, nil
}

// Signup creates the account and its credential. An account left without a
// credential by an earlier failed signup is reused as is, keeping its role.
// The password is hashed before any record is written so a hashing failure
// never leaves an orphan account behind.
func (s *AuthService) Signup(ctx context.Context, email, password string, role models.Role) (acc *models.Account, err error) {
	ctx, done := s.obs.start(ctx, "signup")
	defer func() { done(err) }()

	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err = validatePassword(password); err != nil {
		return nil, err
	}
	if role, err = signupRole(role); err != nil {
		return nil, err
	}

	acc, err = s.store.FindAccountByEmail(ctx, email)
	switch {
	case err == nil:
		_, cerr := s.store.FindCredentialByAccountID(ctx, acc.ID)
		if cerr == nil {
			return nil, fmt.Errorf("%w: account already provisioned", common.ErrorConflict)
		}
		if !errors.Is(cerr, common.ErrorNotFound) {
			return nil, storeFailure(cerr)
		}
		s.logger.Warn(ctx, "signup: reusing account without credential", "account_id", acc.ID)
	case errors.Is(err, common.ErrorNotFound):
		acc = nil
	default:
		return nil, storeFailure(err)
	}

	salt, hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, cryptoFailure(err)
	}

	if acc == nil {
		acc, err = s.store.CreateAccount(ctx, email, role)
		if err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return nil, fmt.Errorf("%w: email already registered", common.ErrorConflict)
			}
			return nil, storeFailure(err)
		}
	}

	if _, err = s.store.CreateCredential(ctx, acc.ID, salt, hash); err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("%w: account already provisioned", common.ErrorConflict)
		}
		s.logger.Error(ctx, "signup: account created without credential", "account_id", acc.ID, "error", err)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: account disappeared before credential creation", common.ErrorStoreFailure)
		}
		return nil, storeFailure(err)
	}

	s.logger.Info(ctx, "signup completed", "account_id", acc.ID, "role", acc.Role.String())
	return acc, nil
}

// Signin verifies the password and issues a token pair carrying the
// account's current role. Unknown email, missing credential and wrong
// password all fail with the bare common.ErrorUnauthorized.
func (s *AuthService) Signin(ctx context.Context, email, password string) (pair *models.TokenPair, err error) {
	ctx, done := s.obs.start(ctx, "signin")
	defer func() { done(err) }()

	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" || len(password) > MaxPasswordLength {
		return nil, fmt.Errorf("%w: password length out of range", common.ErrorInvalidInput)
	}

	acc, err := s.store.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, s.reject(ctx, "signin", password, "unknown email")
		}
		return nil, storeFailure(err)
	}

	cred, err := s.store.FindCredentialByAccountID(ctx, acc.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, s.reject(ctx, "signin", password, "account has no credential", "account_id", acc.ID)
		}
		return nil, storeFailure(err)
	}

	ok, err := s.hasher.Verify(password, cred.Salt, cred.Hash)
	if err != nil {
		s.logger.Error(ctx, "signin: stored credential unreadable", "account_id", acc.ID, "error", err)
		return nil, cryptoFailure(err)
	}
	if !ok {
		s.logger.Warn(ctx, "signin rejected", "reason", "wrong password", "account_id", acc.ID)
		return nil, common.ErrorUnauthorized
	}

	if s.hasher.NeedsRehash(cred.Hash) {
		s.upgradeCredential(ctx, acc.ID, password)
	}

	return s.issuePair(acc)
}

// upgradeCredential re-hashes password under the current cost settings.
// Failures are logged only; the stored credential still verifies.
func (s *AuthService) upgradeCredential(ctx context.Context, accountID, password string) {
	salt, hash, err := s.hasher.Hash(password)
	if err == nil {
		_, err = s.store.ReplaceCredential(ctx, accountID, salt, hash)
	}
	if err != nil {
		s.logger.Warn(ctx, "credential rehash failed", "account_id", accountID, "error", err)
		return
	}
	s.logger.Info(ctx, "credential rehashed", "account_id", accountID)
}

// reject burns one verification against the dummy credential so that the
// response time matches a wrong-password attempt.
func (s *AuthService) reject(ctx context.Context, op, password, reason string, args ...any) error {
	_, _ = s.hasher.Verify(password, s.dummySalt, s.dummyHash)
	s.logger.Warn(ctx, op+" rejected", append([]any{"reason", reason}, args...)...)
	return common.ErrorUnauthorized
}

// RefreshToken exchanges a valid refresh token for a new pair. The role is
// read from the store, never from the presented token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (pair *models.TokenPair, err error) {
	ctx, done := s.obs.start(ctx, "refresh")
	defer func() { done(err) }()

	claims, err := s.issuer.VerifyKind(refreshToken, auth.KindRefresh)
	if err != nil {
		s.logger.Warn(ctx, "refresh rejected", "reason", err.Error())
		return nil, common.ErrorUnauthorized
	}

	acc, err := s.store.FindAccountByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "refresh rejected", "reason", "account not found", "account_id", claims.AccountID)
			return nil, common.ErrorUnauthorized
		}
		return nil, storeFailure(err)
	}

	if s.ledger != nil {
		if err = s.ledger.Consume(ctx, claims.ID, acc.ID, claims.ExpiresAt.Time); err != nil {
			if errors.Is(err, common.ErrRefreshTokenReused) {
				s.logger.Warn(ctx, "refresh rejected", "reason", "token reused", "account_id", acc.ID)
				return nil, common.ErrorUnauthorized
			}
			return nil, storeFailure(err)
		}
	}

	return s.issuePair(acc)
}

// ChangePassword replaces the credential of accountID after checking the
// current password. A fresh salt is generated for the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) (err error) {
	ctx, done := s.obs.start(ctx, "change_password")
	defer func() { done(err) }()

	if err = validatePassword(newPassword); err != nil {
		return err
	}

	cred, err := s.store.FindCredentialByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return s.reject(ctx, "password change", oldPassword, "account has no credential", "account_id", accountID)
		}
		return storeFailure(err)
	}

	ok, err := s.hasher.Verify(oldPassword, cred.Salt, cred.Hash)
	if err != nil {
		return cryptoFailure(err)
	}
	if !ok {
		s.logger.Warn(ctx, "password change rejected", "reason", "wrong password", "account_id", accountID)
		return common.ErrorUnauthorized
	}

	salt, hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return cryptoFailure(err)
	}
	if _, err = s.store.ReplaceCredential(ctx, accountID, salt, hash); err != nil {
		return storeFailure(err)
	}

	s.logger.Info(ctx, "password changed", "account_id", accountID)
	return nil
}

func (s *AuthService) issuePair(acc *models.Account) (*models.TokenPair, error) {
	access, err := s.issuer.IssueAccess(acc.ID, acc.Role)
	if err != nil {
		return nil, cryptoFailure(err)
	}
	refresh, err := s.issuer.IssueRefresh(acc.ID)
	if err != nil {
		return nil, cryptoFailure(err)
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
