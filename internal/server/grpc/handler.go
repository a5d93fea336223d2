package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Signup is open to anyone for user accounts. Any other valid role needs an
// admin access token.
func (s *GRPCServer) Signup(ctx context.Context, req *api.SignupRequest) (*api.Account, error) {
	role := models.Role(req.Role)
	if role.Valid() && role != models.RoleUser {
		if err := requireAdmin(ctx); err != nil {
			s.logger.Warn(ctx, "privileged signup refused", "role", role.String())
			return nil, err
		}
	}

	acc, err := s.auth.Signup(ctx, req.Email, req.Password, role)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAPIAccount(acc), nil
}

func (s *GRPCServer) Signin(ctx context.Context, req *api.SigninRequest) (*api.TokenPair, error) {
	pair, err := s.auth.Signin(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAPIPair(pair), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.TokenPair, error) {
	pair, err := s.auth.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAPIPair(pair), nil
}

func (s *GRPCServer) ChangePassword(ctx context.Context, req *api.ChangePasswordRequest) (*api.Empty, error) {
	claims, err := callerClaims(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.auth.ChangePassword(ctx, claims.AccountID, req.OldPassword, req.NewPassword); err != nil {
		// wrong current password; the access token itself was accepted
		if errors.Is(err, common.ErrorUnauthorized) {
			return nil, status.Error(codes.PermissionDenied, "permission denied")
		}
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

// GetAccount returns the caller's account, or any account for admins.
func (s *GRPCServer) GetAccount(ctx context.Context, req *api.GetAccountRequest) (*api.Account, error) {
	if req.Email != "" {
		if err := requireAdmin(ctx); err != nil {
			return nil, err
		}
		acc, err := s.accounts.GetAccountByEmail(ctx, req.Email)
		if err != nil {
			return nil, toStatus(err)
		}
		return toAPIAccount(acc), nil
	}

	id, err := targetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	acc, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAPIAccount(acc), nil
}

// UpdateAccountEmail changes the caller's email, or any account's for admins.
func (s *GRPCServer) UpdateAccountEmail(ctx context.Context, req *api.UpdateAccountEmailRequest) (*api.Account, error) {
	id, err := targetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	acc, err := s.accounts.UpdateEmail(ctx, id, req.Email)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAPIAccount(acc), nil
}

func (s *GRPCServer) ListAccounts(ctx context.Context, _ *api.ListAccountsRequest) (*api.ListAccountsResponse, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	list, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &api.ListAccountsResponse{Accounts: make([]api.Account, 0, len(list))}
	for i := range list {
		resp.Accounts = append(resp.Accounts, *toAPIAccount(&list[i]))
	}
	return resp, nil
}

func (s *GRPCServer) UpdateAccountRole(ctx context.Context, req *api.UpdateAccountRoleRequest) (*api.Account, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	acc, err := s.accounts.UpdateRole(ctx, req.AccountID, models.Role(req.Role))
	if err != nil {
		return nil, toStatus(err)
	}
	return toAPIAccount(acc), nil
}

func callerClaims(ctx context.Context) (*auth.Claims, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}
	return claims, nil
}

// targetAccount resolves an optional account id against the caller. Only
// admins may name another account.
func targetAccount(ctx context.Context, id string) (string, error) {
	claims, err := callerClaims(ctx)
	if err != nil {
		return "", err
	}
	if id == "" {
		return claims.AccountID, nil
	}
	if id != claims.AccountID && !isAdmin(claims) {
		return "", status.Error(codes.PermissionDenied, "permission denied")
	}
	return id, nil
}

func isAdmin(c *auth.Claims) bool {
	return c.Role != nil && *c.Role == models.RoleAdmin
}

func requireAdmin(ctx context.Context) error {
	claims, err := callerClaims(ctx)
	if err != nil {
		return err
	}
	if !isAdmin(claims) {
		return status.Error(codes.PermissionDenied, "permission denied")
	}
	return nil
}

func toAPIAccount(a *models.Account) *api.Account {
	return &api.Account{
		ID:        a.ID,
		Email:     a.Email,
		Role:      int32(a.Role),
		CreatedAt: a.CreatedAt,
	}
}

func toAPIPair(p *models.TokenPair) *api.TokenPair {
	return &api.TokenPair{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}
