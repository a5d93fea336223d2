package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// methods that carry the access token
var authenticated = map[string]bool{
	api.MethodChangePassword:     true,
	api.MethodGetAccount:         true,
	api.MethodListAccounts:       true,
	api.MethodUpdateAccountRole:  true,
	api.MethodUpdateAccountEmail: true,
}

// methods that carry the access token only when one is held
var optionallyAuthenticated = map[string]bool{
	api.MethodSignup: true,
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.AuthServiceClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches the access token and, when the server
// rejects it, rotates the pair once with the refresh token and retries.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, refresh := s.tokens()

	if optionallyAuthenticated[method] && access != "" {
		ctx = withAccessToken(ctx, access)
	}
	if !authenticated[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	if access == "" {
		return ErrNotSignedIn
	}

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated || refresh == "" {
		return err
	}

	pair, rerr := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refresh})
	if rerr != nil {
		return err
	}
	s.SetTokens(*pair)

	return invoker(withAccessToken(ctx, pair.AccessToken), method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewAuthServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) SetTokens(pair api.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = pair.AccessToken
	s.refreshToken = pair.RefreshToken
}

func (s *GRPCClient) Tokens() api.TokenPair {
	a, r := s.tokens()
	return api.TokenPair{AccessToken: a, RefreshToken: r}
}

func (s *GRPCClient) Signup(ctx context.Context, email, password string, role int32) (*api.Account, error) {
	acc, err := s.client.Signup(ctx, &api.SignupRequest{Email: email, Password: password, Role: role})
	if err != nil {
		return nil, mapError(err)
	}
	return acc, nil
}

func (s *GRPCClient) Signin(ctx context.Context, email, password string) (*api.TokenPair, error) {
	pair, err := s.client.Signin(ctx, &api.SigninRequest{Email: email, Password: password})
	if err != nil {
		return nil, mapError(err)
	}
	s.SetTokens(*pair)
	return pair, nil
}

// Refresh exchanges the stored refresh token for a new pair.
func (s *GRPCClient) Refresh(ctx context.Context) (*api.TokenPair, error) {
	_, refresh := s.tokens()
	if refresh == "" {
		return nil, ErrNotSignedIn
	}

	pair, err := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refresh})
	if err != nil {
		return nil, mapError(err)
	}
	s.SetTokens(*pair)
	return pair, nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*api.Account, error) {
	acc, err := s.client.GetAccount(ctx, &api.GetAccountRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return acc, nil
}

func (s *GRPCClient) GetAccount(ctx context.Context, accountID string) (*api.Account, error) {
	acc, err := s.client.GetAccount(ctx, &api.GetAccountRequest{AccountID: accountID})
	if err != nil {
		return nil, mapError(err)
	}
	return acc, nil
}

func (s *GRPCClient) GetAccountByEmail(ctx context.Context, email string) (*api.Account, error) {
	acc, err := s.client.GetAccount(ctx, &api.GetAccountRequest{Email: email})
	if err != nil {
		return nil, mapError(err)
	}
	return acc, nil
}

// UpdateEmail changes the email of accountID, or of the signed-in account
// when accountID is empty.
func (s *GRPCClient) UpdateEmail(ctx context.Context, accountID, email string) (*api.Account, error) {
	acc, err := s.client.UpdateAccountEmail(ctx, &api.UpdateAccountEmailRequest{AccountID: accountID, Email: email})
	if err != nil {
		return nil, mapError(err)
	}
	return acc, nil
}

func (s *GRPCClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	_, err := s.client.ChangePassword(ctx, &api.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword})
	return mapError(err)
}

func (s *GRPCClient) ListAccounts(ctx context.Context) ([]api.Account, error) {
	resp, err := s.client.ListAccounts(ctx, &api.ListAccountsRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Accounts, nil
}

func (s *GRPCClient) SetRole(ctx context.Context, accountID string, role int32) (*api.Account, error) {
	acc, err := s.client.UpdateAccountRole(ctx, &api.UpdateAccountRoleRequest{AccountID: accountID, Role: role})
	if err != nil {
		return nil, mapError(err)
	}
	return acc, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.AlreadyExists:
		return ErrConflict
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.ResourceExhausted:
		return ErrRateLimited
	case codes.Unavailable:
		return ErrUnavailable
	default:
		return err
	}
}
