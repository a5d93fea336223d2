package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "gophauth.v1.AuthService"

// Full method names, also used by interceptors to pick per-method policy.
const (
	MethodSignup             = "/" + ServiceName + "/Signup"
	MethodSignin             = "/" + ServiceName + "/Signin"
	MethodRefreshToken       = "/" + ServiceName + "/RefreshToken"
	MethodChangePassword     = "/" + ServiceName + "/ChangePassword"
	MethodGetAccount         = "/" + ServiceName + "/GetAccount"
	MethodListAccounts       = "/" + ServiceName + "/ListAccounts"
	MethodUpdateAccountRole  = "/" + ServiceName + "/UpdateAccountRole"
	MethodUpdateAccountEmail = "/" + ServiceName + "/UpdateAccountEmail"
)

// AuthServiceServer is implemented by the gRPC transport.
type AuthServiceServer interface {
	Signup(context.Context, *SignupRequest) (*Account, error)
	Signin(context.Context, *SigninRequest) (*TokenPair, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenPair, error)
	ChangePassword(context.Context, *ChangePasswordRequest) (*Empty, error)
	GetAccount(context.Context, *GetAccountRequest) (*Account, error)
	ListAccounts(context.Context, *ListAccountsRequest) (*ListAccountsResponse, error)
	UpdateAccountRole(context.Context, *UpdateAccountRoleRequest) (*Account, error)
	UpdateAccountEmail(context.Context, *UpdateAccountEmailRequest) (*Account, error)
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

// unary builds a method handler that decodes Req and calls fn through the
// server's interceptor chain.
func unary[Req any, Resp any](method string, fn func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(srv.(AuthServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return fn(srv.(AuthServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Signup", Handler: unary(MethodSignup, AuthServiceServer.Signup)},
		{MethodName: "Signin", Handler: unary(MethodSignin, AuthServiceServer.Signin)},
		{MethodName: "RefreshToken", Handler: unary(MethodRefreshToken, AuthServiceServer.RefreshToken)},
		{MethodName: "ChangePassword", Handler: unary(MethodChangePassword, AuthServiceServer.ChangePassword)},
		{MethodName: "GetAccount", Handler: unary(MethodGetAccount, AuthServiceServer.GetAccount)},
		{MethodName: "ListAccounts", Handler: unary(MethodListAccounts, AuthServiceServer.ListAccounts)},
		{MethodName: "UpdateAccountRole", Handler: unary(MethodUpdateAccountRole, AuthServiceServer.UpdateAccountRole)},
		{MethodName: "UpdateAccountEmail", Handler: unary(MethodUpdateAccountEmail, AuthServiceServer.UpdateAccountEmail)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/v1/auth.json",
}

// AuthServiceClient is the client side of AuthService.
type AuthServiceClient interface {
	Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*Account, error)
	Signin(ctx context.Context, in *SigninRequest, opts ...grpc.CallOption) (*TokenPair, error)
	RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenPair, error)
	ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*Empty, error)
	GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*Account, error)
	ListAccounts(ctx context.Context, in *ListAccountsRequest, opts ...grpc.CallOption) (*ListAccountsResponse, error)
	UpdateAccountRole(ctx context.Context, in *UpdateAccountRoleRequest, opts ...grpc.CallOption) (*Account, error)
	UpdateAccountEmail(ctx context.Context, in *UpdateAccountEmailRequest, opts ...grpc.CallOption) (*Account, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, MethodSignup, in, opts)
}

func (c *authServiceClient) Signin(ctx context.Context, in *SigninRequest, opts ...grpc.CallOption) (*TokenPair, error) {
	return invoke[TokenPair](ctx, c.cc, MethodSignin, in, opts)
}

func (c *authServiceClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenPair, error) {
	return invoke[TokenPair](ctx, c.cc, MethodRefreshToken, in, opts)
}

func (c *authServiceClient) ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodChangePassword, in, opts)
}

func (c *authServiceClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, MethodGetAccount, in, opts)
}

func (c *authServiceClient) ListAccounts(ctx context.Context, in *ListAccountsRequest, opts ...grpc.CallOption) (*ListAccountsResponse, error) {
	return invoke[ListAccountsResponse](ctx, c.cc, MethodListAccounts, in, opts)
}

func (c *authServiceClient) UpdateAccountRole(ctx context.Context, in *UpdateAccountRoleRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, MethodUpdateAccountRole, in, opts)
}

func (c *authServiceClient) UpdateAccountEmail(ctx context.Context, in *UpdateAccountEmailRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, MethodUpdateAccountEmail, in, opts)
}
