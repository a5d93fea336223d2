package grpc

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// ClaimsFromContext returns the verified access-token claims stored by the
// access token interceptor.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}

// methods that need a valid access token
var protectedMethods = map[string]bool{
	api.MethodChangePassword:     true,
	api.MethodGetAccount:         true,
	api.MethodListAccounts:       true,
	api.MethodUpdateAccountRole:  true,
	api.MethodUpdateAccountEmail: true,
}

// methods where an access token is optional but checked when present
var optionalAuthMethods = map[string]bool{
	api.MethodSignup: true,
}

// methods that accept a secret from an unauthenticated caller
var rateLimitedMethods = map[string]bool{
	api.MethodSignup:         true,
	api.MethodSignin:         true,
	api.MethodRefreshToken:   true,
	api.MethodChangePassword: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	required, optional := protectedMethods[info.FullMethod], optionalAuthMethods[info.FullMethod]
	if !required && !optional {
		return handler(ctx, req)
	}

	token := accessTokenFromMetadata(ctx)
	if token == "" {
		if optional {
			return handler(ctx, req)
		}
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := s.verifier.VerifyKind(token, auth.KindAccess)
	if err != nil {
		s.logger.Warn(ctx, "access token rejected", "method", info.FullMethod, "reason", err.Error())
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	return handler(context.WithValue(ctx, claimsKey, claims), req)
}

func accessTokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
		return v[0]
	}
	if v := md.Get("authorization"); len(v) > 0 {
		if token, ok := strings.CutPrefix(v[0], "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.limiter == nil || !rateLimitedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	key := peerKey(ctx)
	if !s.limiter.allow(key) {
		s.logger.Warn(ctx, "rate limited", "method", info.FullMethod, "peer", key)

		st := status.New(codes.ResourceExhausted, "too many requests")
		if d, err := st.WithDetails(&errdetails.RetryInfo{RetryDelay: durationpb.New(s.limiter.retryAfter())}); err == nil {
			st = d
		}
		return nil, st.Err()
	}

	return handler(ctx, req)
}

func peerKey(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil && host != "" {
		return host
	}
	return p.Addr.String()
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration_ms", time.Since(start).Milliseconds()}
	switch code {
	case codes.OK:
		s.logger.Debug(ctx, "rpc", args...)
	case codes.Internal, codes.Unavailable:
		s.logger.Error(ctx, "rpc", args...)
	default:
		s.logger.Info(ctx, "rpc", args...)
	}

	return resp, err
}
