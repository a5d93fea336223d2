package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// AuthAPI is the credential side consumed by the transport.
type AuthAPI interface {
	Signup(ctx context.Context, email, password string, role models.Role) (*models.Account, error)
	Signin(ctx context.Context, email, password string) (*models.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error
}

// AccountAPI is the account management side consumed by the transport.
type AccountAPI interface {
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	UpdateRole(ctx context.Context, id string, role models.Role) (*models.Account, error)
	UpdateEmail(ctx context.Context, id, email string) (*models.Account, error)
}

type AccessVerifier interface {
	VerifyKind(token string, want auth.Kind) (*auth.Claims, error)
}

type GRPCServer struct {
	address  string
	auth     AuthAPI
	accounts AccountAPI
	verifier AccessVerifier
	logger   logging.Logger
	limiter  *multiLimiter
	extra    []grpc.ServerOption
	health   *health.Server
}

type Option func(*GRPCServer)

// WithRateLimit limits credential-bearing calls per peer address.
// A non-positive perSecond disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *GRPCServer) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = newMultiLimiter(rate.Limit(perSecond), burst, 10*time.Minute)
	}
}

// WithServerOptions appends raw grpc options such as a stats handler.
func WithServerOptions(opts ...grpc.ServerOption) Option {
	return func(s *GRPCServer) { s.extra = append(s.extra, opts...) }
}

func NewGRPCServer(address string, l logging.Logger, as AuthAPI, acs AccountAPI, v AccessVerifier, opts ...Option) *GRPCServer {
	s := &GRPCServer{
		address:  address,
		auth:     as,
		accounts: acs,
		verifier: v,
		logger:   l.With("module", "grpc_server"),
		health:   health.NewServer(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewServer builds the grpc.Server with the auth service and the standard
// health service registered.
func (s *GRPCServer) NewServer() *grpc.Server {
	opts := append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.rateLimitInterceptor, s.accessTokenInterceptor),
	}, s.extra...)

	srv := grpc.NewServer(opts...)
	api.RegisterAuthServiceServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve runs on an existing listener until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
