// Package server wires configuration, storage, the credential services and
// the gRPC transport into a runnable application.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/secret"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/hasher"
	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/ledger"
	"github.com/dmitrijs2005/gophauth/internal/server/migrations"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

const serviceName = "gophauth"

// Version is stamped at build time.
var Version = "dev"

const ledgerPurgeInterval = time.Hour

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	redis     redis.UniversalClient
	telemetry *telemetry.Telemetry
	grpc      *gs.GRPCServer
	sqlLedger *ledger.SQL
	metrics   *http.Server
}

func NewApp(ctx context.Context, c *config.Config) (_ *App, err error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger.With("module", "app")}

	defer func() {
		if err != nil {
			app.close(ctx)
		}
	}()

	resolver := secret.NewResolver(
		secret.EnvProvider{},
		secret.FileProvider{},
		secret.NewS3Provider(secret.S3Config{
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		}),
	)
	signingKey, err := resolver.Resolve(ctx, c.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("secret key: %w", err)
	}

	app.db, err = dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	migrations.SetLogger(logger)

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}
	if err := rm.RunMigrations(ctx, app.db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	h, err := hasher.New(hasher.Params{
		Time:        c.HashTime,
		MemoryKiB:   c.HashMemoryKiB,
		Parallelism: c.HashParallelism,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewIssuer(auth.Config{
		Secret:     []byte(signingKey),
		AccessTTL:  c.AccessTokenValidityDuration,
		RefreshTTL: c.RefreshTokenValidityDuration,
		Issuer:     c.TokenIssuer,
	})
	if err != nil {
		return nil, err
	}

	app.telemetry, err = telemetry.New(ctx, telemetry.Config{
		ServiceName: serviceName,
		Version:     Version,
		Metrics:     c.MetricsAddr != "",
		Traces:      c.TraceExporter,
		SamplePct:   1,
	}, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	opts := []services.Option{
		services.WithMeter(app.telemetry.Meter()),
		services.WithTracer(app.telemetry.Tracer()),
	}
	l, err := app.newLedger(ctx, rm)
	if err != nil {
		return nil, err
	}
	if l != nil {
		opts = append(opts, services.WithRefreshLedger(l))
	}

	store := identity.NewStore(app.db, rm)

	authService, err := services.NewAuthService(store, h, issuer, logger, opts...)
	if err != nil {
		return nil, err
	}
	accountService, err := services.NewAccountService(store, logger, opts...)
	if err != nil {
		return nil, err
	}

	if c.AdminEmail != "" {
		password, err := resolver.Resolve(ctx, c.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("admin password: %w", err)
		}
		admin, err := services.ProvisionAdmin(ctx, authService, accountService, c.AdminEmail, password)
		if err != nil {
			return nil, fmt.Errorf("provision admin: %w", err)
		}
		app.logger.Info(ctx, "admin account ready", "account_id", admin.ID)
	}

	app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, authService, accountService, issuer,
		gs.WithRateLimit(c.RateLimit, c.RateBurst),
		gs.WithServerOptions(grpc.StatsHandler(otelgrpc.NewServerHandler(
			otelgrpc.WithTracerProvider(app.telemetry.TracerProvider()),
			otelgrpc.WithMeterProvider(app.telemetry.MeterProvider()),
		))),
	)

	if c.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", app.telemetry.Handler())
		app.metrics = &http.Server{Addr: c.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}

	return app, nil
}

// newLedger returns nil when reuse detection is off.
func (app *App) newLedger(ctx context.Context, rm repomanager.RepositoryManager) (services.RefreshLedger, error) {
	switch app.config.RefreshLedger {
	case "sql":
		app.sqlLedger = ledger.NewSQL(app.db, rm)
		return app.sqlLedger, nil
	case "redis":
		app.redis = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{app.config.RedisAddr}})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return ledger.NewRedis(app.redis), nil
	default:
		return nil, nil
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled, a termination signal arrives or one of
// the servers fails. Resources are released before it returns.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "version", Version)

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.grpc.Run(gctx)
	})

	if app.metrics != nil {
		g.Go(func() error {
			return app.serveMetrics(gctx)
		})
	}

	if app.sqlLedger != nil {
		g.Go(func() error {
			app.purgeLedger(gctx)
			return nil
		})
	}

	err := g.Wait()
	app.close(context.WithoutCancel(ctx))

	if err != nil {
		app.logger.Error(ctx, "app stopped with error", "error", err.Error())
	}
	return err
}

func (app *App) serveMetrics(ctx context.Context) error {
	lis, err := net.Listen("tcp", app.metrics.Addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = app.metrics.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", lis.Addr().String())

	if err := app.metrics.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *App) purgeLedger(ctx context.Context) {
	ticker := time.NewTicker(ledgerPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := app.sqlLedger.Purge(ctx, now)
			if err != nil {
				app.logger.Warn(ctx, "ledger purge failed", "error", err.Error())
				continue
			}
			app.logger.Debug(ctx, "ledger purged", "rows", n)
		}
	}
}

func (app *App) close(ctx context.Context) {
	if app.telemetry != nil {
		if err := app.telemetry.Shutdown(ctx); err != nil {
			app.logger.Warn(ctx, "telemetry shutdown", "error", err.Error())
		}
	}
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}
