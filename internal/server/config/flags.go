package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

var ownedFlags = []string{
	"-a", "-D", "-d", "-s", "-t", "-r", "-i",
	"-ae", "-ap",
	"-ht", "-hm", "-hp",
	"-l", "-R", "-q", "-qb",
	"-m", "-x", "-v",
	"-sr", "-se", "-sa", "-ss",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string    gRPC bind address (e.g., ":50051")
//	-D string    database driver: postgres or sqlite
//	-d string    database DSN
//	-s string    JWT HMAC secret key or secretref
//	-t int       access token validity, minutes
//	-r int       refresh token validity, minutes
//	-i string    token issuer
//	-ae/-ap      admin email and password (or secretref) provisioned at startup
//	-ht/-hm/-hp  argon2id time, memory (KiB), parallelism
//	-l string    refresh ledger: none, sql or redis
//	-R string    redis address
//	-q/-qb       per-peer rate limit (req/s) and burst
//	-m string    metrics listen address, empty disables
//	-x string    trace exporter: none or stdout
//	-v string    log level
//	-sr/-se/-sa/-ss  S3 region, endpoint, access key, secret key
//
// Duration flags are whole minutes.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, ownedFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "D", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")
	fs.StringVar(&config.TokenIssuer, "i", config.TokenIssuer, "token issuer")
	fs.StringVar(&config.AdminEmail, "ae", config.AdminEmail, "admin email")
	fs.StringVar(&config.AdminPassword, "ap", config.AdminPassword, "admin password")

	hashTime := fs.Uint("ht", uint(config.HashTime), "argon2id time")
	hashMemory := fs.Uint("hm", uint(config.HashMemoryKiB), "argon2id memory (KiB)")
	hashParallelism := fs.Uint("hp", uint(config.HashParallelism), "argon2id parallelism")

	fs.StringVar(&config.RefreshLedger, "l", config.RefreshLedger, "refresh ledger")
	fs.StringVar(&config.RedisAddr, "R", config.RedisAddr, "redis address")
	fs.Float64Var(&config.RateLimit, "q", config.RateLimit, "auth requests per second per peer")
	fs.IntVar(&config.RateBurst, "qb", config.RateBurst, "auth request burst per peer")

	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics address")
	fs.StringVar(&config.TraceExporter, "x", config.TraceExporter, "trace exporter")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	fs.StringVar(&config.S3Region, "sr", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "se", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3AccessKey, "sa", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "ss", config.S3SecretKey, "S3 secret key")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.HashTime = uint32(*hashTime)
	config.HashMemoryKiB = uint32(*hashMemory)
	config.HashParallelism = uint8(*hashParallelism)
}
