package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// "15m" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDriver               string         `json:"database_driver"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	TokenIssuer                  string         `json:"token_issuer"`
	AdminEmail                   string         `json:"admin_email"`
	AdminPassword                string         `json:"admin_password"`
	HashTime                     uint32         `json:"hash_time"`
	HashMemoryKiB                uint32         `json:"hash_memory_kib"`
	HashParallelism              uint8          `json:"hash_parallelism"`
	RefreshLedger                string         `json:"refresh_ledger"`
	RedisAddr                    string         `json:"redis_addr"`
	RateLimit                    float64        `json:"rate_limit"`
	RateBurst                    int            `json:"rate_burst"`
	MetricsAddr                  string         `json:"metrics_addr"`
	TraceExporter                string         `json:"trace_exporter"`
	LogLevel                     string         `json:"log_level"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	S3AccessKey                  string         `json:"s3_access_key"`
	S3SecretKey                  string         `json:"s3_secret_key"`
}

// parseJson loads the file named by -c or -config in args, if any. Keys
// missing from the file keep their current values. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config, args []string) {

	jsonConfigFile := flagx.ConfigPath(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := fromConfig(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDriver = c.DatabaseDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.TokenIssuer = c.TokenIssuer
	config.AdminEmail = c.AdminEmail
	config.AdminPassword = c.AdminPassword
	config.HashTime = c.HashTime
	config.HashMemoryKiB = c.HashMemoryKiB
	config.HashParallelism = c.HashParallelism
	config.RefreshLedger = c.RefreshLedger
	config.RedisAddr = c.RedisAddr
	config.RateLimit = c.RateLimit
	config.RateBurst = c.RateBurst
	config.MetricsAddr = c.MetricsAddr
	config.TraceExporter = c.TraceExporter
	config.LogLevel = c.LogLevel
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
}

func fromConfig(config *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrGRPC:             config.EndpointAddrGRPC,
		DatabaseDriver:               config.DatabaseDriver,
		DatabaseDSN:                  config.DatabaseDSN,
		SecretKey:                    config.SecretKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: config.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: config.RefreshTokenValidityDuration},
		TokenIssuer:                  config.TokenIssuer,
		AdminEmail:                   config.AdminEmail,
		AdminPassword:                config.AdminPassword,
		HashTime:                     config.HashTime,
		HashMemoryKiB:                config.HashMemoryKiB,
		HashParallelism:              config.HashParallelism,
		RefreshLedger:                config.RefreshLedger,
		RedisAddr:                    config.RedisAddr,
		RateLimit:                    config.RateLimit,
		RateBurst:                    config.RateBurst,
		MetricsAddr:                  config.MetricsAddr,
		TraceExporter:                config.TraceExporter,
		LogLevel:                     config.LogLevel,
		S3Region:                     config.S3Region,
		S3BaseEndpoint:               config.S3BaseEndpoint,
		S3AccessKey:                  config.S3AccessKey,
		S3SecretKey:                  config.S3SecretKey,
	}
}
