package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{
			"-a", "127.0.0.1:9090", "-D", "sqlite", "-d", "db", "-s", "secret",
			"-t", "1", "-r", "3", "-i", "iss", "-ae", "root@e.com", "-ap", "secretref:env:ROOT_PW",
			"-ht", "3", "-hm", "65536", "-hp", "4",
			"-l", "redis", "-R", "localhost:6379", "-q", "2.5", "-qb", "7",
			"-m", ":9191", "-x", "stdout", "-v", "debug",
			"-sr", "us-west-1", "-se", "http://endpoint", "-sa", "ak", "-ss", "sk",
		},
			expected: &Config{
				EndpointAddrGRPC:             "127.0.0.1:9090",
				DatabaseDriver:               "sqlite",
				DatabaseDSN:                  "db",
				SecretKey:                    "secret",
				AccessTokenValidityDuration:  1 * time.Minute,
				RefreshTokenValidityDuration: 3 * time.Minute,
				TokenIssuer:                  "iss",
				AdminEmail:                   "root@e.com",
				AdminPassword:                "secretref:env:ROOT_PW",
				HashTime:                     3,
				HashMemoryKiB:                65536,
				HashParallelism:              4,
				RefreshLedger:                "redis",
				RedisAddr:                    "localhost:6379",
				RateLimit:                    2.5,
				RateBurst:                    7,
				MetricsAddr:                  ":9191",
				TraceExporter:                "stdout",
				LogLevel:                     "debug",
				S3Region:                     "us-west-1",
				S3BaseEndpoint:               "http://endpoint",
				S3AccessKey:                  "ak",
				S3SecretKey:                  "sk",
			}},
		{name: "foreign flags ignored", args: []string{"-config", "x.json", "-unknown", "1", "-s", "k"},
			expected: &Config{SecretKey: "k"}},
		{name: "bad int panics", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config, tt.args) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config, tt.args) })
			}
		})
	}
}
