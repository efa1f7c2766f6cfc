package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad mode", func(c *Config) { c.Mode = "turbo" }, "unknown mode"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "unknown log_level"},
		{"bad network", func(c *Config) { c.Network.Name = "westend" }, "unknown network"},
		{"bad page size", func(c *Config) { c.Subsquare.PageSize = 0 }, "page_size"},
		{"missing coingecko url", func(c *Config) { c.Coingecko.BaseURL = "" }, "base_url"},
		{"missing postgres host", func(c *Config) { c.Postgres.Host = "" }, "postgres: host"},
		{"pool bounds", func(c *Config) { c.Postgres.PoolMinConns = 50 }, "pool_min_conns"},
		{"redis addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, "redis: addr"},
		{"s3 bucket", func(c *Config) { c.Pipeline.ArchiveRaw = true; c.S3.Bucket = "" }, "s3: bucket"},
		{"scan interval", func(c *Config) { c.Pipeline.ScanInterval = duration{time.Second} }, "scan_interval"},
		{"concurrency", func(c *Config) { c.Pipeline.Concurrency = 0 }, "concurrency"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValueModeSkipsPostgresValidation(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "value"
	cfg.Postgres.Host = ""
	cfg.Postgres.Database = ""
	require.NoError(t, cfg.Validate())
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "backfill"

[network]
name = "kusama"

[pipeline]
scan_interval = "30m"
concurrency = 8
`), 0o600))

	t.Setenv("GOVSCAN_NETWORK_NAME", "polkadot")
	t.Setenv("GOVSCAN_PIPELINE_CONCURRENCY", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	// Env beats file, file beats defaults.
	assert.Equal(t, "polkadot", cfg.Network.Name)
	assert.Equal(t, 2, cfg.Pipeline.Concurrency)
	assert.Equal(t, "backfill", cfg.Mode)
	assert.Equal(t, 30*time.Minute, cfg.Pipeline.ScanInterval.Duration)
	// Untouched values keep their defaults.
	assert.Equal(t, 100, cfg.Subsquare.PageSize)
}

func TestSubsquareBaseURLDerivation(t *testing.T) {
	cfg := Defaults()
	cfg.Network.Name = "kusama"
	assert.Equal(t, "https://kusama.subsquare.io", cfg.SubsquareBaseURL())

	cfg.Subsquare.BaseURL = "http://localhost:8080"
	assert.Equal(t, "http://localhost:8080", cfg.SubsquareBaseURL())
}
