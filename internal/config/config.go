// Package config defines the top-level configuration for the govscan service
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by GOVSCAN_* environment variables.
type Config struct {
	Network   NetworkConfig   `toml:"network"`
	Subsquare SubsquareConfig `toml:"subsquare"`
	Coingecko CoingeckoConfig `toml:"coingecko"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Pipeline  PipelineConfig  `toml:"pipeline"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// NetworkConfig selects the chain to scan.
type NetworkConfig struct {
	// Name is the network identifier: "polkadot" or "kusama".
	Name string `toml:"name"`
	// NodeURL is an optional websocket RPC endpoint used for a startup
	// sanity check against the on-chain system properties. Empty skips
	// the check.
	NodeURL string `toml:"node_url"`
}

// SubsquareConfig holds the governance explorer API parameters.
type SubsquareConfig struct {
	// BaseURL overrides the explorer endpoint. Empty derives it from the
	// network name ("https://<network>.subsquare.io").
	BaseURL  string `toml:"base_url"`
	PageSize int    `toml:"page_size"`
}

// CoingeckoConfig holds the price API parameters.
type CoingeckoConfig struct {
	BaseURL string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	// HistoryDays is how far back the historic quote series reaches.
	HistoryDays int `toml:"history_days"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters for the quote cache.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for raw proposal
// archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// PipelineConfig holds scan-loop parameters.
type PipelineConfig struct {
	ScanInterval duration `toml:"scan_interval"`
	Concurrency  int      `toml:"concurrency"`
	// ArchiveRaw enables uploading the raw explorer payload of every
	// evaluated proposal to S3.
	ArchiveRaw bool `toml:"archive_raw"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Network: NetworkConfig{
			Name: "polkadot",
		},
		Subsquare: SubsquareConfig{
			PageSize: 100,
		},
		Coingecko: CoingeckoConfig{
			BaseURL:     "https://api.coingecko.com",
			HistoryDays: 365,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "govscan",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "govscan-proposals",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Pipeline: PipelineConfig{
			ScanInterval: duration{15 * time.Minute},
			Concurrency:  4,
			ArchiveRaw:   false,
		},
		Mode:     "scan",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":     true,
	"backfill": true,
	"value":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validNetworks enumerates the accepted values for NetworkConfig.Name.
var validNetworks = map[string]bool{
	"polkadot": true,
	"kusama":   true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, backfill, value)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if !validNetworks[strings.ToLower(c.Network.Name)] {
		errs = append(errs, fmt.Sprintf("unknown network %q (valid: polkadot, kusama)", c.Network.Name))
	}

	if c.Subsquare.PageSize < 1 || c.Subsquare.PageSize > 500 {
		errs = append(errs, fmt.Sprintf("subsquare: page_size must be 1-500, got %d", c.Subsquare.PageSize))
	}

	if c.Coingecko.BaseURL == "" {
		errs = append(errs, "coingecko: base_url must not be empty")
	}
	if c.Coingecko.HistoryDays < 1 {
		errs = append(errs, "coingecko: history_days must be >= 1")
	}

	// Postgres is needed for the persisting modes; "value" prints to stdout.
	needsPostgres := c.Mode == "scan" || c.Mode == "backfill"
	if needsPostgres {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	if c.Pipeline.ArchiveRaw {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when pipeline.archive_raw is set")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when pipeline.archive_raw is set")
		}
	}

	if c.Mode == "scan" && c.Pipeline.ScanInterval.Duration < time.Minute {
		errs = append(errs, fmt.Sprintf("pipeline: scan_interval must be >= 1m, got %s", c.Pipeline.ScanInterval.Duration))
	}
	if c.Pipeline.Concurrency < 1 {
		errs = append(errs, "pipeline: concurrency must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// SubsquareBaseURL returns the configured explorer endpoint, deriving the
// conventional per-network host when none is set.
func (c *Config) SubsquareBaseURL() string {
	if c.Subsquare.BaseURL != "" {
		return c.Subsquare.BaseURL
	}
	return fmt.Sprintf("https://%s.subsquare.io", strings.ToLower(c.Network.Name))
}
