package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies GOVSCAN_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known GOVSCAN_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Network ──
	setStr(&cfg.Network.Name, "GOVSCAN_NETWORK_NAME")
	setStr(&cfg.Network.NodeURL, "GOVSCAN_NETWORK_NODE_URL")

	// ── Subsquare ──
	setStr(&cfg.Subsquare.BaseURL, "GOVSCAN_SUBSQUARE_BASE_URL")
	setInt(&cfg.Subsquare.PageSize, "GOVSCAN_SUBSQUARE_PAGE_SIZE")

	// ── Coingecko ──
	setStr(&cfg.Coingecko.BaseURL, "GOVSCAN_COINGECKO_BASE_URL")
	setStr(&cfg.Coingecko.ApiKey, "GOVSCAN_COINGECKO_API_KEY")
	setInt(&cfg.Coingecko.HistoryDays, "GOVSCAN_COINGECKO_HISTORY_DAYS")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "GOVSCAN_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "GOVSCAN_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "GOVSCAN_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "GOVSCAN_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "GOVSCAN_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "GOVSCAN_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "GOVSCAN_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "GOVSCAN_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "GOVSCAN_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "GOVSCAN_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "GOVSCAN_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "GOVSCAN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "GOVSCAN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "GOVSCAN_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "GOVSCAN_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "GOVSCAN_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "GOVSCAN_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "GOVSCAN_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "GOVSCAN_S3_REGION")
	setStr(&cfg.S3.Bucket, "GOVSCAN_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "GOVSCAN_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "GOVSCAN_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "GOVSCAN_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "GOVSCAN_S3_FORCE_PATH_STYLE")

	// ── Pipeline ──
	setDuration(&cfg.Pipeline.ScanInterval, "GOVSCAN_PIPELINE_SCAN_INTERVAL")
	setInt(&cfg.Pipeline.Concurrency, "GOVSCAN_PIPELINE_CONCURRENCY")
	setBool(&cfg.Pipeline.ArchiveRaw, "GOVSCAN_PIPELINE_ARCHIVE_RAW")

	// ── Top-level ──
	setStr(&cfg.Mode, "GOVSCAN_MODE")
	setStr(&cfg.LogLevel, "GOVSCAN_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
