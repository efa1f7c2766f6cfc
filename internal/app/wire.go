package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	s3blob "github.com/nkoval/govscan/internal/blob/s3"
	"github.com/nkoval/govscan/internal/cache/redis"
	"github.com/nkoval/govscan/internal/config"
	"github.com/nkoval/govscan/internal/domain"
	"github.com/nkoval/govscan/internal/interp"
	"github.com/nkoval/govscan/internal/pipeline"
	"github.com/nkoval/govscan/internal/platform/coingecko"
	"github.com/nkoval/govscan/internal/platform/node"
	"github.com/nkoval/govscan/internal/platform/subsquare"
	"github.com/nkoval/govscan/internal/registry"
	"github.com/nkoval/govscan/internal/service"
	"github.com/nkoval/govscan/internal/store/postgres"
	"github.com/nkoval/govscan/internal/xcm"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Net    domain.NetworkConfig
	Source domain.ProposalSource

	// Prices
	Prices      *service.PriceService
	QuoteLoader *service.QuoteLoader

	// Valuation
	Valuations *service.ValuationService

	// Persistence (nil in "value" mode)
	ValuationStore domain.ValuationStore
	ScanRunStore   domain.ScanRunStore

	// Pipeline
	Scanner *pipeline.Scanner
}

// needsPostgres returns true for modes that require a database connection.
func needsPostgres(mode string) bool {
	switch mode {
	case "scan", "backfill":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	net, err := domain.NetworkByName(strings.ToLower(cfg.Network.Name))
	if err != nil {
		return nil, nil, fmt.Errorf("wire: %w", err)
	}

	deps := &Dependencies{Net: net}

	// --- Node sanity check (optional) ---
	// Catches a config pointing the polkadot scanner at a kusama endpoint
	// before anything gets persisted.
	if cfg.Network.NodeURL != "" {
		props, err := node.New(cfg.Network.NodeURL).SystemProperties(ctx)
		if err != nil {
			logger.Warn("node sanity check skipped",
				slog.String("node_url", cfg.Network.NodeURL),
				slog.String("error", err.Error()),
			)
		} else if props.SS58Prefix != net.SS58Prefix || props.TokenDecimals != net.Digits[domain.KindNative] {
			cleanup()
			return nil, nil, fmt.Errorf(
				"wire: node %s reports prefix=%d decimals=%d, expected prefix=%d decimals=%d for %s",
				cfg.Network.NodeURL, props.SS58Prefix, props.TokenDecimals,
				net.SS58Prefix, net.Digits[domain.KindNative], net.Name,
			)
		}
	}

	// --- PostgreSQL (only for modes that need persistence) ---
	if needsPostgres(cfg.Mode) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.ValuationStore = postgres.NewValuationStore(pool)
		deps.ScanRunStore = postgres.NewScanRunStore(pool)
	}

	// --- Redis quote cache (optional) ---
	var quoteCache domain.QuoteCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		quoteCache = redis.NewQuoteCache(redisClient, net.Name)
	}

	// --- S3 raw proposal archival (optional) ---
	var archiver domain.ProposalArchiver
	if cfg.Pipeline.ArchiveRaw {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })
		archiver = s3blob.NewArchiver(s3Client)
	}

	// --- Quotes ---
	since := time.Now().UTC().AddDate(0, 0, -cfg.Coingecko.HistoryDays)
	gecko := coingecko.New(cfg.Coingecko.BaseURL, cfg.Coingecko.ApiKey, net.CoinID)
	deps.QuoteLoader = service.NewQuoteLoader(gecko, quoteCache, since, logger)

	series, err := deps.QuoteLoader.Load(ctx)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: load quotes: %w", err)
	}
	deps.Prices = service.NewPriceService(series, logger)

	// --- Interpreter and valuation ---
	deps.Source = subsquare.New(cfg.SubsquareBaseURL())
	interpreter := interp.New(
		registry.New(net.EraCutoverID),
		xcm.NewResolver(logger),
		net,
		logger,
	)
	deps.Valuations = service.NewValuationService(
		deps.Source, interpreter, deps.Prices,
		deps.ValuationStore, archiver, net, logger,
	)

	deps.Scanner = pipeline.NewScanner(
		deps.Source, deps.Valuations, deps.ValuationStore, deps.ScanRunStore,
		net.Name, cfg.Subsquare.PageSize, cfg.Pipeline.Concurrency, logger,
	)

	return deps, cleanup, nil
}
