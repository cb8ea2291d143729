package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/arbitrage"
	s3blob "github.com/arthurgayecom/arbitrage-buddy-pro/internal/blob/s3"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/cache/redis"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/config"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/notify"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/platform/kalshi"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/platform/polymarket"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/scanner"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/settlement"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/store/postgres"
)

// Dependencies bundles every component the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Stores
	OpportunityStore domain.OpportunityStore
	TradeStore       domain.TradeStore
	AlertStore       domain.AlertStore

	// Redis
	LockManager domain.LockManager
	QuoteCache  domain.QuoteCache
	EventBus    domain.EventBus

	// Connectivity probes for the health endpoint.
	DBPinger    *postgres.Client
	RedisPinger *redis.Client

	// Cold storage. Nil unless archiving is enabled.
	Archiver *s3blob.Archiver

	// Services
	Dispatcher *notify.Dispatcher
	Scanner    *scanner.Scanner
	Settlement *settlement.Engine
}

// Wire constructs all concrete implementations from the configuration and
// returns them with a cleanup function for shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.PoolMaxConns,
		MinConns: cfg.Database.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Database.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.DBPinger = pgClient
	deps.OpportunityStore = postgres.NewOpportunityStore(pool)
	deps.TradeStore = postgres.NewTradeStore(pool)
	deps.AlertStore = postgres.NewAlertStore(pool)

	// --- Redis ---
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

	deps.RedisPinger = redisClient
	deps.LockManager = redis.NewLockManager(redisClient)
	deps.QuoteCache = redis.NewQuoteCache(redisClient, cfg.Scanner.OpportunityTTL.Duration)
	deps.EventBus = redis.NewEventBus(redisClient)

	// --- S3 cold storage ---
	if cfg.Archive.Enabled {
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
		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), deps.OpportunityStore, logger)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Dispatcher = notify.NewDispatcher(senders, deps.AlertStore, cfg.Notify.Events, cfg.Notify.Timeout.Duration, logger)

	// --- Venue feeds, scanner and settlement ---
	polyFeed := polymarket.NewClient(cfg.Polymarket.GammaHost, logger)
	kalshiFeed := kalshi.NewClient(cfg.Kalshi.BaseURL, cfg.Kalshi.ApiKey, logger)

	deps.Scanner = scanner.New(
		polyFeed,
		kalshiFeed,
		arbitrage.NewTitleMatcher(cfg.Scanner.MatchPrefixLen),
		deps.OpportunityStore,
		deps.LockManager,
		deps.QuoteCache,
		deps.EventBus,
		deps.Dispatcher,
		scanner.Config{
			FetchTimeout:       cfg.Scanner.FetchTimeout.Duration,
			OpportunityTTL:     cfg.Scanner.OpportunityTTL.Duration,
			NotifyMinProfitPct: cfg.Notify.MinProfitPct,
		},
		logger,
	)

	deps.Settlement = settlement.New(deps.OpportunityStore, deps.TradeStore, deps.Dispatcher, logger)

	return deps, cleanup, nil
}
