package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	entdomain "github.com/felixgeelhaar/coachly/internal/entitlements/domain"
	"github.com/felixgeelhaar/coachly/internal/entitlements/infrastructure/flags"
	"github.com/felixgeelhaar/coachly/internal/entitlements/infrastructure/purchases"
	"github.com/felixgeelhaar/coachly/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/coachly/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/coachly/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/coachly/pkg/config"
	"github.com/felixgeelhaar/coachly/pkg/observability"
)

// Flag store backends.
const (
	FlagStoreFile     = "file"
	FlagStoreSQLite   = "sqlite"
	FlagStorePostgres = "postgres"
	FlagStoreRedis    = "redis"
)

// newFlagStore opens the configured flag backend and registers its health
// check.
func (c *Container) newFlagStore(ctx context.Context, cfg *config.Config) (flags.FlagStore, error) {
	switch cfg.FlagStore {
	case FlagStoreFile, "":
		return flags.NewFileFlagStore(cfg.FlagFilePath), nil

	case FlagStoreSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		c.SQLiteDB = db
		store := flags.NewSQLiteFlagStore(db)
		c.Health.Register("flag_store", observability.PingHealthChecker("sqlite", observability.HealthStatusUnhealthy, store.Ping))
		c.Logger.Info("using SQLite flag store", "path", cfg.SQLitePath)
		return store, nil

	case FlagStorePostgres:
		if database.DetectDriver(cfg.DatabaseURL) != database.DriverPostgres {
			return nil, fmt.Errorf("FLAG_STORE=postgres requires a postgres:// DATABASE_URL")
		}
		pool, err := database.OpenPostgres(ctx, cfg.DatabaseURL, 4)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		c.DB = pool
		store := flags.NewPostgresFlagStore(pool)
		c.Health.Register("flag_store", observability.PingHealthChecker("postgres", observability.HealthStatusUnhealthy, store.Ping))
		c.Logger.Info("connected to database")
		return store, nil

	case FlagStoreRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.RedisClient = client
		store := flags.NewRedisFlagStore(client, cfg.FlagKeyPrefix)
		c.Health.Register("flag_store", observability.PingHealthChecker("redis", observability.HealthStatusUnhealthy, store.Ping))
		c.Logger.Info("connected to Redis")
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported flag store: %s", cfg.FlagStore)
	}
}

// newProvider picks the purchase provider for the configured platform. The
// native provider keeps its anonymous id in identities.
func (c *Container) newProvider(ctx context.Context, cfg *config.Config, identities purchases.IdentityStore) (entdomain.PurchaseProvider, error) {
	platform := entdomain.ParsePlatform(cfg.Platform)
	if platform == entdomain.PlatformWeb {
		store, err := c.newFlagStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.FlagStore = store
		return purchases.NewWebSimulatedProvider(store, cfg.FlagScope, purchases.DefaultWebOffering()), nil
	}

	native, err := purchases.NewNativeProvider(purchases.NativeConfig{
		Platform:         platform,
		BaseURL:          cfg.PurchasesAPIURL,
		ClientID:         cfg.PurchasesClientID,
		ClientSecret:     cfg.PurchasesClientSecret,
		TokenURL:         cfg.PurchasesTokenURL,
		Scopes:           cfg.PurchasesScopes,
		OfferingID:       cfg.OfferingID,
		Timeout:          cfg.PurchasesTimeout,
		FailureThreshold: cfg.BreakerFailureThreshold,
		BreakerTimeout:   cfg.BreakerTimeout,

		RequestsPerSecond: cfg.PurchasesRateLimit,
		Burst:             cfg.PurchasesBurst,
		Identities:        identities,
	}, c.Logger)
	if err != nil {
		return nil, err
	}
	c.Health.Register("purchases", func(ctx context.Context) observability.HealthCheckResult {
		status := observability.HealthStatusHealthy
		if native.BreakerState() != "closed" {
			status = observability.HealthStatusDegraded
		}
		return observability.HealthCheckResult{
			Status:  status,
			Message: "circuit " + native.BreakerState(),
		}
	})
	return native, nil
}

// newPublisher connects the configured event backend. Outside development a
// broker failure is fatal; in development events stay in process.
func (c *Container) newPublisher(cfg *config.Config, logger *slog.Logger) (eventbus.Publisher, error) {
	switch cfg.EventsBackend {
	case "rabbitmq":
	case "noop":
		return eventbus.NewNoopPublisher(logger), nil
	default:
		return c.Bus, nil
	}
	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
			return c.Bus, nil
		}
		return nil, err
	}
	c.Health.Register("events", observability.PingHealthChecker("rabbitmq", observability.HealthStatusDegraded, publisher.Ping))
	return publisher, nil
}
