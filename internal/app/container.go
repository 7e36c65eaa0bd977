// Package app wires configuration into the entitlement store, feature gate,
// session and profile services.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	entApp "github.com/felixgeelhaar/coachly/internal/entitlements/application"
	entDomain "github.com/felixgeelhaar/coachly/internal/entitlements/domain"
	"github.com/felixgeelhaar/coachly/internal/entitlements/infrastructure/flags"
	featuresApp "github.com/felixgeelhaar/coachly/internal/features/application"
	identityApp "github.com/felixgeelhaar/coachly/internal/identity/application"
	identityPersistence "github.com/felixgeelhaar/coachly/internal/identity/infrastructure/persistence"
	profilesApp "github.com/felixgeelhaar/coachly/internal/profiles/application"
	profilesPersistence "github.com/felixgeelhaar/coachly/internal/profiles/infrastructure/persistence"
	"github.com/felixgeelhaar/coachly/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/coachly/pkg/config"
	"github.com/felixgeelhaar/coachly/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Prometheus is set when a metrics address is configured.
	Prometheus *observability.PrometheusMetrics

	// Bus delivers events in process. EventPublisher is either Bus or a
	// broker publisher.
	Bus            *eventbus.InProcessEventBus
	EventPublisher eventbus.Publisher

	// Backends, set only when the configured flag store uses them.
	SQLiteDB    *sql.DB
	DB          *pgxpool.Pool
	RedisClient *redis.Client

	FlagStore flags.FlagStore
	Provider  entDomain.PurchaseProvider
	Notices   *entApp.RecordingNotifier

	Sessions     *identityApp.Service
	Entitlements *entApp.Store
	Features     *featuresApp.Gate
	Profiles     *profilesApp.Service
}

// NewContainer builds every service and initializes the entitlement store.
// Store initialization never fails; backend connection errors do.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
		Bus:     eventbus.NewInProcessEventBus(logger),
		Notices: &entApp.RecordingNotifier{},
	}

	publisher, err := c.newPublisher(cfg, logger)
	if err != nil {
		return nil, err
	}
	c.EventPublisher = publisher

	sessionRepo := identityPersistence.NewFileSessionRepository(cfg.SessionFilePath)

	provider, err := c.newProvider(ctx, cfg, sessionRepo)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create purchase provider: %w", err)
	}
	c.Provider = provider

	c.Sessions = identityApp.NewService(sessionRepo, publisher, logger)
	if err := c.Sessions.Load(ctx); err != nil {
		logger.Warn("failed to restore session", "error", err)
	}
	if cfg.UserID != "" {
		if err := c.Sessions.SignIn(ctx, cfg.UserID); err != nil {
			c.Close()
			return nil, err
		}
	}

	var metrics observability.Metrics = c.Metrics
	if cfg.MetricsAddr != "" {
		c.Prometheus = observability.NewPrometheusMetrics("coachly")
		metrics = observability.Multi(c.Metrics, c.Prometheus)
	}

	logNotifier := entApp.NewLogNotifier(logger)
	c.Entitlements = entApp.NewStore(provider, logger,
		entApp.WithSession(c.Sessions),
		entApp.WithPublisher(publisher),
		entApp.WithMetrics(metrics),
		entApp.WithNotifier(entApp.NotifierFunc(func(ctx context.Context, n entApp.Notice) {
			c.Notices.Notify(ctx, n)
			logNotifier.Notify(ctx, n)
		})),
	)
	c.Entitlements.Initialize(ctx)
	c.Features = featuresApp.NewGate(c.Entitlements, logger)

	c.Profiles = profilesApp.NewService(
		profilesPersistence.NewFileRepository(cfg.ProfileFilePath), publisher, logger)

	c.Health.Register("entitlements", func(ctx context.Context) observability.HealthCheckResult {
		if c.Entitlements.State() != entApp.StateReady {
			return observability.HealthCheckResult{Status: observability.HealthStatusDegraded, Message: "initializing"}
		}
		return observability.HealthCheckResult{Status: observability.HealthStatusHealthy, Message: "ready"}
	})

	return c, nil
}

// Close releases every resource. It is safe on a partially built container.
func (c *Container) Close() {
	if c.Features != nil {
		c.Features.Close()
	}
	if c.Entitlements != nil {
		c.Entitlements.Close()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DB != nil {
		c.DB.Close()
		c.Logger.Info("PostgreSQL connection closed")
	}

	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing SQLite connection", "error", err)
		} else {
			c.Logger.Info("SQLite connection closed")
		}
	}
}
