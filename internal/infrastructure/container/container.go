// Package container wires the application together with Uber FX
package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	mealplanapp "github.com/alchemorsel/recipebox/internal/application/mealplan"
	recipeapp "github.com/alchemorsel/recipebox/internal/application/recipe"
	"github.com/alchemorsel/recipebox/internal/infrastructure/config"
	"github.com/alchemorsel/recipebox/internal/infrastructure/http/realtime"
	"github.com/alchemorsel/recipebox/internal/infrastructure/http/server"
	"github.com/alchemorsel/recipebox/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipebox/internal/ports/inbound"
	"github.com/alchemorsel/recipebox/internal/ports/outbound"
	"github.com/alchemorsel/recipebox/pkg/healthcheck"
	"github.com/alchemorsel/recipebox/pkg/logger"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ConfigPath names the configuration file to load. Empty means search the
// default locations.
type ConfigPath string

// Module provides all dependency injection modules
var Module = fx.Options(
	fx.WithLogger(FxLogger),
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	StorageModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration and hot-reloads the log level
var ConfigModule = fx.Options(
	fx.Provide(func(path ConfigPath) (*config.Config, *viper.Viper, error) {
		return config.LoadWithViper(string(path))
	}),
	fx.Invoke(WatchConfig),
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// MonitoringModule provides the metrics collector and tracer provider
var MonitoringModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *monitoring.MetricsCollector {
		if !cfg.Monitoring.EnableMetrics {
			return nil
		}
		return monitoring.NewMetricsCollector(log)
	},
	func(cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		return monitoring.NewTracingProvider(monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
	},
)

// StorageModule selects the storage mode and exposes its stores
var StorageModule = fx.Provide(
	NewStorage,
	func(s *Storage) outbound.RecipeStore { return s.Recipes },
	func(s *Storage) outbound.MealPlanStore { return s.Plans },
)

// ServiceModule provides the application services. The realtime hub is the
// event publisher, so every domain event reaches connected planners.
var ServiceModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *realtime.Hub {
		return realtime.NewHub(log, originChecker(cfg))
	},
	fx.Annotate(
		func(hub *realtime.Hub) *realtime.Hub { return hub },
		fx.As(new(outbound.EventPublisher)),
	),
	func(
		store outbound.RecipeStore,
		events outbound.EventPublisher,
		metrics *monitoring.MetricsCollector,
		log *zap.Logger,
	) inbound.RecipeService {
		return recipeapp.NewRecipeService(store, events, metrics, log)
	},
	func(
		plans outbound.MealPlanStore,
		recipes outbound.RecipeStore,
		events outbound.EventPublisher,
		metrics *monitoring.MetricsCollector,
		log *zap.Logger,
	) inbound.MealPlanService {
		return mealplanapp.NewMealPlanService(plans, recipes, events, metrics, log)
	},
)

// HTTPModule provides the health endpoint and the HTTP server
var HTTPModule = fx.Provide(
	NewHealthCheck,
	func(
		cfg *config.Config,
		log *zap.Logger,
		recipes inbound.RecipeService,
		plans inbound.MealPlanService,
		hub *realtime.Hub,
		health *healthcheck.HealthCheck,
		metrics *monitoring.MetricsCollector,
		tracing *monitoring.TracingProvider,
	) *server.Server {
		return server.NewServer(cfg, log, server.Dependencies{
			Recipes:  recipes,
			MealPlan: plans,
			Hub:      hub,
			Health:   health,
			Metrics:  metrics,
			Tracing:  tracing,
		})
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(RegisterLifecycleHooks)

// WatchConfig applies log level changes from the config file without a
// restart. Other settings need one.
func WatchConfig(v *viper.Viper, level zap.AtomicLevel, log *zap.Logger) {
	config.Watch(v,
		func(cfg *config.Config) {
			next := logger.ParseLevel(cfg.App.LogLevel)
			if next == level.Level() {
				return
			}
			level.SetLevel(next)
			log.Info("Log level changed", zap.String("level", next.String()))
		},
		func(err error) {
			log.Warn("Ignoring invalid configuration change", zap.Error(err))
		},
	)
}

// NewHealthCheck registers one checker per storage dependency
func NewHealthCheck(cfg *config.Config, log *zap.Logger, storage *Storage) *healthcheck.HealthCheck {
	health := healthcheck.New(cfg.App.Version, log)
	for name, checker := range storage.checkers {
		health.Register(name, checker)
	}
	return health
}

// RegisterLifecycleHooks starts the realtime hub and the HTTP server and
// releases everything in reverse on shutdown
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	log *zap.Logger,
	srv *server.Server,
	hub *realtime.Hub,
	storage *Storage,
	tracing *monitoring.TracingProvider,
) {
	hubCtx, stopHub := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Recipebox", zap.String("mode", storage.Mode), zap.String("addr", srv.Addr()))

			go hub.Run(hubCtx)
			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Recipebox")

			var errs []error
			if err := srv.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("http server: %w", err))
			}

			stopHub()
			select {
			case <-hub.Done():
			case <-ctx.Done():
			}

			if err := storage.Close(); err != nil {
				errs = append(errs, err)
			}
			if err := tracing.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}

			_ = log.Sync()
			return errors.Join(errs...)
		},
	})
}

// originChecker accepts any websocket origin in development and otherwise
// only the configured CORS origins
func originChecker(cfg *config.Config) func(r *http.Request) bool {
	if cfg.IsDevelopment() || slices.Contains(cfg.Server.AllowedOrigins, "*") {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(cfg.Server.AllowedOrigins, origin)
	}
}

// FxLogger routes FX's own events through zap at debug level
func FxLogger(log *zap.Logger) fxevent.Logger {
	zl := &fxevent.ZapLogger{Logger: log.Named("fx")}
	zl.UseLogLevel(zapcore.DebugLevel)
	return zl
}
