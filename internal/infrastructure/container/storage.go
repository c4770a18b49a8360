package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/alchemorsel/recipebox/internal/infrastructure/config"
	"github.com/alchemorsel/recipebox/internal/infrastructure/monitoring"
	gormRepo "github.com/alchemorsel/recipebox/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/recipebox/internal/infrastructure/persistence/localcache"
	"github.com/alchemorsel/recipebox/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/recipebox/internal/infrastructure/persistence/migrations"
	"github.com/alchemorsel/recipebox/internal/infrastructure/persistence/postgres"
	"github.com/alchemorsel/recipebox/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/recipebox/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/recipebox/internal/ports/outbound"
	"github.com/alchemorsel/recipebox/pkg/healthcheck"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Storage is the store pair selected by configuration together with the
// health checks and cleanup of whatever backs it
type Storage struct {
	Mode    string
	Recipes outbound.RecipeStore
	Plans   outbound.MealPlanStore

	checkers map[string]healthcheck.Checker
	closers  []func() error
}

// NewStorage builds the stores for the configured storage mode. Local mode
// keeps both documents in a key-value store behind a localcache guard;
// remote mode keeps them in a SQL database through GORM.
func NewStorage(cfg *config.Config, log *zap.Logger, metrics *monitoring.MetricsCollector) (*Storage, error) {
	s := &Storage{
		Mode:     cfg.Storage.Mode,
		checkers: make(map[string]healthcheck.Checker),
	}

	var err error
	switch cfg.Storage.Mode {
	case config.ModeRemote:
		err = s.openRemote(cfg, log)
	default:
		err = s.openLocal(cfg, log, metrics)
	}
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) openLocal(cfg *config.Config, log *zap.Logger, metrics *monitoring.MetricsCollector) error {
	var kv outbound.KeyValueStore

	switch cfg.Storage.LocalBackend {
	case "redis":
		client, err := redis.NewClient(cfg.Redis, log)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, client.Close)
		s.checkers["redis"] = healthcheck.NewRedisChecker(client)
		kv = redis.NewKVStore(client, log)
	default:
		store := memory.NewKVStore(cfg.Storage.MemoryQuota)
		s.checkers["local_cache"] = healthcheck.NewCustomChecker("local_cache",
			func(context.Context) (healthcheck.Status, string, interface{}) {
				used := store.Used()
				meta := map[string]int{"used_bytes": used, "quota_bytes": cfg.Storage.MemoryQuota}
				if cfg.Storage.MemoryQuota > 0 && used*10 >= cfg.Storage.MemoryQuota*9 {
					return healthcheck.StatusDegraded, "Local cache is nearly full", meta
				}
				return healthcheck.StatusHealthy, "", meta
			})
		kv = store
	}

	guard := localcache.NewGuard(kv, localcache.Options{
		MaxBytes:  cfg.Storage.MaxBytes,
		KeyPrefix: cfg.Storage.KeyPrefix,
	}, log, metrics)
	s.Recipes = localcache.NewRecipeStore(guard, cfg.Storage.ListLimit)
	s.Plans = localcache.NewMealPlanStore(guard)

	log.Info("Local storage ready",
		zap.String("backend", cfg.Storage.LocalBackend),
		zap.Int("max_bytes", guard.MaxBytes()),
	)
	return nil
}

func (s *Storage) openRemote(cfg *config.Config, log *zap.Logger) error {
	var db *gorm.DB

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.AutoMigrate {
			if err := migrate(cfg, log); err != nil {
				return err
			}
		}
		cm, err := postgres.NewConnectionManager(cfg, log)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, cm.Close)
		db = cm.DB()
	default:
		opened, err := sqlite.SetupDatabase(cfg.Database.Path, gormRepo.LogLevel(cfg.Database.LogLevel))
		if err != nil {
			return err
		}
		db = opened
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %w", err)
		}
		s.closers = append(s.closers, sqlDB.Close)

		if cfg.Database.Seed {
			if err := sqlite.SeedDatabase(context.Background(), db); err != nil {
				return err
			}
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	s.checkers["database"] = healthcheck.NewSQLChecker(sqlDB)

	s.Recipes = gormRepo.NewRecipeRepository(db)
	s.Plans = gormRepo.NewMealPlanRepository(db)

	log.Info("Remote storage ready", zap.String("driver", cfg.Database.Driver))
	return nil
}

// migrate brings the Postgres schema up to the latest embedded version
func migrate(cfg *config.Config, log *zap.Logger) error {
	db, err := migrations.OpenDB(cfg.GetDSN(cfg.Database.Host))
	if err != nil {
		return err
	}
	m, err := migrations.New(db, cfg.Database.Database, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

// Close releases backing connections in reverse order of opening
func (s *Storage) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("failed to close storage: %w", errors.Join(errs...))
	}
	return nil
}
