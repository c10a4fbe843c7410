package bootstrap

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"reservation-system/internal/repositories"
	"reservation-system/internal/repositories/memory"
	"reservation-system/internal/services"
	"reservation-system/pkg/config"
	"reservation-system/pkg/database/postgresql"
)

// Storage owns the connections behind a services.Repositories set.
type Storage struct {
	Repos services.Repositories
	// Pool is nil for the memory driver.
	Pool    *pgxpool.Pool
	closers []func()
}

func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStorage connects the configured driver and the optional Redis role
// cache. An unreachable Redis only disables the cache.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	s := &Storage{}

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, err
		}
		s.Pool = pool
		s.closers = append(s.closers, pool.Close)

		if cfg.Storage.MigrateOnStart {
			if err := postgresql.Migrate(ctx, pool, "up"); err != nil {
				s.Close()
				return nil, fmt.Errorf("migrate on start: %w", err)
			}
			logger.Info("database migrated")
		}

		s.Repos = services.Repositories{
			Tx:           repositories.NewTxManager(pool),
			Users:        repositories.NewUserRepository(pool, logger.Named("users")),
			Companies:    repositories.NewCompanyRepository(pool),
			Equipment:    repositories.NewEquipmentRepository(pool),
			Reservations: repositories.NewReservationRepository(pool, logger.Named("reservations")),
		}
	case config.StorageDriverMemory:
		store := memory.NewStore()
		s.Repos = services.Repositories{
			Tx:           store,
			Users:        memory.NewUserRepository(store),
			Companies:    memory.NewCompanyRepository(store),
			Equipment:    memory.NewEquipmentRepository(store),
			Reservations: memory.NewReservationRepository(store),
		}
		logger.Warn("using in-memory storage, data is lost on exit")
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	if cfg.Redis.Address != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, role cache disabled", zap.String("address", cfg.Redis.Address), zap.Error(err))
			_ = client.Close()
		} else {
			s.Repos.Cache = repositories.NewRedisCacheRepository(client)
			s.closers = append(s.closers, func() { _ = client.Close() })
		}
	}

	return s, nil
}
