package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/storage/memory"
	"github.com/vladislavdragonenkov/marketplace/internal/storage/postgres"
)

// Dependencies собирает репозитории выбранного хранилища.
type Dependencies struct {
	Orders      domain.OrderRepository
	Products    domain.ProductRepository
	Accounts    domain.AccountRepository
	History     domain.HistoryRepository
	Outbox      domain.OutboxRepository
	Idempotency domain.IdempotencyRepository

	// Store не nil только для postgres-хранилища.
	Store *postgres.Store
}

// NewDependencies создаёт репозитории согласно cfg.StorageDriver.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		logger.Info("using in-memory storage")
		return &Dependencies{
			Orders:      memory.NewOrderRepository(),
			Products:    memory.NewProductRepository(),
			Accounts:    memory.NewAccountRepository(),
			History:     memory.NewHistoryRepository(),
			Outbox:      memory.NewOutboxRepository(),
			Idempotency: memory.NewIdempotencyRepository(),
		}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage requires dsn")
		}

		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}

		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres schema is up to date")
		}

		logger.Info("using postgres storage")
		return &Dependencies{
			Orders:      postgres.NewOrderRepository(store),
			Products:    postgres.NewProductRepository(store),
			Accounts:    postgres.NewAccountRepository(store),
			History:     postgres.NewHistoryRepository(store),
			Outbox:      postgres.NewOutboxRepository(store),
			Idempotency: postgres.NewIdempotencyRepository(store),
			Store:       store,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d == nil || d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
