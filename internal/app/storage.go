// Package app assembles the ledger from configuration. It is shared by the
// server and worker binaries.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/securebank-ledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/securebank-ledger/internal/adapter/repository/postgres"
	"github.com/iho/securebank-ledger/internal/infrastructure/config"
	"github.com/iho/securebank-ledger/internal/infrastructure/postgres"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// Storage is the set of stores backing one ledger.
type Storage struct {
	Driver    string
	TxManager usecase.TransactionManager
	Accounts  usecase.AccountStore
	Log       usecase.TransactionLog
	Outbox    usecase.OutboxRepository
	// Retrier is nil for the in-memory driver, which never reports
	// retryable conflicts.
	Retrier usecase.Retrier
	// Ping checks the backing database; nil when there is none.
	Ping func(ctx context.Context) error

	close func()
}

// Close releases the storage connections.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage connects the driver named by cfg.StorageDriver, running
// migrations first when enabled.
func OpenStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		db := memory.New()
		logger.Warn().Msg("using in-memory storage; data is lost on restart")
		return &Storage{
			Driver:    config.StorageMemory,
			TxManager: memory.NewTxManager(db),
			Accounts:  memory.NewAccountStore(db),
			Log:       memory.NewTransactionLog(db),
			Outbox:    memory.NewOutboxRepository(db),
		}, nil

	case config.StoragePostgres:
		if cfg.MigrationsEnabled {
			if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
		defer cancel()

		pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info().Msg("connected to postgres")

		return &Storage{
			Driver:    config.StoragePostgres,
			TxManager: postgresRepo.NewTxManager(pool),
			Accounts:  postgresRepo.NewAccountStore(pool),
			Log:       postgresRepo.NewTransactionLog(pool),
			Outbox:    postgresRepo.NewOutboxRepository(pool),
			Retrier: postgresRepo.NewRetrier(postgresRepo.RetryConfig{
				MaxAttempts:     cfg.RetryMaxAttempts,
				InitialInterval: cfg.RetryInitialInterval,
				MaxInterval:     cfg.RetryMaxInterval,
			}, logger),
			Ping:  pool.Ping,
			close: pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
