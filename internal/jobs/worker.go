package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Worker wraps the asynq server and the reconciliation scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    zerolog.Logger
}

// WorkerConfig collects what the worker needs.
type WorkerConfig struct {
	RedisOpt      asynq.RedisConnOpt
	Logger        zerolog.Logger
	Ledger        *LedgerJob
	Reconcile     *ReconcileJob
	Concurrency   int
	ReconcileCron string // empty disables scheduled reconciliation
}

// NewWorker constructs a Worker.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Ledger == nil {
		return nil, errors.New("jobs: ledger job is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}

	srv := asynq.NewServer(cfg.RedisOpt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			QueueLedger:      6,
			QueueMaintenance: 1,
		},
		Logger:          NewAsynqLogger(cfg.Logger),
		ShutdownTimeout: 10 * time.Second,
	})

	mux := NewServeMux(cfg.Ledger, cfg.Reconcile)

	var scheduler *asynq.Scheduler
	if cfg.ReconcileCron != "" && cfg.Reconcile != nil {
		scheduler = asynq.NewScheduler(cfg.RedisOpt, &asynq.SchedulerOpts{
			Location: time.UTC,
			Logger:   NewAsynqLogger(cfg.Logger),
		})
		if _, err := scheduler.Register(cfg.ReconcileCron, NewReconcileTask()); err != nil {
			return nil, fmt.Errorf("register reconciliation schedule: %w", err)
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

// NewServeMux routes every ledger task type to its handler.
func NewServeMux(ledger *LedgerJob, reconcile *ReconcileJob) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeDeposit, ledger.Handle)
	mux.HandleFunc(TaskTypeWithdraw, ledger.Handle)
	mux.HandleFunc(TaskTypeTransfer, ledger.Handle)
	if reconcile != nil {
		mux.HandleFunc(TaskTypeReconcile, reconcile.Handle)
	}
	return mux
}

// Run processes tasks until ctx is cancelled. The caller owns signal
// handling through ctx.
func (w *Worker) Run(ctx context.Context) error {
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}

	if err := w.server.Start(w.mux); err != nil {
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return fmt.Errorf("start asynq server: %w", err)
	}

	w.logger.Info().Msg("worker started")
	<-ctx.Done()

	if w.scheduler != nil {
		w.scheduler.Shutdown()
	}
	w.server.Shutdown()
	w.logger.Info().Msg("worker stopped")

	return ctx.Err()
}

// asynqLogger adapts zerolog to asynq.Logger.
type asynqLogger struct {
	logger zerolog.Logger
}

// NewAsynqLogger returns an asynq.Logger writing to logger.
func NewAsynqLogger(logger zerolog.Logger) asynq.Logger {
	return asynqLogger{logger: logger.With().Str("component", "asynq").Logger()}
}

func (l asynqLogger) Debug(args ...any) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
