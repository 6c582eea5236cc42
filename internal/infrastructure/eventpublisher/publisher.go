package eventpublisher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// EventPublisher relays ledger events from the outbox to a Publisher.
type EventPublisher struct {
	outboxRepo usecase.OutboxRepository
	publisher  Publisher
	logger     zerolog.Logger
	batchSize  int
	interval   time.Duration
	retention  time.Duration
	now        func() time.Time
}

// Publisher delivers one event to an external system.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Logger     zerolog.Logger
	BatchSize  int           // events fetched per poll
	Interval   time.Duration // polling interval
	Retention  time.Duration // how long published events are kept; zero keeps them
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}

	return &EventPublisher{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger.With().Str("component", "event_publisher").Logger(),
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		retention:  cfg.Retention,
		now:        time.Now,
	}
}

// Start polls the outbox until ctx is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	ep.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			ep.tick(ctx)
		}
	}
}

func (ep *EventPublisher) tick(ctx context.Context) {
	if err := ep.processEvents(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error processing events")
	}
	if err := ep.purge(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error purging published events")
	}
}

// processEvents publishes one batch. A failed event stays unpublished and is
// retried on the next poll; delivery is at-least-once.
func (ep *EventPublisher) processEvents(ctx context.Context) error {
	events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	ep.logger.Debug().Int("count", len(events)).Msg("processing events")

	for _, event := range events {
		if err := ep.publisher.Publish(ctx, event); err != nil {
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("failed to publish event")
			continue
		}

		if err := ep.outboxRepo.MarkPublished(ctx, event.ID, ep.now()); err != nil {
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Msg("failed to mark event as published")
			continue
		}

		ep.logger.Info().
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Str("reference", event.AggregateID).
			Msg("event published")
	}

	return nil
}

func (ep *EventPublisher) purge(ctx context.Context) error {
	if ep.retention <= 0 {
		return nil
	}
	return ep.outboxRepo.DeletePublished(ctx, ep.now().Add(-ep.retention))
}

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		Interface("payload", event.Payload).
		Msg("ledger event")

	return nil
}
