package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/infrastructure/postgres/generated"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	queries *generated.Queries
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return newOutboxRepository(pool)
}

func newOutboxRepository(db generated.DBTX) *OutboxRepository {
	return &OutboxRepository{queries: generated.New(db)}
}

// Create writes an event in the same unit of work as the ledger record.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	pgxTx, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	return generated.New(pgxTx).CreateOutboxEvent(ctx, generated.CreateOutboxEventParams{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       payload,
		CreatedAt:     timeToPgTimestamptz(event.CreatedAt),
		Published:     event.Published,
	})
}

// GetUnpublished retrieves the oldest unpublished events.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	rows, err := r.queries.GetUnpublishedEvents(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	events := make([]*domain.OutboxEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, rowToOutboxEvent(ctx, row))
	}

	return events, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.queries.MarkEventPublished(ctx, generated.MarkEventPublishedParams{
		ID:          id,
		PublishedAt: timeToPgTimestamptz(publishedAt),
	})
}

// DeletePublished deletes published events older than the given time.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return r.queries.DeletePublishedEvents(ctx, timeToPgTimestamptz(before))
}

// rowToOutboxEvent keeps an event whose payload cannot be decoded so it is
// still published and does not hold back the rows behind it.
func rowToOutboxEvent(ctx context.Context, row generated.OutboxEvent) *domain.OutboxEvent {
	var payload map[string]any
	if row.Payload != nil {
		if err := json.Unmarshal(row.Payload, &payload); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).
				Str("event_id", row.ID).
				Str("event_type", row.EventType).
				Msg("corrupt outbox payload")
			payload = nil
		}
	}

	var publishedAt *time.Time
	if row.PublishedAt.Valid {
		t := row.PublishedAt.Time
		publishedAt = &t
	}

	return &domain.OutboxEvent{
		ID:            row.ID,
		AggregateID:   row.AggregateID,
		AggregateType: row.AggregateType,
		EventType:     row.EventType,
		Payload:       payload,
		CreatedAt:     row.CreatedAt.Time,
		PublishedAt:   publishedAt,
		Published:     row.Published,
	}
}
