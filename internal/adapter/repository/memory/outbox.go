package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/usecase"
)

type outboxState struct {
	mu     sync.Mutex
	events []*domain.OutboxEvent
}

func newOutboxState() *outboxState {
	return &outboxState{}
}

func (o *outboxState) publish(events []*domain.OutboxEvent) {
	if len(events) == 0 {
		return
	}

	o.mu.Lock()
	o.events = append(o.events, events...)
	o.mu.Unlock()
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	db *DB
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(db *DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Create stages an event in the unit of work.
func (r *OutboxRepository) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t, err := unwrapTx(r.db, tx)
	if err != nil {
		return err
	}

	t.events = append(t.events, copyEvent(event))

	return nil
}

// GetUnpublished returns the oldest unpublished events.
func (r *OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.db.outbox.mu.Lock()
	defer r.db.outbox.mu.Unlock()

	var events []*domain.OutboxEvent
	for _, e := range r.db.outbox.events {
		if e.Published {
			continue
		}
		events = append(events, copyEvent(e))
		if limit > 0 && len(events) == limit {
			break
		}
	}

	return events, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	r.db.outbox.mu.Lock()
	defer r.db.outbox.mu.Unlock()

	for _, e := range r.db.outbox.events {
		if e.ID == id {
			at := publishedAt
			e.Published = true
			e.PublishedAt = &at
			return nil
		}
	}

	return nil
}

// DeletePublished drops events published before the given time.
func (r *OutboxRepository) DeletePublished(_ context.Context, before time.Time) error {
	r.db.outbox.mu.Lock()
	defer r.db.outbox.mu.Unlock()

	kept := r.db.outbox.events[:0]
	for _, e := range r.db.outbox.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.db.outbox.events = kept

	return nil
}

func copyEvent(e *domain.OutboxEvent) *domain.OutboxEvent {
	c := *e
	c.Payload = maps.Clone(e.Payload)
	return &c
}
