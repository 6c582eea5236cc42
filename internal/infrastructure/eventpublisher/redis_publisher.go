package eventpublisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iho/securebank-ledger/internal/domain"
)

// DefaultChannel is the pub/sub channel ledger events are sent to.
const DefaultChannel = "ledger.events"

// Message is the wire form of a published ledger event.
type Message struct {
	Payload     map[string]any `json:"payload"`
	ID          string         `json:"id"`
	EventType   string         `json:"eventType"`
	AggregateID string         `json:"aggregateId"`
	CreatedAt   string         `json:"createdAt"`
}

// RedisPublisher publishes events on a Redis pub/sub channel.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisPublisher creates a new RedisPublisher.
func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Publish sends the event to the channel.
func (p *RedisPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	body, err := json.Marshal(Message{
		ID:          event.ID,
		EventType:   event.EventType,
		AggregateID: event.AggregateID,
		Payload:     event.Payload,
		CreatedAt:   event.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}

	if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}

	return nil
}
