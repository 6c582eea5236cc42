package domain

import "time"

// Event types
const (
	EventTypeTransactionCompleted = "transaction.completed"
	EventTypeTransactionFailed    = "transaction.failed"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Payload       map[string]any
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Published     bool
}

// NewTransactionEvent builds the outbox event announcing a finished transaction.
func NewTransactionEvent(id string, t *Transaction) *OutboxEvent {
	eventType := EventTypeTransactionCompleted
	if t.Status == TransactionStatusFailed {
		eventType = EventTypeTransactionFailed
	}

	payload := map[string]any{
		"transaction_id":   t.ID,
		"reference":        t.Reference,
		"transaction_type": string(t.Type),
		"status":           string(t.Status),
		"amount":           t.Amount.String(),
		"created_at":       t.CreatedAt.Format(time.RFC3339Nano),
	}
	if t.FromAccountID != nil {
		payload["from_account_id"] = *t.FromAccountID
	}
	if t.ToAccountID != nil {
		payload["to_account_id"] = *t.ToAccountID
	}
	if t.FailureReason != "" {
		payload["failure_reason"] = string(t.FailureReason)
	}

	return &OutboxEvent{
		ID:            id,
		AggregateID:   t.Reference,
		AggregateType: AggregateTypeTransaction,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     t.CreatedAt,
	}
}
