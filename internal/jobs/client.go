package jobs

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
)

// ErrDuplicateTask is returned when a task with the same key was already
// submitted.
var ErrDuplicateTask = errors.New("jobs: task already submitted")

// Client submits ledger tasks to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs a Client.
func NewClient(redisOpt asynq.RedisConnOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpt)}
}

// Enqueue submits payload. A non-empty key becomes the task ID, so the
// same key is accepted once while the task is retained.
func (c *Client) Enqueue(ctx context.Context, payload LedgerPayload, key string) (*asynq.TaskInfo, error) {
	task, err := NewLedgerTask(payload)
	if err != nil {
		return nil, err
	}

	var opts []asynq.Option
	if key != "" {
		opts = append(opts, asynq.TaskID(key))
	}

	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil, ErrDuplicateTask
	}
	return info, err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
