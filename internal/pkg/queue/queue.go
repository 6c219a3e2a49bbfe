package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/promptpal/promptpal-server/internal/model"
)

// Queue is a Redis-list work queue for billing events. The webhook handler
// pushes, the worker pops. A crash between pop and apply loses at most one
// event; the provider retries undelivered webhooks, and sequence numbering
// makes redelivery harmless.
type Queue struct {
	client    *redis.Client
	queueName string
}

// EventMessage wraps a billing event with delivery metadata.
type EventMessage struct {
	Event      model.BillingEvent `json:"event"`
	ReceivedAt time.Time          `json:"received_at"`
	Attempts   int                `json:"attempts"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

func (q *Queue) Push(ctx context.Context, msg *EventMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop blocks until a message arrives or the timeout elapses. Returns
// (nil, nil) on timeout.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*EventMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg EventMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
