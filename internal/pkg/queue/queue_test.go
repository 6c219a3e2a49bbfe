package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptpal/promptpal-server/internal/model"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestQueue_PushAndLength(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	q := NewQueue(client, "billing_events")

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), length)

	for i := 1; i <= 3; i++ {
		msg := &EventMessage{
			Event: model.BillingEvent{
				Type: model.EventPaymentSucceeded,
				Seq:  int64(i),
			},
			ReceivedAt: time.Now().UTC(),
		}
		require.NoError(t, q.Push(ctx, msg))
	}

	length, err = q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), length)
}

func TestQueue_Pop(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("pop preserves event payload", func(t *testing.T) {
		q := NewQueue(client, "test_pop_queue")

		receivedAt := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
		msg := &EventMessage{
			Event: model.BillingEvent{
				Type:            model.EventSubscriptionUpserted,
				Seq:             42,
				Plan:            "monthly",
				CustomerRef:     "cus_123",
				SubscriptionRef: "sub_456",
				Status:          model.SubscriptionActive,
			},
			ReceivedAt: receivedAt,
			Attempts:   1,
		}

		require.NoError(t, q.Push(ctx, msg))

		result, err := q.Pop(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, model.EventSubscriptionUpserted, result.Event.Type)
		assert.Equal(t, int64(42), result.Event.Seq)
		assert.Equal(t, "monthly", result.Event.Plan)
		assert.Equal(t, "cus_123", result.Event.CustomerRef)
		assert.Equal(t, "sub_456", result.Event.SubscriptionRef)
		assert.Equal(t, model.SubscriptionActive, result.Event.Status)
		assert.True(t, receivedAt.Equal(result.ReceivedAt))
		assert.Equal(t, 1, result.Attempts)
	})

	t.Run("pop FIFO order", func(t *testing.T) {
		q := NewQueue(client, "test_fifo_queue")

		for i := 1; i <= 3; i++ {
			msg := &EventMessage{Event: model.BillingEvent{Seq: int64(i)}}
			require.NoError(t, q.Push(ctx, msg))
		}

		for i := 1; i <= 3; i++ {
			result, err := q.Pop(ctx, time.Second)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, int64(i), result.Event.Seq)
		}
	})

	t.Run("pop from empty queue times out", func(t *testing.T) {
		q := NewQueue(client, "test_empty_queue")

		result, err := q.Pop(ctx, 10*time.Millisecond)

		// miniredis doesn't support BRPop timeout properly, so check for nil or error
		if err == nil {
			assert.Nil(t, result)
		}
	})
}

func TestQueue_LengthAfterPop(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	q := NewQueue(client, "test_length_ops")

	for i := 0; i < 3; i++ {
		msg := &EventMessage{Event: model.BillingEvent{Seq: int64(i + 1)}}
		require.NoError(t, q.Push(ctx, msg))
	}

	_, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)
}

func TestQueue_MultipleQueues(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()

	q1 := NewQueue(client, "queue_1")
	q2 := NewQueue(client, "queue_2")

	require.NoError(t, q1.Push(ctx, &EventMessage{Event: model.BillingEvent{Seq: 1}}))
	require.NoError(t, q2.Push(ctx, &EventMessage{Event: model.BillingEvent{Seq: 2}}))

	len1, _ := q1.Length(ctx)
	len2, _ := q2.Length(ctx)
	assert.Equal(t, int64(1), len1)
	assert.Equal(t, int64(1), len2)

	result1, _ := q1.Pop(ctx, time.Second)
	result2, _ := q2.Pop(ctx, time.Second)

	assert.Equal(t, int64(1), result1.Event.Seq)
	assert.Equal(t, int64(2), result2.Event.Seq)
}
