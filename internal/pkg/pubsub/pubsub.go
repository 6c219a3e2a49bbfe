package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelEntitlementUpdates = "entitlement_updates"
)

// EntitlementMessage tells connected clients that an account's entitlement
// changed (upgrade, downgrade, counter reset). The worker publishes after a
// billing event mutates the user row; the API process fans it out over
// websocket.
type EntitlementMessage struct {
	Type               string `json:"type"`
	UserID             int64  `json:"user_id"`
	IsPremium          bool   `json:"is_premium"`
	SubscriptionStatus string `json:"subscription_status"`
	Plan               string `json:"plan,omitempty"`
}

type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishEntitlement broadcasts an entitlement change.
func (p *Publisher) PublishEntitlement(ctx context.Context, msg *EntitlementMessage) error {
	msg.Type = "entitlement_updated"

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal entitlement message: %w", err)
	}

	return p.client.Publish(ctx, ChannelEntitlementUpdates, data).Err()
}

type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe delivers entitlement messages to handler until ctx is canceled.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*EntitlementMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelEntitlementUpdates)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var entMsg EntitlementMessage
			if err := json.Unmarshal([]byte(msg.Payload), &entMsg); err != nil {
				continue
			}

			handler(&entMsg)
		}
	}
}
