package worker

import (
	"context"
	"fmt"
	"log"

	"github.com/promptpal/promptpal-server/internal/pkg/pubsub"
	"github.com/promptpal/promptpal-server/internal/pkg/queue"
	"github.com/promptpal/promptpal-server/internal/service"
)

// Processor drains the billing queue and reconciles each event. When an
// event changes entitlement state it publishes the new state so connected
// clients see the upgrade or downgrade immediately.
type Processor struct {
	billingService *service.BillingService
	publisher      *pubsub.Publisher
}

func NewProcessor(billingService *service.BillingService, publisher *pubsub.Publisher) *Processor {
	return &Processor{
		billingService: billingService,
		publisher:      publisher,
	}
}

// Process reconciles one queued billing event.
func (p *Processor) Process(ctx context.Context, msg *queue.EventMessage) error {
	event := &msg.Event

	user, changed, err := p.billingService.Apply(event)
	if err != nil {
		return fmt.Errorf("apply billing event seq=%d: %w", event.Seq, err)
	}

	if user == nil {
		// Unknown account, acknowledged and dropped.
		return nil
	}

	log.Printf("Billing event seq=%d type=%s applied to user %d (changed=%v)",
		event.Seq, event.Type, user.ID, changed)

	if !changed {
		return nil
	}

	entMsg := &pubsub.EntitlementMessage{
		UserID:             user.ID,
		IsPremium:          user.IsPremium,
		SubscriptionStatus: user.SubscriptionStatus,
		Plan:               event.Plan,
	}
	if err := p.publisher.PublishEntitlement(ctx, entMsg); err != nil {
		// State is already durable; the client catches up on next poll.
		log.Printf("Failed to publish entitlement update for user %d: %v", user.ID, err)
	}

	return nil
}
