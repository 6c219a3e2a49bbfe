package service

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/promptpal/promptpal-server/internal/model"
	"github.com/promptpal/promptpal-server/internal/repository"
)

var ErrMalformedEvent = errors.New("malformed billing event")

// BillingService converges stored entitlement state to the payment
// provider's view. Webhook deliveries can be duplicated and can arrive out
// of order; Apply is idempotent and drops stale events by comparing the
// provider sequence number against the last one applied to the account.
type BillingService struct {
	userRepo *repository.UserRepository
}

func NewBillingService(userRepo *repository.UserRepository) *BillingService {
	return &BillingService{userRepo: userRepo}
}

// Apply reconciles one provider event. It returns the account state after
// reconciliation and whether this event changed anything. Events for
// unknown customers are acknowledged no-ops (the account may not have
// finished signup-linking, or the event belongs to an unrelated customer);
// they are logged, never surfaced.
func (s *BillingService) Apply(event *model.BillingEvent) (*model.User, bool, error) {
	if event == nil || event.Seq <= 0 {
		return nil, false, ErrMalformedEvent
	}

	switch event.Type {
	case model.EventPaymentSucceeded:
		return s.applyToUser(event.UserID, event)
	case model.EventSubscriptionUpserted, model.EventSubscriptionCanceled:
		if event.CustomerRef == "" {
			return nil, false, ErrMalformedEvent
		}
		return s.applyToCustomerRef(event.CustomerRef, event)
	default:
		return nil, false, fmt.Errorf("%w: unknown type %q", ErrMalformedEvent, event.Type)
	}
}

func (s *BillingService) applyToUser(userID int64, event *model.BillingEvent) (*model.User, bool, error) {
	var changed bool
	var snapshot model.User

	err := s.userRepo.WithLock(userID, func(tx *gorm.DB, user *model.User) error {
		changed = reconcile(user, event)
		snapshot = *user
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("billing: event seq=%d for unknown user %d, skipping", event.Seq, userID)
			return nil, false, nil
		}
		return nil, false, err
	}
	return &snapshot, changed, nil
}

func (s *BillingService) applyToCustomerRef(ref string, event *model.BillingEvent) (*model.User, bool, error) {
	var changed bool
	var snapshot model.User

	err := s.userRepo.WithLockByCustomerRef(ref, func(tx *gorm.DB, user *model.User) error {
		changed = reconcile(user, event)
		snapshot = *user
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("billing: event seq=%d for unknown customer %q, skipping", event.Seq, ref)
			return nil, false, nil
		}
		return nil, false, err
	}
	return &snapshot, changed, nil
}

// reconcile mutates the locked user row for one event. A duplicate or stale
// delivery (sequence at or below the last applied) is a no-op, which is
// what makes replays safe and keeps a late Canceled from reverting a newer
// Upserted{active}.
func reconcile(user *model.User, event *model.BillingEvent) bool {
	if event.Seq <= user.LastBillingSeq {
		return false
	}
	user.LastBillingSeq = event.Seq

	switch event.Type {
	case model.EventPaymentSucceeded:
		user.IsPremium = true
		user.SubscriptionStatus = model.SubscriptionActive
	case model.EventSubscriptionUpserted:
		if event.SubscriptionRef != "" {
			ref := event.SubscriptionRef
			user.BillingSubscriptionID = &ref
		}
		if event.Status == model.SubscriptionActive {
			user.IsPremium = true
			user.SubscriptionStatus = model.SubscriptionActive
		} else {
			user.IsPremium = false
			user.SubscriptionStatus = event.Status
		}
	case model.EventSubscriptionCanceled:
		user.IsPremium = false
		user.SubscriptionStatus = model.SubscriptionInactive
	}
	return true
}

// LinkCustomer stores the provider's customer reference on the account,
// done once during checkout before any webhook can arrive.
func (s *BillingService) LinkCustomer(userID int64, customerRef string) error {
	return s.userRepo.UpdateFields(userID, map[string]interface{}{
		"billing_customer_id": customerRef,
	})
}
