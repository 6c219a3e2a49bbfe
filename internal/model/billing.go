package model

// BillingEventType is a closed set of provider webhook event kinds.
// Reconciliation switches exhaustively over these; adding a kind is a
// compile-time-visible change, not a new dispatch string.
type BillingEventType string

const (
	EventPaymentSucceeded     BillingEventType = "payment_succeeded"
	EventSubscriptionUpserted BillingEventType = "subscription_upserted"
	EventSubscriptionCanceled BillingEventType = "subscription_canceled"
)

// BillingEvent is one provider lifecycle event. Seq is the provider-supplied
// ordering key: strictly increasing per customer, so stale and duplicate
// deliveries can be detected by comparing against User.LastBillingSeq.
type BillingEvent struct {
	Type BillingEventType `json:"type"`
	Seq  int64            `json:"seq"`

	// PaymentSucceeded resolves the account directly.
	UserID int64  `json:"user_id,omitempty"`
	Plan   string `json:"plan,omitempty"`

	// Subscription events resolve the account via the provider customer ref.
	CustomerRef     string `json:"customer_ref,omitempty"`
	SubscriptionRef string `json:"subscription_ref,omitempty"`
	Status          string `json:"status,omitempty"`
}
