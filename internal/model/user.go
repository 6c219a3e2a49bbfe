package model

import (
	"time"
)

// Subscription status values mirrored from the billing provider.
const (
	SubscriptionInactive = "inactive"
	SubscriptionActive   = "active"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

type User struct {
	ID           int64   `gorm:"primaryKey" json:"id"`
	Username     string  `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        *string `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash *string `gorm:"size:255" json:"-"`
	DisplayName  string  `gorm:"size:100" json:"display_name"`
	AvatarURL    string  `gorm:"size:500" json:"avatar_url"`
	Provider     *string `gorm:"size:20" json:"-"`
	ProviderID   *string `gorm:"size:100;index" json:"-"`

	// Entitlement state. PromptsUsed counts optimizations in the current
	// calendar month; LastResetAt anchors that window. The counter is only
	// ever mutated inside a row-locked transaction (see UserRepository).
	PromptsUsed int       `gorm:"default:0;not null" json:"prompts_used"`
	LastResetAt time.Time `gorm:"not null" json:"last_reset_at"`
	IsPremium   bool      `gorm:"default:false;not null" json:"is_premium"`

	BillingCustomerID     *string `gorm:"size:100;index" json:"-"`
	BillingSubscriptionID *string `gorm:"size:100" json:"-"`
	SubscriptionStatus    string  `gorm:"size:20;default:inactive;not null" json:"subscription_status"`

	// Sequence number of the last billing event applied to this row.
	// Events at or below this value are duplicates or stale and are dropped.
	LastBillingSeq int64 `gorm:"default:0;not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
