package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/promptpal/promptpal-server/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

// TestUser creates a free-tier user with a fresh period anchor.
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := nextSeq()
	email := fmt.Sprintf("test_%d@example.com", n)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:           fmt.Sprintf("testuser_%d", n),
		Email:              &email,
		PasswordHash:       &passwordHash,
		LastResetAt:        time.Now().UTC(),
		SubscriptionStatus: model.SubscriptionInactive,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithPromptsUsed sets the current-period consumption counter.
func WithPromptsUsed(used int) func(*model.User) {
	return func(u *model.User) {
		u.PromptsUsed = used
	}
}

// WithAnchor sets the period anchor.
func WithAnchor(anchor time.Time) func(*model.User) {
	return func(u *model.User) {
		u.LastResetAt = anchor
	}
}

// WithPremium marks the user as an active subscriber.
func WithPremium() func(*model.User) {
	return func(u *model.User) {
		u.IsPremium = true
		u.SubscriptionStatus = model.SubscriptionActive
	}
}

// WithCustomerRef links the user to a billing provider customer.
func WithCustomerRef(ref string) func(*model.User) {
	return func(u *model.User) {
		u.BillingCustomerID = &ref
	}
}

// WithBillingSeq sets the last applied billing sequence number.
func WithBillingSeq(seq int64) func(*model.User) {
	return func(u *model.User) {
		u.LastBillingSeq = seq
	}
}

// TestPrompt creates a stored optimization for the user.
func TestPrompt(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Prompt)) *model.Prompt {
	t.Helper()

	n := nextSeq()
	prompt := &model.Prompt{
		UserID:          userID,
		OriginalPrompt:  fmt.Sprintf("original prompt %d", n),
		OptimizedPrompt: fmt.Sprintf("optimized prompt %d", n),
		Audience:        "general",
		FocusAreas:      model.StringArray{"specificity", "clarity"},
	}

	for _, opt := range opts {
		opt(prompt)
	}

	if err := db.Create(prompt).Error; err != nil {
		t.Fatalf("Failed to create test prompt: %v", err)
	}

	return prompt
}

// TestPromo creates an active promocode.
func TestPromo(t *testing.T, db *gorm.DB, opts ...func(*model.Promocode)) *model.Promocode {
	t.Helper()

	promo := &model.Promocode{
		Code:            fmt.Sprintf("PROMO%d", nextSeq()),
		DiscountPercent: 20,
		IsActive:        true,
	}

	for _, opt := range opts {
		opt(promo)
	}

	if err := db.Create(promo).Error; err != nil {
		t.Fatalf("Failed to create test promocode: %v", err)
	}

	return promo
}

func WithCode(code string) func(*model.Promocode) {
	return func(p *model.Promocode) {
		p.Code = code
	}
}

func WithDiscount(percent int) func(*model.Promocode) {
	return func(p *model.Promocode) {
		p.DiscountPercent = percent
	}
}

func WithMaxUses(maxUses int) func(*model.Promocode) {
	return func(p *model.Promocode) {
		p.MaxUses = maxUses
	}
}

func WithExpiry(expiresAt time.Time) func(*model.Promocode) {
	return func(p *model.Promocode) {
		p.ExpiresAt = &expiresAt
	}
}

func WithInactive() func(*model.Promocode) {
	return func(p *model.Promocode) {
		p.IsActive = false
	}
}
