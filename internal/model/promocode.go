package model

import (
	"time"
)

// Promocode is a discount code for subscription purchase.
// MaxUses = 0 means unlimited redemptions.
type Promocode struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	Code            string     `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Description     string     `gorm:"size:200" json:"description,omitempty"`
	DiscountPercent int        `gorm:"not null" json:"discount_percent"`
	MaxUses         int        `gorm:"default:0;not null" json:"max_uses"`
	UsedCount       int        `gorm:"default:0;not null" json:"used_count"`
	IsActive        bool       `gorm:"default:true;not null" json:"is_active"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (Promocode) TableName() string {
	return "promocodes"
}

// Expired reports whether the code is past its expiry at the given time.
// A nil ExpiresAt never expires.
func (p *Promocode) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// Exhausted reports whether the code has no redemptions left.
func (p *Promocode) Exhausted() bool {
	return p.MaxUses > 0 && p.UsedCount >= p.MaxUses
}

// Redemption records one use of a promocode by one user. The composite
// unique index is the invariant: a user can redeem a given code once, ever.
type Redemption struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;uniqueIndex:idx_user_promo" json:"user_id"`
	PromocodeID int64     `gorm:"not null;uniqueIndex:idx_user_promo" json:"promocode_id"`
	UsedAt      time.Time `gorm:"not null" json:"used_at"`
}

func (Redemption) TableName() string {
	return "redemptions"
}
