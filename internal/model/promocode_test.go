package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPromocode_Expired(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	assert.False(t, (&Promocode{}).Expired(now), "nil expiry never expires")
	assert.True(t, (&Promocode{ExpiresAt: &past}).Expired(now))
	assert.False(t, (&Promocode{ExpiresAt: &future}).Expired(now))
	assert.False(t, (&Promocode{ExpiresAt: &now}).Expired(now), "expiry instant itself is still valid")
}

func TestPromocode_Exhausted(t *testing.T) {
	assert.False(t, (&Promocode{MaxUses: 0, UsedCount: 1000}).Exhausted(), "zero max is unlimited")
	assert.False(t, (&Promocode{MaxUses: 5, UsedCount: 4}).Exhausted())
	assert.True(t, (&Promocode{MaxUses: 5, UsedCount: 5}).Exhausted())
	assert.True(t, (&Promocode{MaxUses: 1, UsedCount: 2}).Exhausted())
}
