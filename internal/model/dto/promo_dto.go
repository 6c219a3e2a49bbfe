package dto

// CreatePromocodeRequest is the administrative create form.
type CreatePromocodeRequest struct {
	Code            string `json:"code" binding:"required,min=1,max=50"`
	Description     string `json:"description,omitempty" binding:"omitempty,max=200"`
	DiscountPercent int    `json:"discount_percent" binding:"min=0,max=100"` // 0 = tracking-only code
	MaxUses         int    `json:"max_uses,omitempty" binding:"omitempty,min=0"`
	ExpiresAt       string `json:"expires_at,omitempty"` // RFC3339, empty = never
}

// ApplyPromocodeRequest redeems a code for the current user.
type ApplyPromocodeRequest struct {
	Code string `json:"code" binding:"required,min=1"`
}

type ApplyPromocodeResponse struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}

// QuoteRequest asks for the charged amount of a plan, optionally discounted.
type QuoteRequest struct {
	Plan string `json:"plan" binding:"required,oneof=monthly yearly"`
	Code string `json:"code,omitempty"`
}

type QuoteResponse struct {
	Plan            string `json:"plan"`
	BasePriceCents  int64  `json:"base_price_cents"`
	DiscountPercent int    `json:"discount_percent"`
	FinalPriceCents int64  `json:"final_price_cents"`
}

// PromocodeItem is the admin list view row.
type PromocodeItem struct {
	ID              int64  `json:"id"`
	Code            string `json:"code"`
	Description     string `json:"description,omitempty"`
	DiscountPercent int    `json:"discount_percent"`
	MaxUses         int    `json:"max_uses"`
	UsedCount       int    `json:"used_count"`
	IsActive        bool   `json:"is_active"`
	ExpiresAt       string `json:"expires_at,omitempty"`
	CreatedAt       string `json:"created_at"`
}
