package dto

// OptimizeRequest mirrors the prompt optimization form.
type OptimizeRequest struct {
	OriginalPrompt string   `json:"original_prompt" binding:"required"`
	Audience       string   `json:"audience,omitempty" binding:"omitempty,max=50"`
	FocusAreas     []string `json:"focus_areas,omitempty" binding:"omitempty,max=5,dive,max=30"`
}

// OptimizeResponse is the persisted record plus the model's commentary.
// Reasoning and Improvements are not stored; they only ride the response.
type OptimizeResponse struct {
	PromptID        int64    `json:"prompt_id"`
	OriginalPrompt  string   `json:"original_prompt"`
	OptimizedPrompt string   `json:"optimized_prompt"`
	Audience        string   `json:"audience,omitempty"`
	FocusAreas      []string `json:"focus_areas,omitempty"`
	Reasoning       string   `json:"reasoning,omitempty"`
	Improvements    []string `json:"improvements,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

// PromptListItem is one row of the history view.
type PromptListItem struct {
	ID              int64    `json:"id"`
	OriginalPrompt  string   `json:"original_prompt"`
	OptimizedPrompt string   `json:"optimized_prompt"`
	Audience        string   `json:"audience,omitempty"`
	FocusAreas      []string `json:"focus_areas,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

// UsageInfo is the entitlement snapshot shown on the dashboard.
type UsageInfo struct {
	MonthlyLimit       int    `json:"monthly_limit"`
	Used               int    `json:"used"`
	Remaining          int    `json:"remaining"`
	IsPremium          bool   `json:"is_premium"`
	SubscriptionStatus string `json:"subscription_status"`
	PeriodStart        string `json:"period_start"`
}
