package dto

// RegisterRequest mirrors the signup form.
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Password    string `json:"password" binding:"required,min=6,max=64"`
	Email       string `json:"email,omitempty" binding:"omitempty,email"`
	DisplayName string `json:"display_name,omitempty" binding:"omitempty,max=100"`
}

type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo is the user shape returned to the frontend. PasswordHash and
// billing refs never leave the server.
type UserInfo struct {
	ID                 int64      `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email,omitempty"`
	DisplayName        string     `json:"display_name,omitempty"`
	AvatarURL          string     `json:"avatar_url,omitempty"`
	IsPremium          bool       `json:"is_premium"`
	SubscriptionStatus string     `json:"subscription_status"`
	Usage              *UsageInfo `json:"usage,omitempty"`
	CreatedAt          string     `json:"created_at,omitempty"`
}

// UpdateProfileRequest updates mutable profile fields.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" binding:"omitempty,max=100"`
	Email       *string `json:"email,omitempty" binding:"omitempty,email"`
}
