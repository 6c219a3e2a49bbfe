package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// StringArray stores a JSON array in a text column.
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return nil
}

// Prompt is one optimization record. Rows are immutable after creation;
// the only mutation allowed is deletion by the owning user.
type Prompt struct {
	ID              int64       `gorm:"primaryKey" json:"id"`
	UserID          int64       `gorm:"not null;index" json:"user_id"`
	OriginalPrompt  string      `gorm:"type:text;not null" json:"original_prompt"`
	OptimizedPrompt string      `gorm:"type:text;not null" json:"optimized_prompt"`
	Audience        string      `gorm:"size:50" json:"audience,omitempty"`
	FocusAreas      StringArray `gorm:"type:json" json:"focus_areas,omitempty"`
	CreatedAt       time.Time   `gorm:"index" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Prompt) TableName() string {
	return "prompts"
}
