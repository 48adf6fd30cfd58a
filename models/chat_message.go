package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage is one append-only message in a support chat session. UserID is
// nil for guests; IsSupport marks messages from support staff or the bot.
type ChatMessage struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID string     `gorm:"not null;index" json:"session_id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Username  string     `gorm:"not null" json:"username"`
	Message   string     `gorm:"not null" json:"message"`
	IsSupport bool       `gorm:"default:false" json:"is_support"`
	Timestamp time.Time  `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
