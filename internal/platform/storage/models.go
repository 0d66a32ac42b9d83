package storage

import (
	"time"

	"gorm.io/datatypes"
)

// SessionRecord is the durable form of a credential session. Exactly one row
// per profile; the token value is opaque to the client.
type SessionRecord struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Profile   string         `gorm:"uniqueIndex;not null" json:"profile"`
	Token     string         `gorm:"not null" json:"token"`
	Email     string         `gorm:"index" json:"email"`
	UserID    int64          `json:"user_id"`
	Metadata  datatypes.JSON `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt *time.Time     `json:"expires_at"`
}

func (SessionRecord) TableName() string {
	return "session_records"
}

// NotificationRecord keeps a local trail of surfaced notifications so the CLI
// can show what happened in earlier invocations.
type NotificationRecord struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	EventID    string         `gorm:"uniqueIndex;not null" json:"event_id"`
	Level      string         `gorm:"index" json:"level"`
	Operation  string         `gorm:"index" json:"operation"`
	Message    string         `json:"message"`
	Code       string         `json:"code"`
	Attributes datatypes.JSON `json:"attributes"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (NotificationRecord) TableName() string {
	return "notification_records"
}
