package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// Topics published by the query layer and consumed by presentation adapters.
const (
	// TopicNotifySuccess carries a Notification after a mutation succeeds.
	TopicNotifySuccess = "notify:success"
	// TopicNotifyError carries a Notification after a mutation fails.
	TopicNotifyError = "notify:error"
	// TopicSessionStepUp signals that a login needs a one-time code
	// resubmission. Not a failure.
	TopicSessionStepUp = "session:stepup"
	// TopicCacheInvalidated carries the string form of each invalidated key.
	TopicCacheInvalidated = "cache:invalidated"
)

// Notification levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
)

// Notification is the unit handed to presentation adapters (and persisted in
// the local history).
type Notification struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Operation string    `json:"operation"`
	Message   string    `json:"message"`
	Code      string    `json:"code,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification builds a notification with a fresh id and timestamp.
func NewNotification(level, operation, message string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Operation: operation,
		Message:   message,
		CreatedAt: time.Now(),
	}
}
