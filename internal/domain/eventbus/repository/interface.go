package repository

import (
	"context"
	"time"

	"vibibay-client-go/internal/domain/eventbus"
)

// NotificationRepository is the local history of surfaced notifications.
type NotificationRepository interface {
	// Store appends one notification to the history.
	Store(ctx context.Context, n eventbus.Notification) error

	// Recent returns the newest notifications, newest first.
	Recent(ctx context.Context, limit int) ([]eventbus.Notification, error)

	// FindByLevel returns notifications with the given level, newest first.
	FindByLevel(ctx context.Context, level string, limit int) ([]eventbus.Notification, error)

	// DeleteBefore prunes history older than the cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) error

	// Stats returns notification counts grouped by level.
	Stats(ctx context.Context) (map[string]int64, error)
}
