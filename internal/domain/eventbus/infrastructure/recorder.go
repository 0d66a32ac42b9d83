package infrastructure

import (
	"context"
	"time"

	"vibibay-client-go/internal/domain/eventbus"
	"vibibay-client-go/internal/domain/eventbus/repository"
	"vibibay-client-go/internal/platform/logging"
)

// Recorder subscribes to the notification topics and persists each event into
// the local history. Storage failures are logged and otherwise ignored; the
// history is best effort.
type Recorder struct {
	repo   repository.NotificationRepository
	logger *logging.Logger
}

func NewRecorder(repo repository.NotificationRepository, logger *logging.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) Attach(bus *eventbus.Bus) error {
	if err := bus.Subscribe(eventbus.TopicNotifySuccess, r.record); err != nil {
		return err
	}
	return bus.Subscribe(eventbus.TopicNotifyError, r.record)
}

func (r *Recorder) record(n eventbus.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.repo.Store(ctx, n); err != nil {
		r.logger.Warn("notification history write failed: %v", err)
	}
}
