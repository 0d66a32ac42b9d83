package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vibibay-client-go/internal/domain/eventbus"
	"vibibay-client-go/internal/domain/eventbus/repository"
	"vibibay-client-go/internal/platform/errors"
	"vibibay-client-go/internal/platform/storage"
)

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Store(ctx context.Context, n eventbus.Notification) error {
	record := &storage.NotificationRecord{
		EventID:   n.ID,
		Level:     n.Level,
		Operation: n.Operation,
		Message:   n.Message,
		Code:      n.Code,
		CreatedAt: n.CreatedAt,
	}
	if n.Details != "" {
		attrs, err := json.Marshal(map[string]string{"details": n.Details})
		if err != nil {
			return errors.Wrap(errors.KindStorage, "notification.store", "encode attributes", err)
		}
		record.Attributes = datatypes.JSON(attrs)
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "notification.store", "failed to store notification", err)
	}
	return nil
}

func (r *notificationRepository) Recent(ctx context.Context, limit int) ([]eventbus.Notification, error) {
	return r.find(ctx, r.db.WithContext(ctx), limit)
}

func (r *notificationRepository) FindByLevel(ctx context.Context, level string, limit int) ([]eventbus.Notification, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("level = ?", level), limit)
}

func (r *notificationRepository) DeleteBefore(ctx context.Context, cutoff time.Time) error {
	err := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&storage.NotificationRecord{}).Error
	if err != nil {
		return errors.Wrap(errors.KindStorage, "notification.prune", "failed to prune notifications", err)
	}
	return nil
}

func (r *notificationRepository) Stats(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Level string
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&storage.NotificationRecord{}).
		Select("level, count(*) as count").
		Group("level").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "notification.stats", "failed to count notifications", err)
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Level] = row.Count
	}
	return result, nil
}

func (r *notificationRepository) find(ctx context.Context, query *gorm.DB, limit int) ([]eventbus.Notification, error) {
	var records []storage.NotificationRecord
	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, errors.Wrap(errors.KindStorage, "notification.find", "failed to load notifications", err)
	}

	notifications := make([]eventbus.Notification, len(records))
	for i, record := range records {
		n := eventbus.Notification{
			ID:        record.EventID,
			Level:     record.Level,
			Operation: record.Operation,
			Message:   record.Message,
			Code:      record.Code,
			CreatedAt: record.CreatedAt,
		}
		if len(record.Attributes) > 0 {
			var attrs map[string]string
			if err := json.Unmarshal(record.Attributes, &attrs); err == nil {
				n.Details = attrs["details"]
			}
		}
		notifications[i] = n
	}
	return notifications, nil
}
