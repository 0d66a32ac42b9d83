package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"vibibay-client-go/internal/domain/session/model"
	"vibibay-client-go/internal/platform/storage"
)

type sqliteStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewSQLite builds a SQLite-backed session store. This is the durable default,
// the local-storage analog of the web client.
func NewSQLite(db *gorm.DB, cfg Config) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite store requires database handle")
	}
	return &sqliteStore{
		db:  db,
		ttl: cfg.TTL,
	}, nil
}

func (s *sqliteStore) Save(ctx context.Context, session model.Session) error {
	if session.Profile == "" {
		return fmt.Errorf("profile required")
	}
	if session.Token == "" {
		return fmt.Errorf("token required")
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.ExpiresAt == nil && s.ttl > 0 {
		exp := session.CreatedAt.Add(s.ttl)
		session.ExpiresAt = &exp
	}
	meta, _ := json.Marshal(session.Metadata)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile = ?", session.Profile).Delete(&storage.SessionRecord{}).Error; err != nil {
			return err
		}
		record := &storage.SessionRecord{
			Profile:   session.Profile,
			Token:     session.Token,
			Email:     session.Email,
			UserID:    session.UserID,
			Metadata:  meta,
			CreatedAt: session.CreatedAt,
			ExpiresAt: session.ExpiresAt,
		}
		return tx.Create(record).Error
	})
}

func (s *sqliteStore) Get(ctx context.Context, profile string) (model.Session, error) {
	session, err := s.fetch(ctx, profile)
	if err != nil {
		return model.Session{}, err
	}
	if session.Expired() {
		return model.Session{}, fmt.Errorf("profile %s expired: %w", profile, ErrNotFound)
	}
	return session, nil
}

func (s *sqliteStore) Remove(ctx context.Context, profile string) error {
	return s.db.WithContext(ctx).Where("profile = ?", profile).Delete(&storage.SessionRecord{}).Error
}

func (s *sqliteStore) List(ctx context.Context) ([]string, error) {
	var records []storage.SessionRecord
	if err := s.db.WithContext(ctx).Select("profile", "expires_at").Find(&records).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	profiles := make([]string, 0, len(records))
	for _, r := range records {
		if r.ExpiresAt == nil || now.Before(*r.ExpiresAt) {
			profiles = append(profiles, r.Profile)
		}
	}
	return profiles, nil
}

func (s *sqliteStore) CleanupExpired(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).
		Delete(&storage.SessionRecord{}).
		Error
}

func (s *sqliteStore) Stats(ctx context.Context) (map[string]any, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&storage.SessionRecord{}).Count(&total).Error; err != nil {
		return nil, err
	}
	return map[string]any{
		"type":  "sqlite",
		"total": total,
		"ttl":   int(s.ttl.Seconds()),
	}, nil
}

func (s *sqliteStore) Close(context.Context) error {
	return nil
}

func (s *sqliteStore) fetch(ctx context.Context, profile string) (model.Session, error) {
	var record storage.SessionRecord
	err := s.db.WithContext(ctx).Where("profile = ?", profile).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Session{}, fmt.Errorf("profile %s: %w", profile, ErrNotFound)
	}
	if err != nil {
		return model.Session{}, err
	}
	session := model.Session{
		Profile:   record.Profile,
		Token:     record.Token,
		Email:     record.Email,
		UserID:    record.UserID,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}
	if len(record.Metadata) > 0 {
		var meta map[string]any
		if err := json.Unmarshal(record.Metadata, &meta); err == nil {
			session.Metadata = meta
		}
	}
	return session, nil
}
