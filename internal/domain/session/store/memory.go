package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vibibay-client-go/internal/domain/session/model"
)

type memoryStore struct {
	items       map[string]model.Session
	mutex       sync.RWMutex
	ttl         time.Duration
	cleanupFreq time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewMemory builds an in-memory session store.
func NewMemory(cfg Config) Store {
	cleanup := 5 * time.Minute
	if cfg.Memory != nil && cfg.Memory.GCInterval > 0 {
		cleanup = cfg.Memory.GCInterval
	}
	s := &memoryStore{
		items:       make(map[string]model.Session),
		ttl:         cfg.TTL,
		cleanupFreq: cleanup,
		stop:        make(chan struct{}),
	}
	go s.gcLoop()
	return s
}

func (s *memoryStore) gcLoop() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = s.CleanupExpired(context.Background())
		case <-s.stop:
			return
		}
	}
}

func (s *memoryStore) Save(_ context.Context, session model.Session) error {
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
		exp := now.Add(s.ttl)
		session.ExpiresAt = &exp
	}

	s.mutex.Lock()
	s.items[session.Profile] = session
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Get(_ context.Context, profile string) (model.Session, error) {
	s.mutex.RLock()
	session, ok := s.items[profile]
	s.mutex.RUnlock()
	if !ok {
		return model.Session{}, fmt.Errorf("profile %s: %w", profile, ErrNotFound)
	}
	if session.Expired() {
		return model.Session{}, fmt.Errorf("profile %s expired: %w", profile, ErrNotFound)
	}
	return session, nil
}

func (s *memoryStore) Remove(_ context.Context, profile string) error {
	s.mutex.Lock()
	delete(s.items, profile)
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) List(_ context.Context) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	profiles := make([]string, 0, len(s.items))
	for profile, session := range s.items {
		if !session.Expired() {
			profiles = append(profiles, profile)
		}
	}
	return profiles, nil
}

func (s *memoryStore) CleanupExpired(_ context.Context) error {
	s.mutex.Lock()
	for profile, session := range s.items {
		if session.Expired() {
			delete(s.items, profile)
		}
	}
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Stats(_ context.Context) (map[string]any, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	total := len(s.items)
	active := 0
	for _, session := range s.items {
		if !session.Expired() {
			active++
		}
	}
	return map[string]any{
		"type":        "memory",
		"total":       total,
		"active":      active,
		"ttl_seconds": int(s.ttl.Seconds()),
	}, nil
}

func (s *memoryStore) Close(_ context.Context) error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	return nil
}
