package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"vibibay-client-go/internal/domain/session/model"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis constructs a redis-backed session store.
func NewRedis(cfg Config) (Store, error) {
	if cfg.Redis == nil {
		return nil, fmt.Errorf("redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = "vibibay:session:"
	}

	return &redisStore{
		client: client,
		ttl:    cfg.TTL,
		prefix: prefix,
	}, nil
}

func (s *redisStore) key(profile string) string {
	return s.prefix + profile
}

func (s *redisStore) Save(ctx context.Context, session model.Session) error {
	if session.Profile == "" {
		return fmt.Errorf("profile required")
	}
	if session.Token == "" {
		return fmt.Errorf("token required")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	expiry := s.ttl
	if session.ExpiresAt != nil {
		expiry = time.Until(*session.ExpiresAt)
	}
	return s.client.Set(ctx, s.key(session.Profile), data, expiry).Err()
}

func (s *redisStore) Get(ctx context.Context, profile string) (model.Session, error) {
	raw, err := s.client.Get(ctx, s.key(profile)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return model.Session{}, fmt.Errorf("profile %s: %w", profile, ErrNotFound)
		}
		return model.Session{}, err
	}
	var session model.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return model.Session{}, err
	}
	if session.Expired() {
		_ = s.Remove(ctx, profile)
		return model.Session{}, fmt.Errorf("profile %s expired: %w", profile, ErrNotFound)
	}
	return session, nil
}

func (s *redisStore) Remove(ctx context.Context, profile string) error {
	return s.client.Del(ctx, s.key(profile)).Err()
}

func (s *redisStore) List(ctx context.Context) ([]string, error) {
	var cursor uint64
	profiles := make([]string, 0)
	pattern := s.prefix + "*"
	for {
		res, nextCursor, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range res {
			profiles = append(profiles, strings.TrimPrefix(key, s.prefix))
		}
		if nextCursor == 0 {
			break
		}
		cursor = nextCursor
	}
	return profiles, nil
}

func (s *redisStore) CleanupExpired(context.Context) error {
	// Redis handles expiration via TTL.
	return nil
}

func (s *redisStore) Stats(ctx context.Context) (map[string]any, error) {
	size, err := s.client.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"type":  "redis",
		"total": size,
		"ttl":   int(s.ttl.Seconds()),
	}, nil
}

func (s *redisStore) Close(context.Context) error {
	return s.client.Close()
}
