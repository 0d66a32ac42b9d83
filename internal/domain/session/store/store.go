package store

import (
	"context"
	"errors"
	"time"

	"vibibay-client-go/internal/domain/session/model"
)

// ErrNotFound is returned when a profile holds no stored session.
var ErrNotFound = errors.New("session not found")

// Store persists credential sessions keyed by profile name.
type Store interface {
	Save(ctx context.Context, session model.Session) error
	Get(ctx context.Context, profile string) (model.Session, error)
	Remove(ctx context.Context, profile string) error
	List(ctx context.Context) ([]string, error)
	CleanupExpired(ctx context.Context) error
	Stats(ctx context.Context) (map[string]any, error)
	Close(ctx context.Context) error
}

// Config describes the high level store selection parameters.
type Config struct {
	Driver string
	TTL    time.Duration
	Redis  *RedisConfig
	SQLite *SQLiteConfig
	Memory *MemoryConfig
}

// MemoryConfig holds in-memory tuning knobs.
type MemoryConfig struct {
	GCInterval time.Duration
}

// SQLiteConfig provides the database dependency.
type SQLiteConfig struct {
	DSN string
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}
