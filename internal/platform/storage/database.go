package storage

import (
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vibibay-client-go/internal/platform/errors"
)

var (
	db     *gorm.DB
	dbOnce sync.Once
)

// InitDatabase opens the local SQLite database and applies pending migrations.
// Safe to call more than once; only the first call opens the handle.
func InitDatabase(dsn string) error {
	var initErr error
	dbOnce.Do(func() {
		if dsn == "" {
			dsn = "vibibay.db"
		}
		handle, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			initErr = errors.Wrap(errors.KindStorage, "storage.open", "failed to open sqlite database", err)
			return
		}

		manager := NewMigrationManager(handle)
		manager.AddMigration(&sessionTableMigration{})
		manager.AddMigration(&notificationTableMigration{})
		if err := manager.RunMigrations(); err != nil {
			initErr = err
			return
		}

		db = handle
	})
	return initErr
}

// GetDB returns the shared database handle, or nil before InitDatabase.
func GetDB() *gorm.DB {
	return db
}

// OpenForTest opens an isolated database for tests, bypassing the singleton.
func OpenForTest(dsn string) (*gorm.DB, error) {
	handle, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "storage.open", "failed to open sqlite database", err)
	}

	manager := NewMigrationManager(handle)
	manager.AddMigration(&sessionTableMigration{})
	manager.AddMigration(&notificationTableMigration{})
	if err := manager.RunMigrations(); err != nil {
		return nil, err
	}
	return handle, nil
}
