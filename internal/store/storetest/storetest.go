// Package storetest provides throwaway stores for tests.
package storetest

import (
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/farellandr/eventhub/internal/store"
)

// NewSQLiteStore returns a GormStore over a private in-memory sqlite
// database, closed when the test ends.
func NewSQLiteStore(t *testing.T) *store.GormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every connection to :memory: is a new database, so pin the pool to one.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	s := store.NewGormStore(db)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return s
}

// NewPostgresStore returns a GormStore on DATABASE_URL and skips the test
// when it is unset. Rows are left behind, so point it at a scratch database.
func NewPostgresStore(t *testing.T) *store.GormStore {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open postgres: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate postgres: %v", err)
	}

	s := store.NewGormStore(db)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Failed to close postgres: %v", err)
		}
	})
	return s
}
