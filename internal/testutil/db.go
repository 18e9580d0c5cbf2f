// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"sync"
	"testing"
	"time"

	"kashpages/internal/store"
	"kashpages/internal/store/gormstore"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB opens a migrated in-memory sqlite database that lives as long as the test.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	// one connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(gormstore.Models()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

// Collections returns store collections over a fresh DB.
func Collections(tb testing.TB) store.Collections {
	tb.Helper()
	return gormstore.Open(DB(tb))
}

// Clock returns a deterministic clock that advances one second per call.
func Clock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}
