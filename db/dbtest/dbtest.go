// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hoaxify/models"
)

var counter atomic.Uint64

// New returns a migrated in-memory database private to the calling test
func New(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, counter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// One connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err = models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, DisplayName: "display-" + username}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func CreateAttachment(t testing.TB, db *gorm.DB, attachment models.Attachment) models.Attachment {
	t.Helper()
	if attachment.StorageName == "" {
		attachment.StorageName = fmt.Sprintf("blob-%d", counter.Add(1))
	}
	if err := db.Create(&attachment).Error; err != nil {
		t.Fatalf("create attachment: %v", err)
	}
	return attachment
}
