// Package testutil opens throwaway SQLite databases for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/SundayYogurt/channel_service/internal/domain"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns a migrated in-memory database private to the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// SeedUser inserts an account with a placeholder hash.
func SeedUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: username,
		Avatar:   "https://cdn.example.com/" + username + ".jpg",
		Password: "$2a$10$placeholder",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func SeedVideo(t *testing.T, db *gorm.DB, ownerID uint, title string) *domain.Video {
	t.Helper()
	v := &domain.Video{
		OwnerID:   ownerID,
		Title:     title,
		VideoFile: "https://cdn.example.com/v/" + title + ".mp4",
		Thumbnail: "https://cdn.example.com/t/" + title + ".jpg",
		Duration:  61.5,
	}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("seed video %s: %v", title, err)
	}
	return v
}

func Subscribe(t *testing.T, db *gorm.DB, subscriberID, channelID uint) {
	t.Helper()
	if err := db.Create(&domain.Subscription{SubscriberID: subscriberID, ChannelID: channelID}).Error; err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
}
