package repository

import (
	"fmt"
	"testing"
	"time"

	"document-memory-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Collection{},
		&models.Document{},
		&models.CollectionAccessToken{},
		&models.PersonalAccessToken{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		Email:        uuid.New().String() + "@example.com",
		Username:     "user-" + uuid.New().String()[:8],
		PasswordHash: "not-a-real-hash",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestCollection(t *testing.T, db *gorm.DB, userID string) *models.Collection {
	t.Helper()

	collection := &models.Collection{
		Name:   "test-collection",
		UserID: userID,
	}
	if err := db.Create(collection).Error; err != nil {
		t.Fatalf("failed to create test collection: %v", err)
	}
	return collection
}

func pastTime(d time.Duration) *time.Time {
	ts := time.Now().UTC().Add(-d)
	return &ts
}

func futureTime(d time.Duration) *time.Time {
	ts := time.Now().UTC().Add(d)
	return &ts
}
