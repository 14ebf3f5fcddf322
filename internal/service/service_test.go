package service

import (
	"fmt"
	"testing"
	"time"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/config"
	"document-memory-backend/internal/models"
	"document-memory-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db             *gorm.DB
	userRepo       *repository.UserRepository
	collectionRepo *repository.CollectionRepository
	catRepo        *repository.CATRepository
	patRepo        *repository.PATRepository
	tokenCfg       config.TokenConfig
}

func newTestEnv(t *testing.T) *testEnv {
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

	return &testEnv{
		db:             db,
		userRepo:       repository.NewUserRepo(db),
		collectionRepo: repository.NewCollectionRepo(db),
		catRepo:        repository.NewCATRepo(db),
		patRepo:        repository.NewPATRepo(db),
		tokenCfg: config.TokenConfig{
			PATDefaultExpiryDays: 90,
			PATMaxExpiryDays:     365,
			CATDefaultExpiryDays: 0,
			CATMaxExpiryDays:     365,
		},
	}
}

func (e *testEnv) createUser(t *testing.T, superuser bool) *models.User {
	t.Helper()

	user := &models.User{
		Email:        uuid.New().String() + "@example.com",
		Username:     "user-" + uuid.New().String()[:8],
		PasswordHash: "hash",
		IsActive:     true,
		IsSuperuser:  superuser,
	}
	if err := e.userRepo.CreateUser(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func (e *testEnv) createCollection(t *testing.T, userID string) *models.Collection {
	t.Helper()

	collection := &models.Collection{Name: "test", UserID: userID}
	if err := e.collectionRepo.CreateCollection(collection); err != nil {
		t.Fatalf("failed to create collection: %v", err)
	}
	return collection
}

func sessionFor(user *models.User) *auth.Info {
	scopes := []auth.Scope{auth.ScopeRead, auth.ScopeWrite}
	if user.IsSuperuser {
		scopes = append(scopes, auth.ScopeAdmin)
	}
	return auth.NewUserInfo(auth.UserInfo{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		IsSuperuser: user.IsSuperuser,
		Scopes:      scopes,
	})
}

func intPtr(n int) *int { return &n }
