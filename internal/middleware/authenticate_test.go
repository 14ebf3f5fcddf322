package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/models"
	"document-memory-backend/internal/repository"
	"document-memory-backend/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type authFixture struct {
	authenticator *Authenticator
	user          *models.User
	collection    *models.Collection
	patRaw        string
	catRaw        string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	utils.InitJWT("test-secret", 30*time.Minute, 168*time.Hour)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
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
		t.Fatalf("failed to migrate: %v", err)
	}

	user := &models.User{
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "hash",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatal(err)
	}
	collection := &models.Collection{Name: "docs", UserID: user.ID}
	if err := db.Create(collection).Error; err != nil {
		t.Fatal(err)
	}

	catRepo := repository.NewCATRepo(db)
	patRepo := repository.NewPATRepo(db)
	collectionRepo := repository.NewCollectionRepo(db)

	_, patRaw, err := patRepo.CreatePAT("test", user.ID, []auth.Scope{auth.ScopeRead, auth.ScopeWrite}, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, catRaw, err := catRepo.CreateCAT("test", collection.ID, &user.ID, auth.PermissionReadWrite, nil)
	if err != nil {
		t.Fatal(err)
	}

	return &authFixture{
		authenticator: NewAuthenticator(catRepo, patRepo, collectionRepo, "svc-admin-key"),
		user:          user,
		collection:    collection,
		patRaw:        patRaw,
		catRaw:        catRaw,
	}
}

func TestResolveEmptyIsAnonymous(t *testing.T) {
	f := newAuthFixture(t)

	info, err := f.authenticator.Resolve("")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if info.Kind() != auth.KindAnonymous {
		t.Errorf("expected anonymous, got %v", info.Kind())
	}
}

func TestResolvePAT(t *testing.T) {
	f := newAuthFixture(t)

	info, err := f.authenticator.Resolve(f.patRaw)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if info.Kind() != auth.KindPAT {
		t.Fatalf("expected KindPAT, got %v", info.Kind())
	}
	pat := info.PAT()
	if pat.UserID != f.user.ID {
		t.Errorf("expected user %s, got %s", f.user.ID, pat.UserID)
	}
	// The owner's collection set is resolved at authentication time
	if len(pat.CollectionIDs) != 1 || pat.CollectionIDs[0] != f.collection.ID {
		t.Errorf("unexpected collection set: %v", pat.CollectionIDs)
	}
}

func TestResolveCAT(t *testing.T) {
	f := newAuthFixture(t)

	info, err := f.authenticator.Resolve(f.catRaw)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if info.Kind() != auth.KindCAT {
		t.Fatalf("expected KindCAT, got %v", info.Kind())
	}
	cat := info.CAT()
	if cat.CollectionID != f.collection.ID {
		t.Errorf("expected collection %s, got %s", f.collection.ID, cat.CollectionID)
	}
	if cat.QdrantCollection != f.collection.QdrantCollection {
		t.Error("namespace not resolved on the context")
	}
}

func TestResolveJWT(t *testing.T) {
	f := newAuthFixture(t)

	token, err := utils.GenerateAccessToken(f.user.ID, f.user.Username, f.user.Email, false, []string{"read", "write"})
	if err != nil {
		t.Fatal(err)
	}

	info, err := f.authenticator.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if info.Kind() != auth.KindUser {
		t.Fatalf("expected KindUser, got %v", info.Kind())
	}
	if info.User().UserID != f.user.ID {
		t.Errorf("expected user %s, got %s", f.user.ID, info.User().UserID)
	}
}

func TestResolveAdminAPIKey(t *testing.T) {
	f := newAuthFixture(t)

	info, err := f.authenticator.Resolve("svc-admin-key")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !info.IsAdmin() {
		t.Error("admin api key did not resolve to an admin context")
	}
	if _, ok := info.ActingUserID(); ok {
		t.Error("service admin should have no acting user")
	}
}

// Invalid credentials of every kind fail the same way
func TestResolveInvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)

	for _, token := range []string{
		"cat_live_bogus",
		"pat_live_bogus",
		"not.a.jwt",
		"wrong-admin-key",
	} {
		if _, err := f.authenticator.Resolve(token); !errors.Is(err, auth.ErrUnauthenticated) {
			t.Errorf("Resolve(%q): expected ErrUnauthenticated, got %v", token, err)
		}
	}
}

func TestResolveRequest(t *testing.T) {
	f := newAuthFixture(t)

	req := httptest.NewRequest("POST", "/mcp", nil)
	req.Header.Set("Authorization", "Bearer "+f.patRaw)

	ctx := f.authenticator.ResolveRequest(context.Background(), req)
	if auth.FromContext(ctx).Kind() != auth.KindPAT {
		t.Error("request credential not resolved onto the context")
	}

	// An invalid credential degrades to anonymous rather than failing
	bad := httptest.NewRequest("POST", "/mcp", nil)
	bad.Header.Set("Authorization", "Bearer cat_live_bogus")
	ctx = f.authenticator.ResolveRequest(context.Background(), bad)
	if auth.FromContext(ctx).Kind() != auth.KindAnonymous {
		t.Error("invalid credential did not degrade to anonymous")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"Bearer  abc ", "abc"},
	}
	for _, tt := range tests {
		if got := bearerToken(tt.header); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
