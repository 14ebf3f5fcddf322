package repository

import (
	"errors"
	"testing"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/models"
)

func TestCreateUserConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)

	user := &models.User{
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "hash",
		IsActive:     true,
	}
	if err := repo.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	dup := &models.User{
		Email:        "alice@example.com",
		Username:     "alice2",
		PasswordHash: "hash",
	}
	if err := repo.CreateUser(dup); !errors.Is(err, auth.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate email, got %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)

	if _, err := repo.GetUserByID("missing"); !errors.Is(err, auth.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetUserByUsername("missing"); !errors.Is(err, auth.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)
	user := createTestUser(t, db)
	collection := createTestCollection(t, db, user.ID)

	catRepo := NewCATRepo(db)
	patRepo := NewPATRepo(db)
	docRepo := NewDocumentRepo(db)

	if _, _, err := catRepo.CreateCAT("cat", collection.ID, &user.ID, auth.PermissionRead, nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := patRepo.CreatePAT("pat", user.ID, []auth.Scope{auth.ScopeRead}, nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := docRepo.CreateDocument(&models.Document{
		CollectionID: collection.ID,
		Title:        "doc",
		Content:      "body",
	}); err != nil {
		t.Fatal(err)
	}

	if err := repo.DeleteUser(user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := repo.GetUserByID(user.ID); !errors.Is(err, auth.ErrNotFound) {
		t.Errorf("user still present: %v", err)
	}

	var count int64
	for _, model := range []interface{}{
		&models.Collection{},
		&models.Document{},
		&models.CollectionAccessToken{},
		&models.PersonalAccessToken{},
	} {
		if err := db.Model(model).Count(&count).Error; err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Errorf("%T rows survived user deletion: %d", model, count)
		}
	}
}

func TestSearchUsers(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)

	for _, u := range []models.User{
		{Email: "alice@example.com", Username: "alice", PasswordHash: "h", IsActive: true},
		{Email: "bob@example.com", Username: "bob", PasswordHash: "h", IsActive: true},
		{Email: "alicia@example.com", Username: "alicia", PasswordHash: "h", IsActive: true},
	} {
		u := u
		if err := repo.CreateUser(&u); err != nil {
			t.Fatal(err)
		}
	}

	found, err := repo.SearchUsers("alic", 10, 0)
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("expected 2 matches, got %d", len(found))
	}
}
