package repository

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"document-memory-backend/internal/auth"
)

func TestCreateAndValidatePAT(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	repo := NewPATRepo(db)

	pat, raw, err := repo.CreatePAT("laptop", user.ID, []auth.Scope{auth.ScopeRead, auth.ScopeWrite}, nil)
	if err != nil {
		t.Fatalf("CreatePAT failed: %v", err)
	}
	if !strings.HasPrefix(raw, "pat_live_") {
		t.Errorf("raw token missing prefix: %s", raw)
	}
	if pat.Scopes != "read,write" {
		t.Errorf("expected canonical scopes, got %q", pat.Scopes)
	}

	info, err := repo.ValidatePAT(raw)
	if err != nil {
		t.Fatalf("ValidatePAT failed: %v", err)
	}
	if info == nil {
		t.Fatal("valid token did not resolve")
	}
	if info.UserID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, info.UserID)
	}
	if !reflect.DeepEqual(info.Scopes, []auth.Scope{auth.ScopeRead, auth.ScopeWrite}) {
		t.Errorf("unexpected scopes: %v", info.Scopes)
	}
}

func TestValidatePATRejectsInactiveUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	repo := NewPATRepo(db)

	_, raw, err := repo.CreatePAT("laptop", user.ID, []auth.Scope{auth.ScopeRead}, nil)
	if err != nil {
		t.Fatalf("CreatePAT failed: %v", err)
	}

	if err := db.Model(user).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate user: %v", err)
	}

	info, err := repo.ValidatePAT(raw)
	if err != nil {
		t.Fatalf("ValidatePAT failed: %v", err)
	}
	if info != nil {
		t.Error("token of a deactivated user resolved")
	}
}

func TestValidatePATRejectsExpired(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	repo := NewPATRepo(db)

	_, raw, err := repo.CreatePAT("expired", user.ID, []auth.Scope{auth.ScopeRead}, pastTime(time.Minute))
	if err != nil {
		t.Fatalf("CreatePAT failed: %v", err)
	}

	info, err := repo.ValidatePAT(raw)
	if err != nil {
		t.Fatalf("ValidatePAT failed: %v", err)
	}
	if info != nil {
		t.Error("expired token resolved")
	}
}

func TestRevokePAT(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	repo := NewPATRepo(db)

	pat, raw, err := repo.CreatePAT("to revoke", user.ID, []auth.Scope{auth.ScopeRead}, nil)
	if err != nil {
		t.Fatalf("CreatePAT failed: %v", err)
	}

	if err := repo.RevokePAT(pat.ID); err != nil {
		t.Fatalf("RevokePAT failed: %v", err)
	}
	if info, _ := repo.ValidatePAT(raw); info != nil {
		t.Error("revoked token resolved")
	}
	if err := repo.RevokePAT(pat.ID); err != nil {
		t.Errorf("second revoke failed: %v", err)
	}
	if err := repo.RevokePAT("no-such-id"); !errors.Is(err, auth.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRotatePAT(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	repo := NewPATRepo(db)

	old, oldRaw, err := repo.CreatePAT("rotating", user.ID, []auth.Scope{auth.ScopeRead, auth.ScopeWrite}, futureTime(time.Hour))
	if err != nil {
		t.Fatalf("CreatePAT failed: %v", err)
	}

	rotated, newRaw, err := repo.RotatePAT(old.ID)
	if err != nil {
		t.Fatalf("RotatePAT failed: %v", err)
	}

	if rotated.ID == old.ID || newRaw == oldRaw {
		t.Error("rotation reused the old identity or secret")
	}
	if rotated.Scopes != old.Scopes || rotated.Label != old.Label || rotated.UserID != old.UserID {
		t.Error("rotation did not copy the token attributes")
	}

	if info, _ := repo.ValidatePAT(oldRaw); info != nil {
		t.Error("old secret still resolves after rotation")
	}
	if info, _ := repo.ValidatePAT(newRaw); info == nil {
		t.Error("new secret did not resolve")
	}

	if _, _, err := repo.RotatePAT(old.ID); !errors.Is(err, auth.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double rotate, got %v", err)
	}
}

func TestDeactivateExpiredPATs(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	repo := NewPATRepo(db)

	if _, _, err := repo.CreatePAT("expired", user.ID, []auth.Scope{auth.ScopeRead}, pastTime(time.Hour)); err != nil {
		t.Fatal(err)
	}
	live, _, err := repo.CreatePAT("live", user.ID, []auth.Scope{auth.ScopeRead}, futureTime(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	swept, err := repo.DeactivateExpiredPATs(time.Now().UTC())
	if err != nil {
		t.Fatalf("DeactivateExpiredPATs failed: %v", err)
	}
	if swept != 1 {
		t.Errorf("expected 1 swept token, got %d", swept)
	}

	stored, err := repo.GetPATByID(live.ID)
	if err != nil {
		t.Fatalf("GetPATByID failed: %v", err)
	}
	if !stored.IsActive {
		t.Error("unexpired token was swept")
	}
}
