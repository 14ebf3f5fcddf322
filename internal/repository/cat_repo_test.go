package repository

import (
	"errors"
	"strings"
	"testing"
	"time"

	"document-memory-backend/internal/auth"
)

func TestCreateAndValidateCAT(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	collection := createTestCollection(t, db, user.ID)
	repo := NewCATRepo(db)

	cat, raw, err := repo.CreateCAT("ci token", collection.ID, &user.ID, auth.PermissionReadWrite, nil)
	if err != nil {
		t.Fatalf("CreateCAT failed: %v", err)
	}
	if !strings.HasPrefix(raw, "cat_live_") {
		t.Errorf("raw token missing prefix: %s", raw)
	}
	if strings.Contains(cat.KeyHash, raw) || cat.KeyHash == raw {
		t.Error("raw token leaked into the stored hash")
	}

	info, err := repo.ValidateCAT(raw)
	if err != nil {
		t.Fatalf("ValidateCAT failed: %v", err)
	}
	if info == nil {
		t.Fatal("valid token did not resolve")
	}
	if info.TokenID != cat.ID {
		t.Errorf("expected token id %s, got %s", cat.ID, info.TokenID)
	}
	if info.CollectionID != collection.ID {
		t.Errorf("expected collection %s, got %s", collection.ID, info.CollectionID)
	}
	if info.QdrantCollection != collection.QdrantCollection {
		t.Errorf("namespace mismatch: %s vs %s", info.QdrantCollection, collection.QdrantCollection)
	}
	if info.Permission != auth.PermissionReadWrite {
		t.Errorf("expected read_write, got %s", info.Permission)
	}

	// Validation touches last_used
	stored, err := repo.GetCATByID(cat.ID)
	if err != nil {
		t.Fatalf("GetCATByID failed: %v", err)
	}
	if stored.LastUsed == nil {
		t.Error("last_used not set after validation")
	}
}

func TestValidateCATRejectsUnknownToken(t *testing.T) {
	db := newTestDB(t)
	repo := NewCATRepo(db)

	info, err := repo.ValidateCAT("cat_live_doesnotexist")
	if err != nil {
		t.Fatalf("ValidateCAT failed: %v", err)
	}
	if info != nil {
		t.Error("unknown token resolved")
	}
}

func TestValidateCATRejectsExpired(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	collection := createTestCollection(t, db, user.ID)
	repo := NewCATRepo(db)

	_, raw, err := repo.CreateCAT("expired", collection.ID, &user.ID, auth.PermissionRead, pastTime(time.Minute))
	if err != nil {
		t.Fatalf("CreateCAT failed: %v", err)
	}

	info, err := repo.ValidateCAT(raw)
	if err != nil {
		t.Fatalf("ValidateCAT failed: %v", err)
	}
	if info != nil {
		t.Error("expired token resolved")
	}
}

func TestRevokeCAT(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	collection := createTestCollection(t, db, user.ID)
	repo := NewCATRepo(db)

	cat, raw, err := repo.CreateCAT("to revoke", collection.ID, &user.ID, auth.PermissionRead, nil)
	if err != nil {
		t.Fatalf("CreateCAT failed: %v", err)
	}

	if err := repo.RevokeCAT(cat.ID); err != nil {
		t.Fatalf("RevokeCAT failed: %v", err)
	}

	info, err := repo.ValidateCAT(raw)
	if err != nil {
		t.Fatalf("ValidateCAT failed: %v", err)
	}
	if info != nil {
		t.Error("revoked token resolved")
	}

	// Revoking again still succeeds
	if err := repo.RevokeCAT(cat.ID); err != nil {
		t.Errorf("second revoke failed: %v", err)
	}

	// A missing id fails
	if err := repo.RevokeCAT("no-such-id"); !errors.Is(err, auth.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRotateCAT(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	collection := createTestCollection(t, db, user.ID)
	repo := NewCATRepo(db)

	expiry := futureTime(24 * time.Hour)
	old, oldRaw, err := repo.CreateCAT("rotating", collection.ID, &user.ID, auth.PermissionReadWrite, expiry)
	if err != nil {
		t.Fatalf("CreateCAT failed: %v", err)
	}

	rotated, newRaw, err := repo.RotateCAT(old.ID)
	if err != nil {
		t.Fatalf("RotateCAT failed: %v", err)
	}

	if rotated.ID == old.ID {
		t.Error("rotation reused the old id")
	}
	if newRaw == oldRaw {
		t.Error("rotation reused the old secret")
	}
	if rotated.Label != old.Label || rotated.CollectionID != old.CollectionID || rotated.Permission != old.Permission {
		t.Error("rotation did not copy the token attributes")
	}
	if rotated.ExpiresAt == nil || !rotated.ExpiresAt.Equal(*expiry) {
		t.Error("rotation did not copy the expiry")
	}

	// Old secret is dead, new one works
	if info, _ := repo.ValidateCAT(oldRaw); info != nil {
		t.Error("old secret still resolves after rotation")
	}
	info, err := repo.ValidateCAT(newRaw)
	if err != nil || info == nil {
		t.Fatalf("new secret did not resolve: %v", err)
	}

	// The old id lost its active flag, so a second rotation on it fails
	if _, _, err := repo.RotateCAT(old.ID); !errors.Is(err, auth.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double rotate, got %v", err)
	}
}

func TestRotateRevokedCATFails(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	collection := createTestCollection(t, db, user.ID)
	repo := NewCATRepo(db)

	cat, _, err := repo.CreateCAT("revoked", collection.ID, &user.ID, auth.PermissionRead, nil)
	if err != nil {
		t.Fatalf("CreateCAT failed: %v", err)
	}
	if err := repo.RevokeCAT(cat.ID); err != nil {
		t.Fatalf("RevokeCAT failed: %v", err)
	}

	if _, _, err := repo.RotateCAT(cat.ID); !errors.Is(err, auth.ErrNotFound) {
		t.Errorf("expected ErrNotFound rotating a revoked token, got %v", err)
	}
}

func TestDeactivateExpiredCATs(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	collection := createTestCollection(t, db, user.ID)
	repo := NewCATRepo(db)

	if _, _, err := repo.CreateCAT("expired", collection.ID, &user.ID, auth.PermissionRead, pastTime(time.Hour)); err != nil {
		t.Fatalf("CreateCAT failed: %v", err)
	}
	live, _, err := repo.CreateCAT("live", collection.ID, &user.ID, auth.PermissionRead, futureTime(time.Hour))
	if err != nil {
		t.Fatalf("CreateCAT failed: %v", err)
	}
	forever, _, err := repo.CreateCAT("forever", collection.ID, &user.ID, auth.PermissionRead, nil)
	if err != nil {
		t.Fatalf("CreateCAT failed: %v", err)
	}

	swept, err := repo.DeactivateExpiredCATs(time.Now().UTC())
	if err != nil {
		t.Fatalf("DeactivateExpiredCATs failed: %v", err)
	}
	if swept != 1 {
		t.Errorf("expected 1 swept token, got %d", swept)
	}

	for _, id := range []string{live.ID, forever.ID} {
		cat, err := repo.GetCATByID(id)
		if err != nil {
			t.Fatalf("GetCATByID failed: %v", err)
		}
		if !cat.IsActive {
			t.Errorf("unexpired token %s was swept", id)
		}
	}
}

func TestListCATs(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db)
	bob := createTestUser(t, db)
	aliceCol := createTestCollection(t, db, alice.ID)
	bobCol := createTestCollection(t, db, bob.ID)
	repo := NewCATRepo(db)

	if _, _, err := repo.CreateCAT("alice 1", aliceCol.ID, &alice.ID, auth.PermissionRead, nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := repo.CreateCAT("alice 2", aliceCol.ID, &alice.ID, auth.PermissionRead, nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := repo.CreateCAT("bob 1", bobCol.ID, &bob.ID, auth.PermissionRead, nil); err != nil {
		t.Fatal(err)
	}

	mine, err := repo.ListCATsByUser(alice.ID)
	if err != nil {
		t.Fatalf("ListCATsByUser failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 tokens for alice, got %d", len(mine))
	}

	all, err := repo.ListAllCATs(nil)
	if err != nil {
		t.Fatalf("ListAllCATs failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 tokens total, got %d", len(all))
	}

	filtered, err := repo.ListAllCATs(&bob.ID)
	if err != nil {
		t.Fatalf("ListAllCATs filtered failed: %v", err)
	}
	if len(filtered) != 1 {
		t.Errorf("expected 1 token for bob, got %d", len(filtered))
	}
}
