package service

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"document-memory-backend/internal/auth"
)

func TestCreatePATInheritsScopes(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, false)
	svc := NewPATService(env.patRepo, env.userRepo, env.tokenCfg)

	resp, err := svc.CreatePAT(sessionFor(user), CreatePATRequest{Label: "laptop"})
	if err != nil {
		t.Fatalf("CreatePAT failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("response missing the raw token")
	}
	if !reflect.DeepEqual(resp.Scopes, []string{"read", "write"}) {
		t.Errorf("expected inherited scopes [read write], got %v", resp.Scopes)
	}
	// PAT default expiry applies
	if resp.ExpiresAt == nil {
		t.Fatal("expected a default expiry")
	}
	want := time.Now().UTC().Add(90 * 24 * time.Hour)
	if diff := resp.ExpiresAt.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("default expiry off by %v", diff)
	}
}

func TestCreatePATCannotExceedOwnScopes(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, false)
	svc := NewPATService(env.patRepo, env.userRepo, env.tokenCfg)

	// A non-superuser session holds read and write, never admin
	_, err := svc.CreatePAT(sessionFor(user), CreatePATRequest{
		Label:  "escalation",
		Scopes: []string{"read", "admin"},
	})
	if !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("expected ErrForbidden for scope escalation, got %v", err)
	}

	// Unknown scopes are rejected outright
	_, err = svc.CreatePAT(sessionFor(user), CreatePATRequest{
		Label:  "typo",
		Scopes: []string{"reed"},
	})
	if !errors.Is(err, auth.ErrValidation) {
		t.Errorf("expected ErrValidation for unknown scope, got %v", err)
	}

	// Narrowing is fine
	resp, err := svc.CreatePAT(sessionFor(user), CreatePATRequest{
		Label:  "read only",
		Scopes: []string{"read"},
	})
	if err != nil {
		t.Fatalf("CreatePAT failed: %v", err)
	}
	if !reflect.DeepEqual(resp.Scopes, []string{"read"}) {
		t.Errorf("expected [read], got %v", resp.Scopes)
	}
}

func TestCreatePATForInactiveUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, false)
	svc := NewPATService(env.patRepo, env.userRepo, env.tokenCfg)

	if err := env.db.Model(user).Update("is_active", false).Error; err != nil {
		t.Fatal(err)
	}

	_, err := svc.CreatePAT(sessionFor(user), CreatePATRequest{Label: "stale session"})
	if !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for a deactivated user, got %v", err)
	}
}

func TestPATOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, false)
	stranger := env.createUser(t, false)
	svc := NewPATService(env.patRepo, env.userRepo, env.tokenCfg)

	created, err := svc.CreatePAT(sessionFor(owner), CreatePATRequest{Label: "mine"})
	if err != nil {
		t.Fatalf("CreatePAT failed: %v", err)
	}

	if err := svc.RevokePAT(sessionFor(stranger), created.ID); !errors.Is(err, auth.ErrNotFound) {
		t.Errorf("expected NotFound for foreign revoke, got %v", err)
	}
	if _, err := svc.RotatePAT(sessionFor(stranger), created.ID); !errors.Is(err, auth.ErrNotFound) {
		t.Errorf("expected NotFound for foreign rotate, got %v", err)
	}

	rotated, err := svc.RotatePAT(sessionFor(owner), created.ID)
	if err != nil {
		t.Fatalf("RotatePAT failed: %v", err)
	}
	if rotated.Token == "" || rotated.Token == created.Token {
		t.Error("rotation did not issue a fresh raw token")
	}
	if !reflect.DeepEqual(rotated.Scopes, created.Scopes) {
		t.Errorf("rotation changed the scopes: %v vs %v", rotated.Scopes, created.Scopes)
	}

	// Only the caller's tokens are listed
	mine, err := svc.ListPATs(sessionFor(owner))
	if err != nil {
		t.Fatalf("ListPATs failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 tokens (old inactive and rotated), got %d", len(mine))
	}
	theirs, err := svc.ListPATs(sessionFor(stranger))
	if err != nil {
		t.Fatalf("ListPATs failed: %v", err)
	}
	if len(theirs) != 0 {
		t.Errorf("stranger sees %d foreign tokens", len(theirs))
	}
}
