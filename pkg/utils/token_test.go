package utils

import (
	"strings"
	"testing"
)

func TestGenerateCATToken(t *testing.T) {
	token, err := GenerateCATToken()
	if err != nil {
		t.Fatalf("GenerateCATToken failed: %v", err)
	}

	if !strings.HasPrefix(token, CATTokenPrefix) {
		t.Errorf("expected prefix %q, got %q", CATTokenPrefix, token)
	}
	secret := strings.TrimPrefix(token, CATTokenPrefix)
	if len(secret) != 43 {
		t.Errorf("expected 43 secret characters, got %d", len(secret))
	}
}

func TestGeneratePATToken(t *testing.T) {
	token, err := GeneratePATToken()
	if err != nil {
		t.Fatalf("GeneratePATToken failed: %v", err)
	}

	if !strings.HasPrefix(token, PATTokenPrefix) {
		t.Errorf("expected prefix %q, got %q", PATTokenPrefix, token)
	}
	secret := strings.TrimPrefix(token, PATTokenPrefix)
	if len(secret) != 43 {
		t.Errorf("expected 43 secret characters, got %d", len(secret))
	}
}

func TestTokenUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		token, err := GenerateCATToken()
		if err != nil {
			t.Fatalf("GenerateCATToken failed: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestHashToken(t *testing.T) {
	hash := HashToken("cat_live_example")

	if len(hash) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(hash))
	}
	if hash != HashToken("cat_live_example") {
		t.Error("hashing is not deterministic")
	}
	if hash == HashToken("cat_live_other") {
		t.Error("different tokens produced the same hash")
	}
}

func TestTokenClassification(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		isCAT   bool
		isPAT   bool
		isJWTey bool
	}{
		{"cat token", "cat_live_abc123", true, false, false},
		{"pat token", "pat_live_abc123", false, true, false},
		{"jwt shape", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0.sig", false, false, true},
		{"opaque key", "some-admin-api-key", false, false, false},
		{"empty", "", false, false, false},
		{"one dot", "a.b", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCATToken(tt.token); got != tt.isCAT {
				t.Errorf("IsCATToken = %v, want %v", got, tt.isCAT)
			}
			if got := IsPATToken(tt.token); got != tt.isPAT {
				t.Errorf("IsPATToken = %v, want %v", got, tt.isPAT)
			}
			if got := LooksLikeJWT(tt.token); got != tt.isJWTey {
				t.Errorf("LooksLikeJWT = %v, want %v", got, tt.isJWTey)
			}
		})
	}
}

func TestComputeContentHash(t *testing.T) {
	if ComputeContentHash("hello") != ComputeContentHash("hello") {
		t.Error("content hashing is not deterministic")
	}
	if ComputeContentHash("hello") == ComputeContentHash("hello ") {
		t.Error("different content produced the same hash")
	}
}
