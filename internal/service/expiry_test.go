package service

import (
	"errors"
	"testing"
	"time"

	"document-memory-backend/internal/auth"
)

func TestComputeExpiry(t *testing.T) {
	tests := []struct {
		name        string
		request     *int
		defaultDays int
		maxDays     int
		wantNil     bool
		wantDays    int
		wantErr     bool
	}{
		{"nil with zero default never expires", nil, 0, 365, true, 0, false},
		{"nil takes the default", nil, 90, 365, false, 90, false},
		{"explicit value", intPtr(30), 90, 365, false, 30, false},
		{"explicit max", intPtr(365), 90, 365, false, 365, false},
		{"zero rejected", intPtr(0), 90, 365, false, 0, true},
		{"negative rejected", intPtr(-1), 90, 365, false, 0, true},
		{"beyond max rejected not clamped", intPtr(366), 90, 365, false, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := computeExpiry(tt.request, tt.defaultDays, tt.maxDays)
			if tt.wantErr {
				if !errors.Is(err, auth.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("computeExpiry failed: %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil expiry, got %v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected an expiry, got nil")
			}
			want := time.Now().UTC().Add(time.Duration(tt.wantDays) * 24 * time.Hour)
			if diff := got.Sub(want); diff < -time.Minute || diff > time.Minute {
				t.Errorf("expiry off by %v", diff)
			}
		})
	}
}
