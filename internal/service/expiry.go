package service

import (
	"fmt"
	"time"

	"document-memory-backend/internal/auth"
)

// computeExpiry resolves a requested expiry window against the
// configured bounds. An explicit value must satisfy 1 <= n <= maxDays;
// out-of-bounds values fail rather than being clamped. When nothing is
// requested, defaultDays applies, with 0 meaning no expiry.
func computeExpiry(expiresInDays *int, defaultDays, maxDays int) (*time.Time, error) {
	days := 0
	switch {
	case expiresInDays != nil:
		n := *expiresInDays
		if n < 1 || n > maxDays {
			return nil, fmt.Errorf("%w: expires_in_days must be between 1 and %d", auth.ErrValidation, maxDays)
		}
		days = n
	case defaultDays > 0:
		days = defaultDays
	default:
		return nil, nil
	}

	expiresAt := time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
	return &expiresAt, nil
}
