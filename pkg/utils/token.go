package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Opaque token prefixes. The prefix routes an inbound credential to the
// right store without a database roundtrip.
const (
	CATTokenPrefix = "cat_live_"
	PATTokenPrefix = "pat_live_"
)

// tokenSecretBytes is the entropy of the random token body. 32 bytes
// encode to 43 base64url characters.
const tokenSecretBytes = 32

// generateToken builds an opaque token: prefix plus the base64url
// encoding of random bytes
func generateToken(prefix string) (string, error) {
	secret := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("failed to generate token secret: %w", err)
	}
	return prefix + base64.RawURLEncoding.EncodeToString(secret), nil
}

// GenerateCATToken generates a raw collection access token
func GenerateCATToken() (string, error) {
	return generateToken(CATTokenPrefix)
}

// GeneratePATToken generates a raw personal access token
func GeneratePATToken() (string, error) {
	return generateToken(PATTokenPrefix)
}

// HashToken returns the hex SHA-256 digest of a raw token. Only this
// digest is ever persisted.
func HashToken(rawToken string) string {
	digest := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(digest[:])
}

// ComputeContentHash returns the hex SHA-256 digest of document
// content, used for per-collection deduplication
func ComputeContentHash(content string) string {
	digest := sha256.Sum256([]byte(content))
	return hex.EncodeToString(digest[:])
}

// IsCATToken reports whether a raw credential carries the CAT prefix
func IsCATToken(token string) bool {
	return strings.HasPrefix(token, CATTokenPrefix)
}

// IsPATToken reports whether a raw credential carries the PAT prefix
func IsPATToken(token string) bool {
	return strings.HasPrefix(token, PATTokenPrefix)
}

// LooksLikeJWT reports whether a credential has the three-segment shape
// of a session token
func LooksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}
