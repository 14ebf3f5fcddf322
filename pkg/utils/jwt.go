package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	jwtSecret     []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
)

// Token type claim values
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is the single failure returned for any bad session
// token. Expired, malformed and wrong-type tokens are deliberately not
// distinguished to avoid leaking an oracle to callers.
var ErrInvalidToken = errors.New("invalid or expired token")

// InitJWT initializes the signing secret and expiry durations
func InitJWT(secret string, accessExp, refreshExp time.Duration) {
	jwtSecret = []byte(secret)
	accessExpiry = accessExp
	refreshExpiry = refreshExp
}

// Claims represents the session token payload
type Claims struct {
	Username    string   `json:"username,omitempty"`
	Email       string   `json:"email,omitempty"`
	IsSuperuser bool     `json:"is_superuser,omitempty"`
	Scopes      []string `json:"scopes,omitempty"`
	TokenType   string   `json:"type"`
	jwt.RegisteredClaims
}

// GenerateAccessToken generates a short-lived signed access token
// carrying the user's identity and scope claims
func GenerateAccessToken(userID, username, email string, isSuperuser bool, scopes []string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username:    username,
		Email:       email,
		IsSuperuser: isSuperuser,
		Scopes:      scopes,
		TokenType:   TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// GenerateRefreshToken generates a longer-lived signed refresh token
// carrying only the subject user id
func GenerateRefreshToken(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// decodeToken verifies the signature and expiry of a session token
func decodeToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateAccessToken validates a session token and requires the access type
func ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := decodeToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateRefreshToken validates a session token and requires the refresh type
func ValidateRefreshToken(tokenString string) (*Claims, error) {
	claims, err := decodeToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GetAccessTokenExpiry returns the access token lifetime in seconds,
// reported to clients in token responses
func GetAccessTokenExpiry() int {
	return int(accessExpiry.Seconds())
}
