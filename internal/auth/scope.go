package auth

import (
	"fmt"
	"strings"
)

// Scope is a capability attached to user sessions and PATs
type Scope string

const (
	ScopeRead  Scope = "read"
	ScopeWrite Scope = "write"
	ScopeAdmin Scope = "admin"
)

// Permission is the access level attached to CATs
type Permission string

const (
	PermissionRead      Permission = "read"
	PermissionReadWrite Permission = "read_write"
)

// ParseScope validates a single scope string
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeRead, ScopeWrite, ScopeAdmin:
		return Scope(s), nil
	}
	return "", fmt.Errorf("%w: unknown scope %q", ErrValidation, s)
}

// ParseScopes parses a comma-joined scope string into a scope list.
// Unknown scope tokens are rejected rather than silently dropped.
// An empty string parses to the read scope.
func ParseScopes(scopesStr string) ([]Scope, error) {
	if strings.TrimSpace(scopesStr) == "" {
		return []Scope{ScopeRead}, nil
	}

	var scopes []Scope
	seen := make(map[Scope]bool)
	for _, part := range strings.Split(scopesStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		scope, err := ParseScope(part)
		if err != nil {
			return nil, err
		}
		if !seen[scope] {
			seen[scope] = true
			scopes = append(scopes, scope)
		}
	}

	if len(scopes) == 0 {
		return []Scope{ScopeRead}, nil
	}
	return scopes, nil
}

// ScopesToString serializes a scope list to its canonical comma-joined form
func ScopesToString(scopes []Scope) string {
	parts := make([]string, len(scopes))
	for i, s := range scopes {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

// ScopeStrings converts a scope list to plain strings for JWT claims
func ScopeStrings(scopes []Scope) []string {
	parts := make([]string, len(scopes))
	for i, s := range scopes {
		parts[i] = string(s)
	}
	return parts
}

// ParseScopeList validates a list of raw scope strings
func ParseScopeList(raw []string) ([]Scope, error) {
	if len(raw) == 0 {
		return []Scope{ScopeRead}, nil
	}
	var scopes []Scope
	seen := make(map[Scope]bool)
	for _, s := range raw {
		scope, err := ParseScope(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		if !seen[scope] {
			seen[scope] = true
			scopes = append(scopes, scope)
		}
	}
	return scopes, nil
}

// ParsePermission validates a CAT permission string
func ParsePermission(s string) (Permission, error) {
	switch Permission(s) {
	case PermissionRead, PermissionReadWrite:
		return Permission(s), nil
	}
	return "", fmt.Errorf("%w: unknown permission %q", ErrValidation, s)
}
