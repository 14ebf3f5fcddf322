package auth

import "fmt"

// IsAuthenticated reports whether any credential is populated
func (i *Info) IsAuthenticated() bool {
	return i.kind != KindAnonymous
}

// IsAdmin reports whether the context carries administrative privilege
func (i *Info) IsAdmin() bool {
	switch i.kind {
	case KindUser:
		return i.user.IsSuperuser
	case KindPAT:
		return i.pat.IsSuperuser
	case KindCAT:
		return i.cat.IsAdmin
	default:
		return false
	}
}

// HasScope reports whether the context carries the given scope.
// Superusers implicitly hold every scope; CATs hold read always and
// write only at the read_write permission level.
func (i *Info) HasScope(scope Scope) bool {
	switch i.kind {
	case KindUser:
		if i.user.IsSuperuser {
			return true
		}
		return containsScope(i.user.Scopes, scope)
	case KindPAT:
		if i.pat.IsSuperuser {
			return true
		}
		return containsScope(i.pat.Scopes, scope)
	case KindCAT:
		switch scope {
		case ScopeRead:
			return true
		case ScopeWrite:
			return i.cat.Permission == PermissionReadWrite
		default:
			return i.cat.IsAdmin
		}
	default:
		return false
	}
}

// HasWritePermission decides the write capability for the context
func (i *Info) HasWritePermission() bool {
	switch i.kind {
	case KindUser:
		return i.user.IsSuperuser || containsScope(i.user.Scopes, ScopeWrite)
	case KindPAT:
		return i.pat.IsSuperuser || containsScope(i.pat.Scopes, ScopeWrite)
	case KindCAT:
		return i.cat.Permission == PermissionReadWrite
	default:
		return false
	}
}

// CanAccessCollection decides collection membership for the context.
// A CAT may only act on its bound collection; a PAT on any collection of
// its owning user; a session user must own the collection unless
// superuser.
func (i *Info) CanAccessCollection(collectionID, ownerUserID string) bool {
	switch i.kind {
	case KindUser:
		return i.user.IsSuperuser || i.user.UserID == ownerUserID
	case KindPAT:
		if i.pat.IsSuperuser {
			return true
		}
		for _, id := range i.pat.CollectionIDs {
			if id == collectionID {
				return true
			}
		}
		return false
	case KindCAT:
		return i.cat.CollectionID == collectionID
	default:
		return false
	}
}

// RequireDocumentMutation guards the document write path. Session
// callers are rejected outright: sessions are reserved for account,
// collection and credential management, only PATs and CATs may mutate
// documents.
func (i *Info) RequireDocumentMutation() error {
	switch i.kind {
	case KindUser:
		return fmt.Errorf("%w: document mutation requires a PAT or CAT credential", ErrForbidden)
	case KindPAT:
		if i.pat.IsSuperuser || containsScope(i.pat.Scopes, ScopeWrite) {
			return nil
		}
		return fmt.Errorf("%w: write scope required", ErrForbidden)
	case KindCAT:
		if i.cat.Permission == PermissionReadWrite {
			return nil
		}
		return fmt.Errorf("%w: write access required", ErrForbidden)
	default:
		return ErrUnauthenticated
	}
}

// RequireAdmin guards superuser-only operations
func (i *Info) RequireAdmin() error {
	if !i.IsAuthenticated() {
		return ErrUnauthenticated
	}
	if !i.IsAdmin() {
		return fmt.Errorf("%w: admin access required", ErrForbidden)
	}
	return nil
}

// ActingUserID returns the user the context acts on behalf of, when one
// exists. Service CATs have no acting user.
func (i *Info) ActingUserID() (string, bool) {
	switch i.kind {
	case KindUser:
		return i.user.UserID, true
	case KindPAT:
		return i.pat.UserID, true
	case KindCAT:
		if i.cat.UserID != nil {
			return *i.cat.UserID, true
		}
		return "", false
	default:
		return "", false
	}
}

func containsScope(scopes []Scope, scope Scope) bool {
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}
