package auth

import "context"

// Kind identifies which credential authenticated the current request
type Kind int

const (
	KindAnonymous Kind = iota
	KindUser
	KindPAT
	KindCAT
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindPAT:
		return "pat"
	case KindCAT:
		return "cat"
	default:
		return "anonymous"
	}
}

// UserInfo identifies a session-authenticated caller
type UserInfo struct {
	UserID      string
	Username    string
	Email       string
	IsSuperuser bool
	Scopes      []Scope
}

// PATInfo identifies a Personal Access Token caller. CollectionIDs is
// the owning user's collection set, resolved at authentication time.
type PATInfo struct {
	TokenID       string
	UserID        string
	Username      string
	Email         string
	IsSuperuser   bool
	Scopes        []Scope
	CollectionIDs []string
}

// CATInfo identifies a Collection Access Token caller, scoped to
// exactly one collection. UserID is nil for service tokens not tied to
// a user.
type CATInfo struct {
	TokenID          string
	UserID           *string
	CollectionID     string
	CollectionName   string
	QdrantCollection string
	Permission       Permission
	IsAdmin          bool
}

// Info is the per-request authorization context. Exactly one credential
// branch is populated, matching the Kind; the zero value is anonymous.
type Info struct {
	kind Kind
	user *UserInfo
	pat  *PATInfo
	cat  *CATInfo
}

// Anonymous returns the unauthenticated context
func Anonymous() *Info {
	return &Info{kind: KindAnonymous}
}

// NewUserInfo builds a session-authenticated context
func NewUserInfo(user UserInfo) *Info {
	return &Info{kind: KindUser, user: &user}
}

// NewPATInfo builds a PAT-authenticated context
func NewPATInfo(pat PATInfo) *Info {
	return &Info{kind: KindPAT, pat: &pat}
}

// NewCATInfo builds a CAT-authenticated context
func NewCATInfo(cat CATInfo) *Info {
	return &Info{kind: KindCAT, cat: &cat}
}

func (i *Info) Kind() Kind { return i.kind }

func (i *Info) User() *UserInfo {
	if i.kind != KindUser {
		return nil
	}
	return i.user
}

func (i *Info) PAT() *PATInfo {
	if i.kind != KindPAT {
		return nil
	}
	return i.pat
}

func (i *Info) CAT() *CATInfo {
	if i.kind != KindCAT {
		return nil
	}
	return i.cat
}

type ctxKey struct{}

// WithInfo returns a child context carrying the authorization context.
// The value lives on the request context, so it is scoped to exactly one
// request and cannot leak across concurrent ones.
func WithInfo(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// FromContext extracts the authorization context; absent means anonymous
func FromContext(ctx context.Context) *Info {
	if info, ok := ctx.Value(ctxKey{}).(*Info); ok && info != nil {
		return info
	}
	return Anonymous()
}
