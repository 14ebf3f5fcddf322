package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/repository"
	"document-memory-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Authenticator resolves an inbound bearer credential to an
// authorization context. It is the single entry point for all three
// credential kinds: the token prefix routes opaque tokens to the right
// store, everything else with a three-segment shape goes to the session
// codec.
type Authenticator struct {
	catRepo        *repository.CATRepository
	patRepo        *repository.PATRepository
	collectionRepo *repository.CollectionRepository
	adminAPIKey    string
}

func NewAuthenticator(
	catRepo *repository.CATRepository,
	patRepo *repository.PATRepository,
	collectionRepo *repository.CollectionRepository,
	adminAPIKey string,
) *Authenticator {
	return &Authenticator{
		catRepo:        catRepo,
		patRepo:        patRepo,
		collectionRepo: collectionRepo,
		adminAPIKey:    adminAPIKey,
	}
}

// Resolve maps a raw bearer string to an authorization context.
// A missing token resolves to anonymous; an invalid one fails with
// ErrUnauthenticated regardless of the internal cause.
func (a *Authenticator) Resolve(token string) (*auth.Info, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Anonymous(), nil
	}

	switch {
	case utils.IsPATToken(token):
		patInfo, err := a.patRepo.ValidatePAT(token)
		if err != nil {
			return nil, err
		}
		if patInfo == nil {
			return nil, auth.ErrUnauthenticated
		}
		// Resolve the owning user's collection set once, at
		// authentication time
		collectionIDs, err := a.collectionRepo.ListCollectionIDsByUser(patInfo.UserID)
		if err != nil {
			return nil, err
		}
		patInfo.CollectionIDs = collectionIDs
		return auth.NewPATInfo(*patInfo), nil

	case utils.IsCATToken(token):
		catInfo, err := a.catRepo.ValidateCAT(token)
		if err != nil {
			return nil, err
		}
		if catInfo == nil {
			return nil, auth.ErrUnauthenticated
		}
		return auth.NewCATInfo(*catInfo), nil

	case utils.LooksLikeJWT(token):
		claims, err := utils.ValidateAccessToken(token)
		if err != nil {
			return nil, auth.ErrUnauthenticated
		}
		scopes, err := auth.ParseScopeList(claims.Scopes)
		if err != nil {
			return nil, auth.ErrUnauthenticated
		}
		return auth.NewUserInfo(auth.UserInfo{
			UserID:      claims.Subject,
			Username:    claims.Username,
			Email:       claims.Email,
			IsSuperuser: claims.IsSuperuser,
			Scopes:      scopes,
		}), nil

	default:
		if a.adminAPIKey != "" &&
			subtle.ConstantTimeCompare([]byte(token), []byte(a.adminAPIKey)) == 1 {
			return auth.NewCATInfo(auth.CATInfo{
				TokenID: "admin",
				IsAdmin: true,
			}), nil
		}
		return nil, auth.ErrUnauthenticated
	}
}

// ResolveRequest resolves the Authorization header of an HTTP request
// into a child context carrying the authorization context. Used by the
// MCP transport, which injects it once per inbound request.
func (a *Authenticator) ResolveRequest(ctx context.Context, r *http.Request) context.Context {
	token := bearerToken(r.Header.Get("Authorization"))
	info, err := a.Resolve(token)
	if err != nil {
		logrus.WithError(err).Debug("credential resolution failed")
		return auth.WithInfo(ctx, auth.Anonymous())
	}
	return auth.WithInfo(ctx, info)
}

// Middleware resolves the request credential and stores the resulting
// context on the request. A missing credential passes through as
// anonymous; guards downstream decide whether that is acceptable.
// A present but invalid credential is rejected here.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))

		info, err := a.Resolve(token)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or missing credential")
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(auth.WithInfo(c.Request.Context(), info))
		c.Next()
	}
}

// RequireSession admits only session-authenticated callers. Sessions
// are the management surface: account, collection and credential
// operations.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := auth.FromContext(c.Request.Context())
		if info.Kind() != auth.KindUser {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCredential admits any authenticated caller
func RequireCredential() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := auth.FromContext(c.Request.Context())
		if !info.IsAuthenticated() {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin admits only superuser callers
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := auth.FromContext(c.Request.Context())
		if !info.IsAuthenticated() {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}
		if !info.IsAdmin() {
			utils.ErrorResponse(c, http.StatusForbidden, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
