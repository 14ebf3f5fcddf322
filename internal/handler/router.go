package handler

import (
	"document-memory-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler for route registration
type Handlers struct {
	Auth       *AuthHandler
	Collection *CollectionHandler
	Document   *DocumentHandler
	CAT        *CATHandler
	PAT        *PATHandler
	Admin      *AdminHandler
}

// RegisterRoutes mounts the REST API. Every route behind /api runs the
// credential resolver; the per-group guards decide which credential
// kinds are admitted.
func RegisterRoutes(router *gin.Engine, authenticator *middleware.Authenticator, h Handlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(authenticator.Middleware())

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.GET("/me", middleware.RequireSession(), h.Auth.GetProfile)
		authGroup.POST("/change-password", middleware.RequireSession(), h.Auth.ChangePassword)
	}

	collections := api.Group("/collections", middleware.RequireCredential())
	{
		collections.POST("", h.Collection.Create)
		collections.GET("", h.Collection.List)
		collections.GET("/:id", h.Collection.Get)
		collections.PUT("/:id", h.Collection.Rename)
		collections.DELETE("/:id", h.Collection.Delete)
	}

	documents := api.Group("/documents", middleware.RequireCredential())
	{
		documents.POST("", h.Document.Store)
		documents.POST("/search", h.Document.Search)
		documents.GET("", h.Document.List)
		documents.GET("/:id", h.Document.Get)
		documents.PUT("/:id", h.Document.Update)
		documents.DELETE("/:id", h.Document.Delete)
	}

	// Token management is a session-only surface: tokens never mint or
	// manage other tokens
	catTokens := api.Group("/tokens/collection", middleware.RequireSession())
	{
		catTokens.POST("", h.CAT.Create)
		catTokens.GET("", h.CAT.List)
		catTokens.DELETE("/:id", h.CAT.Revoke)
		catTokens.POST("/:id/rotate", h.CAT.Rotate)
	}

	patTokens := api.Group("/tokens/personal", middleware.RequireSession())
	{
		patTokens.POST("", h.PAT.Create)
		patTokens.GET("", h.PAT.List)
		patTokens.DELETE("/:id", h.PAT.Revoke)
		patTokens.POST("/:id/rotate", h.PAT.Rotate)
	}

	admin := api.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/users", h.Admin.ListUsers)
		admin.GET("/users/:id", h.Admin.GetUser)
		admin.PUT("/users/:id", h.Admin.UpdateUser)
		admin.DELETE("/users/:id", h.Admin.DeleteUser)
		admin.GET("/tokens/collection", h.Admin.ListCATs)
		admin.GET("/tokens/personal", h.Admin.ListPATs)
	}
}
