package mcpserver

import (
	"context"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

// Account, collection management and admin tools. Registration, login
// and refresh are the only tools usable without a credential; everything
// else goes through the per-request authorization context, so the rules
// match the REST surface exactly.
func (s *Server) registerAccountTools() {
	s.mcp.AddTool(mcp.NewTool("user_register",
		mcp.WithDescription("Register a new user account"),
		mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
		mcp.WithString("username", mcp.Required(), mcp.Description("Username, 3-100 characters")),
		mcp.WithString("password", mcp.Required(), mcp.Description("Password, at least 8 characters")),
	), s.userRegister)

	s.mcp.AddTool(mcp.NewTool("user_login",
		mcp.WithDescription("Log in and receive an access/refresh token pair"),
		mcp.WithString("username", mcp.Required(), mcp.Description("Username")),
		mcp.WithString("password", mcp.Required(), mcp.Description("Password")),
	), s.userLogin)

	s.mcp.AddTool(mcp.NewTool("user_refresh",
		mcp.WithDescription("Exchange a refresh token for a fresh token pair"),
		mcp.WithString("refresh_token", mcp.Required(), mcp.Description("Refresh token from a previous login")),
	), s.userRefresh)

	s.mcp.AddTool(mcp.NewTool("user_profile",
		mcp.WithDescription("Return the profile of the logged-in user. Requires a session token."),
	), s.userProfile)

	s.mcp.AddTool(mcp.NewTool("create_collection",
		mcp.WithDescription("Create a new document collection owned by the calling user"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Collection name")),
	), s.createCollection)

	s.mcp.AddTool(mcp.NewTool("get_collection",
		mcp.WithDescription("Fetch one collection with its document and token counts"),
		mcp.WithString("collection_id", mcp.Required(), mcp.Description("Collection id")),
	), s.getCollection)

	s.mcp.AddTool(mcp.NewTool("rename_collection",
		mcp.WithDescription("Rename a collection. Its vector namespace is unchanged."),
		mcp.WithString("collection_id", mcp.Required(), mcp.Description("Collection id")),
		mcp.WithString("name", mcp.Required(), mcp.Description("New name")),
	), s.renameCollection)

	s.mcp.AddTool(mcp.NewTool("delete_collection",
		mcp.WithDescription("Delete a collection and its documents. Refused while active collection tokens reference it."),
		mcp.WithString("collection_id", mcp.Required(), mcp.Description("Collection id")),
	), s.deleteCollection)

	s.mcp.AddTool(mcp.NewTool("admin_list_users",
		mcp.WithDescription("List or search user accounts. Superusers only."),
		mcp.WithString("query", mcp.Description("Substring match on username or email")),
		mcp.WithNumber("limit", mcp.Description("Page size")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.adminListUsers)

	s.mcp.AddTool(mcp.NewTool("admin_get_user",
		mcp.WithDescription("Fetch one user account. Superusers only."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User id")),
	), s.adminGetUser)

	s.mcp.AddTool(mcp.NewTool("admin_update_user",
		mcp.WithDescription("Change a user's active or superuser flag. Superusers only."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User id")),
		mcp.WithBoolean("is_active", mcp.Description("New active flag")),
		mcp.WithBoolean("is_superuser", mcp.Description("New superuser flag")),
	), s.adminUpdateUser)

	s.mcp.AddTool(mcp.NewTool("admin_delete_user",
		mcp.WithDescription("Delete a user and everything they own. Superusers only."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("User id")),
	), s.adminDeleteUser)
}

func (s *Server) userRegister(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email, err := request.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	username, err := request.RequireString("username")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	password, err := request.RequireString("password")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	user, err := s.authService.Register(service.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(user)
}

func (s *Server) userLogin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username, err := request.RequireString("username")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	password, err := request.RequireString("password")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pair, err := s.authService.Login(service.LoginRequest{Username: username, Password: password})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(pair)
}

func (s *Server) userRefresh(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refreshToken, err := request.RequireString("refresh_token")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pair, err := s.authService.Refresh(service.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(pair)
}

func (s *Server) userProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	user, err := s.authService.GetProfile(auth.FromContext(ctx))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(user)
}

func (s *Server) createCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	collection, err := s.collectionService.CreateCollection(auth.FromContext(ctx), name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(collection)
}

func (s *Server) getCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collectionID, err := request.RequireString("collection_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	collection, err := s.collectionService.GetCollection(auth.FromContext(ctx), collectionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(collection)
}

func (s *Server) renameCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collectionID, err := request.RequireString("collection_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	collection, err := s.collectionService.RenameCollection(auth.FromContext(ctx), collectionID, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(collection)
}

func (s *Server) deleteCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collectionID, err := request.RequireString("collection_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.collectionService.DeleteCollection(ctx, auth.FromContext(ctx), collectionID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Collection deleted."), nil
}

func (s *Server) adminListUsers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	users, err := s.authService.ListUsers(
		auth.FromContext(ctx),
		request.GetString("query", ""),
		request.GetInt("limit", 50),
		request.GetInt("offset", 0),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(users)
}

func (s *Server) adminGetUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	user, err := s.authService.GetUser(auth.FromContext(ctx), userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(user)
}

func (s *Server) adminUpdateUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Absent flags stay unchanged, so presence is checked on the raw
	// argument map rather than read with a default.
	args := request.GetArguments()
	var req service.UpdateUserRequest
	if v, ok := args["is_active"].(bool); ok {
		req.IsActive = &v
	}
	if v, ok := args["is_superuser"].(bool); ok {
		req.IsSuperuser = &v
	}

	user, err := s.authService.UpdateUser(auth.FromContext(ctx), userID, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(user)
}

func (s *Server) adminDeleteUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.authService.DeleteUser(auth.FromContext(ctx), userID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("User deleted."), nil
}
