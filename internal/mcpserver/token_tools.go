package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

// Token lifecycle tools. Like the REST routes, these are a session-only
// surface: tokens never mint or manage other tokens, so a leaked PAT or
// CAT cannot be used to widen access.
func (s *Server) registerTokenTools() {
	s.mcp.AddTool(mcp.NewTool("create_collection_token",
		mcp.WithDescription("Issue a collection access token. The raw token is returned once and never again. Requires a session token."),
		mcp.WithString("collection_id", mcp.Required(), mcp.Description("Collection the token is bound to")),
		mcp.WithString("label", mcp.Required(), mcp.Description("Human-readable label")),
		mcp.WithString("permission", mcp.Description("read or read_write, defaults to read_write")),
		mcp.WithNumber("expires_in_days", mcp.Description("Days until expiry. Omit for a token that never expires.")),
	), s.createCollectionToken)

	s.mcp.AddTool(mcp.NewTool("list_collection_tokens",
		mcp.WithDescription("List the caller's collection access tokens. Raw secrets are never included. Requires a session token."),
		mcp.WithString("collection_id", mcp.Description("Restrict the listing to one collection")),
	), s.listCollectionTokens)

	s.mcp.AddTool(mcp.NewTool("revoke_collection_token",
		mcp.WithDescription("Revoke a collection access token. Requires a session token."),
		mcp.WithString("token_id", mcp.Required(), mcp.Description("Token id")),
	), s.revokeCollectionToken)

	s.mcp.AddTool(mcp.NewTool("rotate_collection_token",
		mcp.WithDescription("Rotate a collection access token: the old secret dies and a replacement with the same label, permission and expiry is returned once. Requires a session token."),
		mcp.WithString("token_id", mcp.Required(), mcp.Description("Token id")),
	), s.rotateCollectionToken)

	s.mcp.AddTool(mcp.NewTool("create_personal_token",
		mcp.WithDescription("Issue a personal access token. Scopes may not exceed the caller's own; omitted scopes inherit them. The raw token is returned once. Requires a session token."),
		mcp.WithString("label", mcp.Required(), mcp.Description("Human-readable label")),
		mcp.WithString("scopes", mcp.Description("Comma-separated scopes (read, write, admin). Omit to inherit the caller's scopes.")),
		mcp.WithNumber("expires_in_days", mcp.Description("Days until expiry, defaults to 90")),
	), s.createPersonalToken)

	s.mcp.AddTool(mcp.NewTool("list_personal_tokens",
		mcp.WithDescription("List the caller's personal access tokens. Raw secrets are never included. Requires a session token."),
	), s.listPersonalTokens)

	s.mcp.AddTool(mcp.NewTool("revoke_personal_token",
		mcp.WithDescription("Revoke a personal access token. Requires a session token."),
		mcp.WithString("token_id", mcp.Required(), mcp.Description("Token id")),
	), s.revokePersonalToken)

	s.mcp.AddTool(mcp.NewTool("rotate_personal_token",
		mcp.WithDescription("Rotate a personal access token: the old secret dies and a replacement with the same label, scopes and expiry is returned once. Requires a session token."),
		mcp.WithString("token_id", mcp.Required(), mcp.Description("Token id")),
	), s.rotatePersonalToken)
}

func requireSession(ctx context.Context) (*auth.Info, error) {
	info := auth.FromContext(ctx)
	if info.Kind() != auth.KindUser {
		return nil, fmt.Errorf("%w: token management requires a session", auth.ErrUnauthenticated)
	}
	return info, nil
}

// expiresInDays treats an absent or zero value as "use the default".
func expiresInDays(request mcp.CallToolRequest) *int {
	days := request.GetInt("expires_in_days", 0)
	if days == 0 {
		return nil
	}
	return &days
}

func (s *Server) createCollectionToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := requireSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	collectionID, err := request.RequireString("collection_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	label, err := request.RequireString("label")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cat, err := s.catService.CreateCAT(info, service.CreateCATRequest{
		Label:         label,
		CollectionID:  collectionID,
		Permission:    request.GetString("permission", "read_write"),
		ExpiresInDays: expiresInDays(request),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cat)
}

func (s *Server) listCollectionTokens(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := requireSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cats, err := s.catService.ListCATs(info, request.GetString("collection_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cats)
}

func (s *Server) revokeCollectionToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := requireSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tokenID, err := request.RequireString("token_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.catService.RevokeCAT(info, tokenID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Token revoked."), nil
}

func (s *Server) rotateCollectionToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := requireSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tokenID, err := request.RequireString("token_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cat, err := s.catService.RotateCAT(info, tokenID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cat)
}

func (s *Server) createPersonalToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := requireSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	label, err := request.RequireString("label")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var scopes []string
	if raw := strings.TrimSpace(request.GetString("scopes", "")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			scopes = append(scopes, strings.TrimSpace(part))
		}
	}

	pat, err := s.patService.CreatePAT(info, service.CreatePATRequest{
		Label:         label,
		Scopes:        scopes,
		ExpiresInDays: expiresInDays(request),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(pat)
}

func (s *Server) listPersonalTokens(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := requireSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pats, err := s.patService.ListPATs(info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(pats)
}

func (s *Server) revokePersonalToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := requireSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tokenID, err := request.RequireString("token_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.patService.RevokePAT(info, tokenID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Token revoked."), nil
}

func (s *Server) rotatePersonalToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := requireSession(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tokenID, err := request.RequireString("token_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	pat, err := s.patService.RotatePAT(info, tokenID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(pat)
}
