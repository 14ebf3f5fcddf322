package mcpserver

import (
	"context"
	"encoding/json"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/middleware"
	"document-memory-backend/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes the document memory over the Model Context Protocol.
// Authentication rides on the Authorization header of each inbound HTTP
// request: the context func resolves the credential before any tool
// handler runs, so tools read the same per-request authorization
// context as the REST layer.
type Server struct {
	mcp               *server.MCPServer
	authService       *service.AuthService
	documentService   *service.DocumentService
	collectionService *service.CollectionService
	catService        *service.CATService
	patService        *service.PATService
}

func New(
	authService *service.AuthService,
	documentService *service.DocumentService,
	collectionService *service.CollectionService,
	catService *service.CATService,
	patService *service.PATService,
) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			"document-memory",
			"1.0.0",
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		authService:       authService,
		documentService:   documentService,
		collectionService: collectionService,
		catService:        catService,
		patService:        patService,
	}
	s.registerTools()
	return s
}

// HTTPHandler returns the streamable HTTP transport for the MCP server
func (s *Server) HTTPHandler(authenticator *middleware.Authenticator) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s.mcp,
		server.WithHTTPContextFunc(authenticator.ResolveRequest),
	)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("store_memory",
		mcp.WithDescription("Store a document in the memory. Identical content in the same collection is deduplicated."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Document title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Document content, markdown or plain text")),
		mcp.WithString("collection_id", mcp.Description("Target collection id. Optional for collection tokens, which always write to their bound collection.")),
		mcp.WithString("document_type", mcp.Description("Document type, defaults to markdown")),
	), s.storeMemory)

	s.mcp.AddTool(mcp.NewTool("search_memory",
		mcp.WithDescription("Semantic search across every collection the credential can reach. Returns scored chunks."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural language search query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of chunks to return")),
	), s.searchMemory)

	s.mcp.AddTool(mcp.NewTool("get_memory",
		mcp.WithDescription("Fetch one document by id, including its full content"),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document id")),
	), s.getMemory)

	s.mcp.AddTool(mcp.NewTool("list_memories",
		mcp.WithDescription("List documents reachable by the credential"),
		mcp.WithString("collection_id", mcp.Description("Restrict the listing to one collection")),
		mcp.WithNumber("limit", mcp.Description("Page size")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listMemories)

	s.mcp.AddTool(mcp.NewTool("update_memory",
		mcp.WithDescription("Replace a document's content and re-index it"),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document id")),
		mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New content")),
	), s.updateMemory)

	s.mcp.AddTool(mcp.NewTool("delete_memory",
		mcp.WithDescription("Delete a document and its vector index entries"),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Document id")),
	), s.deleteMemory)

	s.mcp.AddTool(mcp.NewTool("list_collections",
		mcp.WithDescription("List the collections the credential can reach"),
	), s.listCollections)

	s.registerAccountTools()
	s.registerTokenTools()
}

func (s *Server) storeMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.documentService.StoreDocument(ctx, auth.FromContext(ctx), service.StoreDocumentRequest{
		CollectionID: request.GetString("collection_id", ""),
		Title:        title,
		Content:      content,
		DocumentType: request.GetString("document_type", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) searchMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := s.documentService.SearchDocuments(ctx, auth.FromContext(ctx), query, request.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No matching documents found."), nil
	}
	return jsonResult(results)
}

func (s *Server) getMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.documentService.GetDocument(auth.FromContext(ctx), documentID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc)
}

func (s *Server) listMemories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.documentService.ListDocuments(
		auth.FromContext(ctx),
		request.GetString("collection_id", ""),
		request.GetInt("limit", 50),
		request.GetInt("offset", 0),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(docs)
}

func (s *Server) updateMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.documentService.UpdateDocument(ctx, auth.FromContext(ctx), documentID, service.UpdateDocumentRequest{
		Title:   title,
		Content: content,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc)
}

func (s *Server) deleteMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	documentID, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.documentService.DeleteDocument(ctx, auth.FromContext(ctx), documentID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Document deleted."), nil
}

func (s *Server) listCollections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collections, err := s.collectionService.ListCollections(auth.FromContext(ctx))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(collections)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
