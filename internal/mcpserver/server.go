// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the catalog to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/othala/internal/catalog"
	"github.com/starford/othala/internal/storage"
)

// Server wraps the MCP server with Othala tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	svc   *catalog.Service
}

// New creates a new MCP server with all catalog tools registered.
func New(store storage.Provider, svc *catalog.Service) *Server {
	s := &Server{store: store, svc: svc}

	s.mcp = server.NewMCPServer(
		"Othala",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_catalog",
		mcp.WithDescription("Full-text search across cataloged documents (titles, descriptions, tags, bodies)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchCatalog)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the configured categories with their record counts."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List the catalog records of one category."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name (e.g. prompts)")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full Markdown content of a cataloged document."),
		mcp.WithString("link", mcp.Required(), mcp.Description("Catalog link of the document (e.g. prompts/review.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("rebuild_catalog",
		mcp.WithDescription("Regenerate the catalog from the corpus on disk."),
	), s.rebuildCatalog)

	s.mcp.AddTool(mcp.NewTool("get_frontmatter_contract",
		mcp.WithDescription("Returns the front matter conventions the catalog understands. "+
			"Call this before authoring documents so records are fully populated."),
	), s.getFrontMatterContract)

	// Resource: front matter contract.
	s.mcp.AddResource(
		mcp.NewResource("othala://frontmatter-format", "Front Matter Contract",
			mcp.WithResourceDescription("Front matter conventions for cataloged Markdown documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var lines []string
	for _, c := range s.svc.Categories() {
		lines = append(lines, fmt.Sprintf("%s (%d)", c.Name, c.Count))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no categories configured"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recs, err := s.svc.Records(category)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown category: %s", category)), nil
	}
	out, _ := json.MarshalIndent(recs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	link, err := req.RequireString("link")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.svc.Document(ctx, link)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", link)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) rebuildCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.svc.Rebuild(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("rebuilt: %d records", n)), nil
}

func (s *Server) getFrontMatterContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontMatterContract), nil
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "othala://frontmatter-format",
			MIMEType: "text/markdown",
			Text:     FrontMatterContract,
		},
	}, nil
}
