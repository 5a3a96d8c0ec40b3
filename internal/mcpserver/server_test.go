package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/othala/internal/catalog"
	"github.com/starford/othala/internal/testutil"
)

type stubSearcher struct {
	hits []catalog.SearchHit
}

func (s stubSearcher) Search(query string, limit int) ([]catalog.SearchHit, error) {
	return s.hits, nil
}

func testServer(t *testing.T) (*Server, string) {
	t.Helper()

	root, store := testutil.TestCorpus(t)
	testutil.WriteDoc(t, root, "prompts", "review.md",
		"---\ntitle: Code Review\n---\nReview the diff.\n")

	b := catalog.NewBuilder(store, catalog.Options{
		Categories: []string{"prompts", "instructions"},
	}, time.Now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := catalog.NewService(b, store, stubSearcher{hits: []catalog.SearchHit{
		{Link: "prompts/review.md", Title: "Code Review", Snippet: "Review the diff"},
	}}, "index.json", logger)
	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	return New(store, svc), root
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we call the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_catalog":
		result, err = srv.searchCatalog(ctx, req)
	case "list_categories":
		result, err = srv.listCategories(ctx, req)
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "rebuild_catalog":
		result, err = srv.rebuildCatalog(ctx, req)
	case "get_frontmatter_contract":
		result, err = srv.getFrontMatterContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListCategories(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_categories", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "prompts (1)") {
		t.Errorf("list_categories = %q", text)
	}
	if !strings.Contains(text, "instructions (0)") {
		t.Errorf("empty category missing from %q", text)
	}
}

func TestListDocuments(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_documents", map[string]interface{}{"category": "prompts"})
	text := resultText(r)
	if !strings.Contains(text, `"link": "prompts/review.md"`) {
		t.Errorf("list_documents = %q", text)
	}
}

func TestListDocuments_UnknownCategory(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_documents", map[string]interface{}{"category": "nope"})
	if !r.IsError {
		t.Error("expected error for unknown category")
	}
}

func TestReadDocument(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_document", map[string]interface{}{"link": "prompts/review.md"})
	text := resultText(r)
	if !strings.Contains(text, "Review the diff.") {
		t.Errorf("read_document = %q", text)
	}
}

func TestReadDocument_Missing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_document", map[string]interface{}{"link": "prompts/nope.md"})
	if !r.IsError {
		t.Error("expected error for missing document")
	}
}

func TestSearchCatalog(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "search_catalog", map[string]interface{}{"query": "review"})
	text := resultText(r)
	if !strings.Contains(text, "prompts/review.md") {
		t.Errorf("search_catalog = %q", text)
	}
}

func TestRebuildCatalog(t *testing.T) {
	srv, root := testServer(t)
	testutil.WriteDoc(t, root, "prompts", "extra.md", "More.\n")

	r := callTool(t, srv, "rebuild_catalog", map[string]interface{}{})
	text := resultText(r)
	if text != "rebuilt: 2 records" {
		t.Errorf("rebuild_catalog = %q", text)
	}
}

func TestGetFrontMatterContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_frontmatter_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "title") || !strings.Contains(text, "description") {
		t.Errorf("contract looks incomplete: %q", text)
	}
}

func TestReadContractResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readContractResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected content type %T", contents[0])
	}
	if tc.URI != "othala://frontmatter-format" {
		t.Errorf("uri = %q", tc.URI)
	}
}
