package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/catalog"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *catalog.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalog.
	r.Get("/catalog", h.GetCatalog)
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{name}", h.GetCategory)
	r.Get("/documents/*", h.GetDocument)

	// Search.
	r.Get("/search", h.Search)

	// On-demand rebuild.
	r.Post("/rebuild", h.Rebuild)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
