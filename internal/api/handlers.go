package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/catalog"
)

// Handler holds API route handlers.
type Handler struct {
	svc *catalog.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

// docLink extracts the document link from the URL (everything after
// /documents/). Supports encoded slashes (e.g. prompts%2Freview.md).
func docLink(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// GetCatalog handles GET /catalog: the latest built catalog, byte-for-byte
// as written to the output file.
func (h *Handler) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	raw := h.svc.CatalogJSON()
	if raw == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("catalog not built yet"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": h.svc.Categories(),
		"total":      h.svc.Count(),
	})
}

// GetCategory handles GET /categories/{name}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	recs, err := h.svc.Records(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("unknown category"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": name,
		"records":  recs,
	})
}

// GetDocument handles GET /documents/*: raw markdown by catalog link.
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	link := docLink(r)
	if link == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("link is required"))
		return
	}
	data, err := h.svc.Document(r.Context(), link)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get document failed", slog.String("link", link), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []catalog.SearchHit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Rebuild handles POST /rebuild: regenerate the catalog on demand.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Rebuild(r.Context())
	if err != nil {
		slog.Error("rebuild failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("rebuild failed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"records": n})
}
