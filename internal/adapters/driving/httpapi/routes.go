package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/logger"
)

const maxSearchLimit = 100

var errNotConfigured = errors.New("service not configured")

// Routes holds dependencies for the API handlers.
type Routes struct {
	ports *Ports
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Query   string                `json:"query"`
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

func (routes *Routes) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// search handles GET /search?q=&limit=&offset=&type=&unit=
func (routes *Routes) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := parseSearchOptions(q.Get("limit"), q.Get("offset"), q["type"], q.Get("unit"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	query := q.Get("q")
	results, err := routes.ports.Search.Search(r.Context(), query, opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, SearchResponse{Query: query, Results: results, Count: len(results)}, http.StatusOK)
}

// getDocument handles GET /documents/{id}
func (routes *Routes) getDocument(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, "id cannot be empty", http.StatusBadRequest)
		return
	}

	doc, err := routes.ports.Search.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, doc, http.StatusOK)
}

// version handles GET /version
func (routes *Routes) version(w http.ResponseWriter, r *http.Request) {
	if routes.ports.Versions == nil {
		writeServiceError(w, errNotConfigured)
		return
	}
	info, err := routes.ports.Versions.GetInfo(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, info, http.StatusOK)
}

// acknowledge handles POST /version/ack
func (routes *Routes) acknowledge(w http.ResponseWriter, r *http.Request) {
	if routes.ports.Versions == nil {
		writeServiceError(w, errNotConfigured)
		return
	}
	if err := routes.ports.Versions.Acknowledge(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// indexStats handles GET /index
func (routes *Routes) indexStats(w http.ResponseWriter, _ *http.Request) {
	if routes.ports.Index == nil {
		writeServiceError(w, errNotConfigured)
		return
	}
	writeJSON(w, routes.ports.Index.Stats(), http.StatusOK)
}

// rebuildIndex handles POST /index/rebuild
func (routes *Routes) rebuildIndex(w http.ResponseWriter, r *http.Request) {
	if routes.ports.Index == nil {
		writeServiceError(w, errNotConfigured)
		return
	}
	if _, err := routes.ports.Index.RebuildIndex(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, routes.ports.Index.Stats(), http.StatusOK)
}

// checkUpdates handles POST /updates/check?locale=
func (routes *Routes) checkUpdates(w http.ResponseWriter, r *http.Request) {
	if routes.ports.Updates == nil {
		writeServiceError(w, errNotConfigured)
		return
	}
	result, err := routes.ports.Updates.CheckForUpdates(r.Context(), routes.locale(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, result, http.StatusOK)
}

// forceRefresh handles POST /updates/force?locale=
// A failed refresh is still a 200 with ok=false.
func (routes *Routes) forceRefresh(w http.ResponseWriter, r *http.Request) {
	if routes.ports.Updates == nil {
		writeServiceError(w, errNotConfigured)
		return
	}
	writeJSON(w, routes.ports.Updates.ForceUpdateAndReindex(r.Context(), routes.locale(r)), http.StatusOK)
}

func (routes *Routes) locale(r *http.Request) string {
	if l := strings.TrimSpace(r.URL.Query().Get("locale")); l != "" {
		return l
	}
	return routes.ports.Locale
}

func parseSearchOptions(limit, offset string, types []string, unit string) (domain.SearchOptions, error) {
	opts := domain.SearchOptions{GroupID: strings.TrimSpace(unit)}

	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return opts, errors.New("invalid limit parameter: must be an integer")
		}
		if n < 1 || n > maxSearchLimit {
			return opts, fmt.Errorf("invalid limit parameter: must be between 1 and %d", maxSearchLimit)
		}
		opts.Limit = n
	}

	if offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			return opts, errors.New("invalid offset parameter: must be a non-negative integer")
		}
		opts.Offset = n
	}

	for _, raw := range types {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				opts.Types = append(opts.Types, domain.DocumentType(t))
			}
		}
	}
	return opts, nil
}

// writeJSON writes a JSON response with the given data
func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Debug("httpapi: encoding response: %v", err)
	}
}

// writeError writes a standardized error response
func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, map[string]string{"error": message}, statusCode)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, err.Error(), http.StatusBadRequest)
	case domain.IsNotFound(err):
		writeError(w, err.Error(), http.StatusNotFound)
	case domain.IsRateLimited(err):
		writeError(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, errNotConfigured):
		writeError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		logger.Error("httpapi: %v", err)
		writeError(w, "internal server error", http.StatusInternalServerError)
	}
}
