package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
)

// SearchService defines the site search operation
type SearchService interface {
	Search(ctx context.Context, query string, limit int) (*entities.SearchResults, error)
}

// Reindexer pushes one kind of content into the search index
type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// SearchHandler handles site search and index maintenance
type SearchHandler struct {
	service SearchService
	content Reindexer
	doctors Reindexer
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(service SearchService, content, doctors Reindexer) *SearchHandler {
	return &SearchHandler{service: service, content: content, doctors: doctors}
}

// Search handles GET /api/search?q=&limit=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	results, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, results)
}

// Reindex handles POST /api/admin/search/reindex
func (h *SearchHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.content.Reindex(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	doctors, err := h.doctors.Reindex(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Int("blocks", blocks).Int("doctors", doctors).Msg("Search index rebuilt")
	respondWithJSON(w, http.StatusOK, map[string]int{
		"blocks":  blocks,
		"doctors": doctors,
	})
}
