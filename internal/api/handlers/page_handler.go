package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
)

// PageService defines the public page rendering operations
type PageService interface {
	Routes() []entities.Route
	RenderPage(ctx context.Context, path string) (*entities.RenderedPage, error)
}

// PageHandler serves rendered page content to the site front end
type PageHandler struct {
	service PageService
}

// NewPageHandler creates a new page handler
func NewPageHandler(service PageService) *PageHandler {
	return &PageHandler{service: service}
}

// GetPage handles GET /api/pages?path=/eyecare
func (h *PageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		path = "/"
	}

	page, err := h.service.RenderPage(r.Context(), path)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

// ListRoutes handles GET /api/routes
func (h *PageHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"routes": h.service.Routes(),
	})
}
