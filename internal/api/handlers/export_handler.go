package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/pkg/dates"
)

// ExportService defines the data export operations used by the handler
type ExportService interface {
	Collect(ctx context.Context, from, to dates.Date) (*entities.ExportBundle, error)
	WriteJSON(w io.Writer, bundle *entities.ExportBundle) error
	WriteXLSX(w io.Writer, bundle *entities.ExportBundle) error
}

// ExportHandler serves the admin data export
type ExportHandler struct {
	service ExportService
	now     func() time.Time
}

// NewExportHandler creates a new export handler
func NewExportHandler(service ExportService) *ExportHandler {
	return &ExportHandler{service: service, now: time.Now}
}

// Export handles GET /api/admin/export?from=&to=&format=xlsx|json
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "json" {
		respondWithError(w, http.StatusBadRequest, "format must be xlsx or json")
		return
	}

	from, err := queryDate(r, "from")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	bundle, err := h.service.Collect(r.Context(), from, to)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	filename := fmt.Sprintf("clinic-export-%s.%s", h.now().Format("20060102-150405"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
		err = h.service.WriteJSON(w, bundle)
	} else {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = h.service.WriteXLSX(w, bundle)
	}
	if err != nil {
		// Headers are already sent; the client sees a truncated download.
		log.Ctx(r.Context()).Error().Err(err).Str("format", format).Msg("Failed to write export")
	}
}
