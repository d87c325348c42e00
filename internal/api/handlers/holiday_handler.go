package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/pkg/dates"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

// HolidayService defines the holiday operations used by the handler
type HolidayService interface {
	Create(ctx context.Context, holiday *entities.Holiday) (*entities.Holiday, error)
	Get(ctx context.Context, id string) (*entities.Holiday, error)
	Update(ctx context.Context, id string, holiday *entities.Holiday) (*entities.Holiday, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter entities.HolidayFilter) ([]*entities.Holiday, error)
	CheckDate(ctx context.Context, day dates.Date, doctor string) (*entities.DateCheck, error)
	SyncHolidays(ctx context.Context, year int) (int, error)
}

// HolidayHandler handles holiday and date availability requests
type HolidayHandler struct {
	service HolidayService
	loc     *time.Location
}

// NewHolidayHandler creates a new holiday handler
func NewHolidayHandler(service HolidayService, loc *time.Location) *HolidayHandler {
	if loc == nil {
		loc = time.Local
	}
	return &HolidayHandler{service: service, loc: loc}
}

// holidayRequest accepts any of the supported date spellings
type holidayRequest struct {
	Date        string `json:"date"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Doctor      string `json:"doctor"`
	Description string `json:"description"`
}

func (p holidayRequest) toEntity() (*entities.Holiday, error) {
	holiday := &entities.Holiday{
		Name:        p.Name,
		Type:        entities.HolidayType(strings.ToLower(strings.TrimSpace(p.Type))),
		Doctor:      p.Doctor,
		Description: strings.TrimSpace(p.Description),
	}
	if strings.TrimSpace(p.Date) != "" {
		day, err := dates.Parse(p.Date)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid date: " + p.Date)
		}
		holiday.Date = day
	}
	return holiday, nil
}

// ListHolidays handles GET /api/holidays?from=&to=&doctor=&type=
func (h *HolidayHandler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	var filter entities.HolidayFilter
	var err error
	if filter.From, err = queryDate(r, "from"); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if filter.To, err = queryDate(r, "to"); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	filter.Doctor = strings.TrimSpace(r.URL.Query().Get("doctor"))
	filter.Type = entities.HolidayType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))

	holidays, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"holidays": holidays,
		"count":    len(holidays),
	})
}

// CheckDate handles GET /api/holidays/check?date=&doctor=
func (h *HolidayHandler) CheckDate(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSpace(r.URL.Query().Get("date")) == "" {
		respondWithError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}
	day, err := queryDate(r, "date")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	check, err := h.service.CheckDate(r.Context(), day, strings.TrimSpace(r.URL.Query().Get("doctor")))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, check)
}

// GetHoliday handles GET /api/admin/holidays/{id}
func (h *HolidayHandler) GetHoliday(w http.ResponseWriter, r *http.Request) {
	holiday, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, holiday)
}

// CreateHoliday handles POST /api/admin/holidays
func (h *HolidayHandler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var payload holidayRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	holiday, err := payload.toEntity()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), holiday)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// UpdateHoliday handles PUT /api/admin/holidays/{id}
func (h *HolidayHandler) UpdateHoliday(w http.ResponseWriter, r *http.Request) {
	var payload holidayRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	holiday, err := payload.toEntity()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	updated, err := h.service.Update(r.Context(), r.PathValue("id"), holiday)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// DeleteHoliday handles DELETE /api/admin/holidays/{id}
func (h *HolidayHandler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncHolidays handles POST /api/admin/holidays/sync?year=
func (h *HolidayHandler) SyncHolidays(w http.ResponseWriter, r *http.Request) {
	year := time.Now().In(h.loc).Year()
	if value := strings.TrimSpace(r.URL.Query().Get("year")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid year parameter")
			return
		}
		year = parsed
	}

	inserted, err := h.service.SyncHolidays(r.Context(), year)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"year":     year,
		"inserted": inserted,
	})
}
