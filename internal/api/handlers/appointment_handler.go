package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/clinic-site/internal/application/services"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	"github.com/zatekoja/clinic-site/pkg/dates"
)

const (
	appointmentRateLimit   = 5
	appointmentRateWindow  = time.Hour
	appointmentDedupWindow = 24 * time.Hour
)

// AppointmentService defines the appointment operations used by the handler
type AppointmentService interface {
	RequestAppointment(ctx context.Context, req services.AppointmentRequest) (*entities.Appointment, error)
	List(ctx context.Context, filter entities.AppointmentFilter) ([]*entities.Appointment, error)
	Get(ctx context.Context, id string) (*entities.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error)
	Delete(ctx context.Context, id string) error
}

// CalendarService defines the admin calendar operations
type CalendarService interface {
	ParseMonth(value string) (dates.Date, error)
	CalendarMonth(ctx context.Context, month dates.Date, doctor string) (*entities.CalendarMonth, error)
	Dashboard(ctx context.Context) (*entities.Dashboard, error)
}

// AppointmentHandler handles appointment requests and the admin calendar
type AppointmentHandler struct {
	service  AppointmentService
	calendar CalendarService
	guard    *requestGuard
}

// NewAppointmentHandler creates a new appointment handler. cache may be nil.
func NewAppointmentHandler(service AppointmentService, calendar CalendarService, cache providers.CacheProvider) *AppointmentHandler {
	return &AppointmentHandler{
		service:  service,
		calendar: calendar,
		guard:    newRequestGuard(cache, appointmentRateLimit, appointmentRateWindow, appointmentDedupWindow),
	}
}

// RequestAppointment handles POST /api/appointments
func (h *AppointmentHandler) RequestAppointment(w http.ResponseWriter, r *http.Request) {
	var req services.AppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	ip := clientIP(r)
	allowed, retryAfter := h.guard.allow(r.Context(), "appointment:rate:"+ip)
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	dupKey := "appointment:dup:" + appointmentFingerprint(req, ip)
	if h.guard.isDuplicate(r.Context(), dupKey) {
		respondWithJSON(w, http.StatusAccepted, map[string]string{
			"status": "duplicate_ignored",
		})
		return
	}

	appointment, err := h.service.RequestAppointment(r.Context(), req)
	if err != nil {
		h.guard.forget(r.Context(), dupKey)
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"status":      "received",
		"appointment": appointment,
	})
}

// ListAppointments handles GET /api/admin/appointments
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	filter, err := appointmentFilterFromQuery(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	appointments, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

func appointmentFilterFromQuery(r *http.Request) (entities.AppointmentFilter, error) {
	var filter entities.AppointmentFilter
	var err error
	if filter.Date, err = queryDate(r, "date"); err != nil {
		return filter, err
	}
	if filter.From, err = queryDate(r, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = queryDate(r, "to"); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		return filter, err
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		return filter, err
	}

	q := r.URL.Query()
	filter.Status = entities.AppointmentStatus(strings.ToLower(strings.TrimSpace(q.Get("status"))))
	filter.Specialty = entities.Specialty(strings.ToLower(strings.TrimSpace(q.Get("specialty"))))
	filter.Doctor = strings.TrimSpace(q.Get("doctor"))
	return filter, nil
}

// GetAppointment handles GET /api/admin/appointments/{id}
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	appointment, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, appointment)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/admin/appointments/{id}/status
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var payload statusRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	status := entities.AppointmentStatus(strings.ToLower(strings.TrimSpace(payload.Status)))
	appointment, err := h.service.UpdateStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, appointment)
}

// DeleteAppointment handles DELETE /api/admin/appointments/{id}
func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCalendar handles GET /api/admin/calendar?month=2006-01&doctor=
func (h *AppointmentHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	month, err := h.calendar.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	calendar, err := h.calendar.CalendarMonth(r.Context(), month, strings.TrimSpace(r.URL.Query().Get("doctor")))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, calendar)
}

// GetDashboard handles GET /api/admin/dashboard
func (h *AppointmentHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.calendar.Dashboard(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dashboard)
}

func appointmentFingerprint(req services.AppointmentRequest, ip string) string {
	normalized := []string{
		strings.ToLower(strings.TrimSpace(req.Email)),
		strings.TrimSpace(req.Phone),
		strings.TrimSpace(req.Date),
		strings.TrimSpace(req.Time),
		strings.ToLower(strings.TrimSpace(req.Specialty)),
		strings.ToLower(strings.TrimSpace(req.Doctor)),
		ip,
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}
