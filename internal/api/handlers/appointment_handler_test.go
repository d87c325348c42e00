package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinic-site/internal/api/handlers"
	"github.com/zatekoja/clinic-site/internal/application/services"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/pkg/dates"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

type MockAppointmentService struct {
	mock.Mock
}

func (m *MockAppointmentService) RequestAppointment(ctx context.Context, req services.AppointmentRequest) (*entities.Appointment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentService) List(ctx context.Context, filter entities.AppointmentFilter) ([]*entities.Appointment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentService) Get(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentService) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) ParseMonth(value string) (dates.Date, error) {
	args := m.Called(value)
	return args.Get(0).(dates.Date), args.Error(1)
}

func (m *MockCalendarService) CalendarMonth(ctx context.Context, month dates.Date, doctor string) (*entities.CalendarMonth, error) {
	args := m.Called(ctx, month, doctor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CalendarMonth), args.Error(1)
}

func (m *MockCalendarService) Dashboard(ctx context.Context) (*entities.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Dashboard), args.Error(1)
}

func appointmentBody(t *testing.T, email string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"first_name": "Asha",
		"last_name":  "Rao",
		"email":      email,
		"phone":      "+91 98450 00000",
		"date":       "April 18th, 2030",
		"time":       "10:30",
		"specialty":  "gynecology",
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload["error"]
}

func TestAppointmentHandler_RequestAppointment(t *testing.T) {
	t.Run("creates the appointment", func(t *testing.T) {
		svc := new(MockAppointmentService)
		handler := handlers.NewAppointmentHandler(svc, nil, nil)

		svc.On("RequestAppointment", mock.Anything, mock.MatchedBy(func(req services.AppointmentRequest) bool {
			return req.FirstName == "Asha" && req.Date == "April 18th, 2030"
		})).Return(&entities.Appointment{ID: "a1", Status: entities.AppointmentStatusPending}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/appointments", appointmentBody(t, "asha@example.com"))
		w := httptest.NewRecorder()
		handler.RequestAppointment(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"received"`)
		svc.AssertExpectations(t)
	})

	t.Run("validation errors are 400 with the message", func(t *testing.T) {
		svc := new(MockAppointmentService)
		handler := handlers.NewAppointmentHandler(svc, nil, nil)

		svc.On("RequestAppointment", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewValidationError("Clinic closed for Diwali"))

		req := httptest.NewRequest(http.MethodPost, "/api/appointments", appointmentBody(t, "late@example.com"))
		w := httptest.NewRecorder()
		handler.RequestAppointment(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Clinic closed for Diwali", errorMessage(t, w))
	})

	t.Run("a rejected request can be corrected and resent", func(t *testing.T) {
		svc := new(MockAppointmentService)
		handler := handlers.NewAppointmentHandler(svc, nil, nil)

		svc.On("RequestAppointment", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewValidationError("date must not be in the past")).Once()
		svc.On("RequestAppointment", mock.Anything, mock.Anything).
			Return(&entities.Appointment{ID: "a2"}, nil).Once()

		for _, want := range []int{http.StatusBadRequest, http.StatusCreated} {
			req := httptest.NewRequest(http.MethodPost, "/api/appointments", appointmentBody(t, "retry@example.com"))
			w := httptest.NewRecorder()
			handler.RequestAppointment(w, req)
			assert.Equal(t, want, w.Code)
		}
	})

	t.Run("duplicate submissions are ignored", func(t *testing.T) {
		svc := new(MockAppointmentService)
		handler := handlers.NewAppointmentHandler(svc, nil, nil)

		svc.On("RequestAppointment", mock.Anything, mock.Anything).Return(&entities.Appointment{ID: "a3"}, nil).Once()

		codes := []int{}
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/appointments", appointmentBody(t, "dup@example.com"))
			w := httptest.NewRecorder()
			handler.RequestAppointment(w, req)
			codes = append(codes, w.Code)
		}
		assert.Equal(t, []int{http.StatusCreated, http.StatusAccepted}, codes)
		svc.AssertNumberOfCalls(t, "RequestAppointment", 1)
	})

	t.Run("rate limits per client", func(t *testing.T) {
		svc := new(MockAppointmentService)
		handler := handlers.NewAppointmentHandler(svc, nil, nil)
		svc.On("RequestAppointment", mock.Anything, mock.Anything).Return(&entities.Appointment{ID: "a"}, nil)

		var last *httptest.ResponseRecorder
		for i := 0; i < 6; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/appointments", appointmentBody(t, "p"+string(rune('a'+i))+"@example.com"))
			req.Header.Set("X-Forwarded-For", "203.0.113.7")
			last = httptest.NewRecorder()
			handler.RequestAppointment(last, req)
		}
		assert.Equal(t, http.StatusTooManyRequests, last.Code)
		assert.NotEmpty(t, last.Header().Get("Retry-After"))
	})

	t.Run("invalid payload", func(t *testing.T) {
		handler := handlers.NewAppointmentHandler(new(MockAppointmentService), nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewBufferString("invalid-json"))
		w := httptest.NewRecorder()
		handler.RequestAppointment(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAppointmentHandler_ListAppointments(t *testing.T) {
	svc := new(MockAppointmentService)
	handler := handlers.NewAppointmentHandler(svc, nil, nil)

	want := entities.AppointmentFilter{
		From:      dates.New(2026, 3, 1),
		To:        dates.New(2026, 3, 31),
		Status:    entities.AppointmentStatusPending,
		Specialty: entities.SpecialtyEyecare,
		Doctor:    "Dr. Mehta",
	}
	svc.On("List", mock.Anything, want).Return([]*entities.Appointment{{ID: "a1"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/appointments?from=2026-03-01&to=March+31,+2026&status=Pending&specialty=eyecare&doctor=Dr.+Mehta", nil)
	w := httptest.NewRecorder()
	handler.ListAppointments(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/appointments?date=someday", nil)
	w = httptest.NewRecorder()
	handler.ListAppointments(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAppointmentHandler_UpdateStatus(t *testing.T) {
	svc := new(MockAppointmentService)
	handler := handlers.NewAppointmentHandler(svc, nil, nil)

	svc.On("UpdateStatus", mock.Anything, "a1", entities.AppointmentStatusConfirmed).
		Return(&entities.Appointment{ID: "a1", Status: entities.AppointmentStatusConfirmed}, nil)
	svc.On("UpdateStatus", mock.Anything, "missing", entities.AppointmentStatusCancelled).
		Return(nil, apperrors.NewNotFoundError("appointment with id missing not found"))

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/appointments/a1/status", bytes.NewBufferString(`{"status":"Confirmed"}`))
	req.SetPathValue("id", "a1")
	w := httptest.NewRecorder()
	handler.UpdateStatus(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPatch, "/api/admin/appointments/missing/status", bytes.NewBufferString(`{"status":"cancelled"}`))
	req.SetPathValue("id", "missing")
	w = httptest.NewRecorder()
	handler.UpdateStatus(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAppointmentHandler_DeleteAppointment(t *testing.T) {
	svc := new(MockAppointmentService)
	handler := handlers.NewAppointmentHandler(svc, nil, nil)
	svc.On("Delete", mock.Anything, "a1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/appointments/a1", nil)
	req.SetPathValue("id", "a1")
	w := httptest.NewRecorder()
	handler.DeleteAppointment(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAppointmentHandler_Calendar(t *testing.T) {
	calendar := new(MockCalendarService)
	handler := handlers.NewAppointmentHandler(new(MockAppointmentService), calendar, nil)

	month := dates.New(2026, 4, 1)
	calendar.On("ParseMonth", "2026-04").Return(month, nil)
	calendar.On("CalendarMonth", mock.Anything, month, "Dr. Mehta").Return(&entities.CalendarMonth{}, nil)
	calendar.On("ParseMonth", "April").Return(dates.Date{}, apperrors.NewValidationError("month must be YYYY-MM"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/calendar?month=2026-04&doctor=Dr.+Mehta", nil)
	w := httptest.NewRecorder()
	handler.GetCalendar(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/calendar?month=April", nil)
	w = httptest.NewRecorder()
	handler.GetCalendar(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
