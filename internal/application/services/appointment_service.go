package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	"github.com/zatekoja/clinic-site/internal/infrastructure/observability"
	"github.com/zatekoja/clinic-site/pkg/dates"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// notificationTimeout bounds the background notification sends
const notificationTimeout = 30 * time.Second

// AppointmentRequest is the public booking form
type AppointmentRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Specialty      string `json:"specialty"`
	Reason         string `json:"reason"`
	Doctor         string `json:"doctor"`
	Clinic         string `json:"clinic"`
	Age            *int   `json:"age,omitempty"`
	Gender         string `json:"gender"`
	AdditionalInfo string `json:"additional_info"`
}

// AppointmentNotifier sends the emails that follow a booking
type AppointmentNotifier interface {
	NotifyAppointmentRequested(ctx context.Context, appointment *entities.Appointment) error
	NotifyStatusChanged(ctx context.Context, appointment *entities.Appointment) error
}

// AppointmentService handles appointment booking logic
type AppointmentService struct {
	repo     repositories.AppointmentRepository
	holidays repositories.HolidayRepository
	notifier AppointmentNotifier
	metrics  *observability.Metrics
	loc      *time.Location
	now      func() time.Time
	pending  sync.WaitGroup
}

// NewAppointmentService creates a new appointment service. notifier may be nil.
func NewAppointmentService(
	repo repositories.AppointmentRepository,
	holidays repositories.HolidayRepository,
	notifier AppointmentNotifier,
	metrics *observability.Metrics,
	loc *time.Location,
) *AppointmentService {
	if loc == nil {
		loc = time.Local
	}
	return &AppointmentService{
		repo:     repo,
		holidays: holidays,
		notifier: notifier,
		metrics:  metrics,
		loc:      loc,
		now:      time.Now,
	}
}

func (r *AppointmentRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.Specialty = strings.TrimSpace(r.Specialty)
	r.Reason = strings.TrimSpace(r.Reason)
	r.Doctor = strings.TrimSpace(r.Doctor)
	r.Clinic = strings.TrimSpace(r.Clinic)
	r.Gender = strings.TrimSpace(r.Gender)
	r.AdditionalInfo = strings.TrimSpace(r.AdditionalInfo)
}

// missingFields lists the required form fields left blank
func (r *AppointmentRequest) missingFields() []string {
	required := []struct {
		name  string
		value string
	}{
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"email", r.Email},
		{"phone", r.Phone},
		{"date", r.Date},
		{"time", r.Time},
		{"specialty", r.Specialty},
	}
	var missing []string
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// RequestAppointment validates the form, rejects holiday dates and stores the
// request as pending. Notification failures never fail the request.
func (s *AppointmentService) RequestAppointment(ctx context.Context, req AppointmentRequest) (*entities.Appointment, error) {
	appointment, err := s.requestAppointment(ctx, req)
	outcome := "created"
	if err != nil {
		outcome = "rejected"
		if appErr, ok := apperrors.As(err); ok && appErr.Type != apperrors.ErrorTypeValidation {
			outcome = "failed"
		}
	}
	observability.RecordAppointmentRequest(ctx, s.metrics, strings.ToLower(req.Specialty), outcome)
	return appointment, err
}

func (s *AppointmentService) requestAppointment(ctx context.Context, req AppointmentRequest) (*entities.Appointment, error) {
	req.normalize()

	if missing := req.missingFields(); len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, apperrors.NewValidationError("email is not valid")
	}
	specialty, err := entities.ParseSpecialty(req.Specialty)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	day, err := dates.Parse(req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("date is not valid: %v", err))
	}
	if day.Before(dates.Today(s.loc)) {
		return nil, apperrors.NewValidationError("date must not be in the past")
	}
	if req.Age != nil && (*req.Age < 0 || *req.Age > 130) {
		return nil, apperrors.NewValidationError("age is not valid")
	}

	if s.holidays != nil {
		holidays, err := s.holidays.ListByDate(ctx, day)
		if err != nil {
			return nil, err
		}
		if h := entities.BlockingHoliday(holidays, day, req.Doctor); h != nil {
			return nil, apperrors.NewValidationError(h.Reason())
		}
	}

	now := s.now()
	appointment := &entities.Appointment{
		ID:             uuid.New().String(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Date:           day,
		Time:           req.Time,
		Specialty:      specialty,
		Reason:         req.Reason,
		Doctor:         req.Doctor,
		Clinic:         req.Clinic,
		Status:         entities.AppointmentStatusPending,
		Age:            req.Age,
		Gender:         req.Gender,
		AdditionalInfo: req.AdditionalInfo,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}

	s.notify(ctx, appointment, func(ctx context.Context, n AppointmentNotifier) error {
		return n.NotifyAppointmentRequested(ctx, appointment)
	})
	return appointment, nil
}

// notify runs fn in the background, detached from the request's cancellation
func (s *AppointmentService) notify(ctx context.Context, appointment *entities.Appointment, fn func(context.Context, AppointmentNotifier) error) {
	if s.notifier == nil {
		return
	}
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		if err := fn(bg, s.notifier); err != nil {
			log.Ctx(bg).Warn().Err(err).Str("appointment_id", appointment.ID).Msg("Appointment notification incomplete")
		}
	}()
}

// Wait blocks until background notifications finish
func (s *AppointmentService) Wait() {
	s.pending.Wait()
}

// List returns appointments matching the filter
func (s *AppointmentService) List(ctx context.Context, filter entities.AppointmentFilter) ([]*entities.Appointment, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", filter.Status))
	}
	if filter.Specialty != "" && !filter.Specialty.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown specialty %q", filter.Specialty))
	}
	return s.repo.List(ctx, filter)
}

// Get returns one appointment
func (s *AppointmentService) Get(ctx context.Context, id string) (*entities.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus sets any of the four statuses; there is no transition check
func (s *AppointmentService) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", status))
	}
	previous, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	appointment, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if previous.Status != status && (status == entities.AppointmentStatusConfirmed || status == entities.AppointmentStatusCancelled) {
		s.notify(ctx, appointment, func(ctx context.Context, n AppointmentNotifier) error {
			return n.NotifyStatusChanged(ctx, appointment)
		})
	}
	return appointment, nil
}

// Delete removes an appointment
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
