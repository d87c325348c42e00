package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	"github.com/zatekoja/clinic-site/pkg/dates"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

const holidaySyncTag = "holiday-sync"

// HolidayService manages clinic closures and answers date availability
type HolidayService struct {
	repo      repositories.HolidayRepository
	provider  providers.HolidayProvider
	feed      changeFeed
	scheduler *gocron.Scheduler
	loc       *time.Location
}

// NewHolidayService creates a new holiday service. provider and bus may be nil.
func NewHolidayService(repo repositories.HolidayRepository, provider providers.HolidayProvider, bus providers.EventBus, loc *time.Location) *HolidayService {
	if loc == nil {
		loc = time.Local
	}
	return &HolidayService{
		repo:     repo,
		provider: provider,
		feed:     changeFeed{bus: bus},
		loc:      loc,
	}
}

func validateHoliday(h *entities.Holiday) error {
	h.Name = strings.TrimSpace(h.Name)
	h.Doctor = strings.TrimSpace(h.Doctor)
	if strings.EqualFold(h.Doctor, entities.AllDoctors) {
		h.Doctor = ""
	}
	if h.Type == "" {
		h.Type = entities.HolidayTypeManual
		if h.Doctor != "" {
			h.Type = entities.HolidayTypeDoctor
		}
	}

	var problems []string
	if h.Date.IsZero() {
		problems = append(problems, "date is required")
	}
	if h.Name == "" {
		problems = append(problems, "name is required")
	}
	if !h.Type.Valid() {
		problems = append(problems, fmt.Sprintf("unknown holiday type %q", h.Type))
	}
	if h.Type == entities.HolidayTypeDoctor && h.Doctor == "" {
		problems = append(problems, "doctor is required for a doctor holiday")
	}
	if len(problems) > 0 {
		return apperrors.NewValidationError(strings.Join(problems, "; "))
	}
	return nil
}

// Create adds a holiday
func (s *HolidayService) Create(ctx context.Context, holiday *entities.Holiday) (*entities.Holiday, error) {
	if err := validateHoliday(holiday); err != nil {
		return nil, err
	}
	holiday.ID = uuid.New().String()
	holiday.CreatedAt = time.Now()
	if err := s.repo.Create(ctx, holiday); err != nil {
		return nil, err
	}
	s.feed.publish(ctx, "", entities.ContentKindHoliday, holiday.ID, entities.ContentEventCreated, nil)
	return holiday, nil
}

// Get returns one holiday
func (s *HolidayService) Get(ctx context.Context, id string) (*entities.Holiday, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces a holiday's fields
func (s *HolidayService) Update(ctx context.Context, id string, holiday *entities.Holiday) (*entities.Holiday, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateHoliday(holiday); err != nil {
		return nil, err
	}
	holiday.ID = id
	holiday.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, holiday); err != nil {
		return nil, err
	}
	s.feed.publish(ctx, "", entities.ContentKindHoliday, id, entities.ContentEventUpdated, nil)
	return holiday, nil
}

// Delete removes a holiday
func (s *HolidayService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.feed.publish(ctx, "", entities.ContentKindHoliday, id, entities.ContentEventDeleted, nil)
	return nil
}

// List returns holidays matching the filter
func (s *HolidayService) List(ctx context.Context, filter entities.HolidayFilter) ([]*entities.Holiday, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, apperrors.NewValidationError("to must not be before from")
	}
	return s.repo.List(ctx, filter)
}

// CheckDate reports whether day is bookable with doctor
func (s *HolidayService) CheckDate(ctx context.Context, day dates.Date, doctor string) (*entities.DateCheck, error) {
	holidays, err := s.repo.ListByDate(ctx, day)
	if err != nil {
		return nil, err
	}

	check := &entities.DateCheck{Date: day, Available: true}
	if h := entities.BlockingHoliday(holidays, day, doctor); h != nil {
		check.Available = false
		check.Holiday = h
		check.Reason = h.Reason()
	}
	return check, nil
}

// SyncHolidays imports the provider's public holidays for year. Existing
// (date, name, type) rows are kept, so repeated syncs are idempotent.
func (s *HolidayService) SyncHolidays(ctx context.Context, year int) (int, error) {
	if s.provider == nil {
		return 0, apperrors.NewInternalError("holiday provider not configured", nil)
	}
	if year < 1900 || year > 2200 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid year %d", year))
	}

	fetched, err := s.provider.PublicHolidays(ctx, year)
	if err != nil {
		return 0, apperrors.NewExternalError(fmt.Sprintf("failed to fetch holidays from %s", s.provider.Name()), err)
	}

	now := time.Now()
	for _, h := range fetched {
		h.ID = uuid.New().String()
		h.Type = entities.HolidayTypeAPI
		h.CreatedAt = now
	}

	inserted, err := s.repo.Upsert(ctx, fetched)
	if err != nil {
		return 0, err
	}

	log.Ctx(ctx).Info().
		Str("provider", s.provider.Name()).
		Int("year", year).
		Int("fetched", len(fetched)).
		Int("inserted", inserted).
		Msg("Synced public holidays")

	if inserted > 0 {
		s.feed.publish(ctx, "", entities.ContentKindHoliday, fmt.Sprintf("sync-%d", year), entities.ContentEventCreated, map[string]interface{}{"inserted": inserted})
	}
	return inserted, nil
}

// syncCurrentAndNextYear is the scheduled job body
func (s *HolidayService) syncCurrentAndNextYear() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	year := time.Now().In(s.loc).Year()
	for _, y := range []int{year, year + 1} {
		if _, err := s.SyncHolidays(ctx, y); err != nil {
			log.Error().Err(err).Int("year", y).Msg("Scheduled holiday sync failed")
		}
	}
}

// StartScheduler runs the sync daily at "HH:MM" in the service location and
// once immediately.
func (s *HolidayService) StartScheduler(at string) error {
	if s.scheduler != nil {
		return fmt.Errorf("holiday scheduler already running")
	}
	scheduler := gocron.NewScheduler(s.loc)
	_, err := scheduler.Every(1).Day().At(at).Tag(holidaySyncTag).SingletonMode().StartImmediately().Do(s.syncCurrentAndNextYear)
	if err != nil {
		return fmt.Errorf("failed to schedule holiday sync: %w", err)
	}
	scheduler.StartAsync()
	s.scheduler = scheduler
	log.Info().Str("at", at).Msg("Holiday sync scheduler started")
	return nil
}

// StopScheduler stops the sync job
func (s *HolidayService) StopScheduler() {
	if s.scheduler == nil {
		return
	}
	s.scheduler.Stop()
	s.scheduler = nil
	log.Info().Msg("Holiday sync scheduler stopped")
}
