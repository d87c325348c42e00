package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	"github.com/zatekoja/clinic-site/pkg/dates"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

const (
	upcomingDays           = 7
	upcomingLimit          = 20
	upcomingHolidayHorizon = 30
)

// CalendarService builds the admin calendar and dashboard views
type CalendarService struct {
	appointments repositories.AppointmentRepository
	holidays     repositories.HolidayRepository
	loc          *time.Location
	now          func() time.Time
}

// NewCalendarService creates a new calendar service
func NewCalendarService(appointments repositories.AppointmentRepository, holidays repositories.HolidayRepository, loc *time.Location) *CalendarService {
	if loc == nil {
		loc = time.Local
	}
	return &CalendarService{
		appointments: appointments,
		holidays:     holidays,
		loc:          loc,
		now:          time.Now,
	}
}

// ParseMonth reads a "2006-01" month; empty means the current month.
func (s *CalendarService) ParseMonth(value string) (dates.Date, error) {
	if value == "" {
		return dates.Today(s.loc).FirstOfMonth(), nil
	}
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return dates.Date{}, apperrors.NewValidationError(fmt.Sprintf("month %q must look like 2006-01", value))
	}
	return dates.Of(t), nil
}

// CalendarMonth returns one entry per day of month with per-status counts and
// the holiday blocking that day for doctor.
func (s *CalendarService) CalendarMonth(ctx context.Context, month dates.Date, doctor string) (*entities.CalendarMonth, error) {
	first := month.FirstOfMonth()
	last := first.AddDays(first.DaysInMonth() - 1)

	appointments, err := s.appointments.List(ctx, entities.AppointmentFilter{From: first, To: last, Doctor: doctor})
	if err != nil {
		return nil, err
	}
	holidays, err := s.holidays.List(ctx, entities.HolidayFilter{From: first, To: last, Doctor: doctor})
	if err != nil {
		return nil, err
	}

	days := make([]*entities.CalendarDay, 0, first.DaysInMonth())
	byDate := make(map[dates.Date]*entities.CalendarDay, first.DaysInMonth())
	for d := first; !d.After(last); d = d.AddDays(1) {
		day := &entities.CalendarDay{
			Date:    d,
			Counts:  map[entities.AppointmentStatus]int{},
			Dots:    []entities.StatusDot{},
			Holiday: entities.BlockingHoliday(holidays, d, doctor),
		}
		days = append(days, day)
		byDate[d] = day
	}

	for _, a := range appointments {
		day, ok := byDate[a.Date]
		if !ok {
			continue
		}
		day.Counts[a.Status]++
		day.Total++
	}
	for _, day := range days {
		day.Dots = statusDots(day.Counts)
	}

	return &entities.CalendarMonth{
		Year:   first.Year,
		Month:  first.Month,
		Doctor: doctor,
		Days:   days,
	}, nil
}

// statusDots lists one indicator per status present, in dashboard order
func statusDots(counts map[entities.AppointmentStatus]int) []entities.StatusDot {
	dots := []entities.StatusDot{}
	for _, status := range entities.AppointmentStatuses() {
		if counts[status] == 0 {
			continue
		}
		dots = append(dots, entities.StatusDot{Status: status, Color: status.Color(), Count: counts[status]})
	}
	return dots
}

// Dashboard summarises totals, today's bookings and what is coming up
func (s *CalendarService) Dashboard(ctx context.Context) (*entities.Dashboard, error) {
	today := dates.Today(s.loc)

	totals, err := s.appointments.CountByStatus(ctx, dates.Date{}, dates.Date{})
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range totals {
		total += n
	}

	todays, err := s.appointments.List(ctx, entities.AppointmentFilter{Date: today})
	if err != nil {
		return nil, err
	}
	upcoming, err := s.appointments.List(ctx, entities.AppointmentFilter{
		From:  today.AddDays(1),
		To:    today.AddDays(upcomingDays),
		Limit: upcomingLimit,
	})
	if err != nil {
		return nil, err
	}
	holidays, err := s.holidays.List(ctx, entities.HolidayFilter{From: today, To: today.AddDays(upcomingHolidayHorizon)})
	if err != nil {
		return nil, err
	}

	return &entities.Dashboard{
		Totals:           totals,
		Total:            total,
		Today:            todays,
		Upcoming:         upcoming,
		UpcomingHolidays: holidays,
		GeneratedAt:      s.now(),
	}, nil
}
