package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinic-site/internal/application/services"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/pkg/dates"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

func TestCalendarService_CalendarMonth(t *testing.T) {
	appointments := new(MockAppointmentRepository)
	holidays := new(MockHolidayRepository)
	svc := services.NewCalendarService(appointments, holidays, time.UTC)

	ctx := context.Background()
	first := dates.New(2025, time.April, 1)
	last := dates.New(2025, time.April, 30)
	goodFriday := dates.New(2025, time.April, 18)

	appointments.On("List", ctx, entities.AppointmentFilter{From: first, To: last, Doctor: "Dr. Mehta"}).Return([]*entities.Appointment{
		{ID: "a1", Date: dates.New(2025, time.April, 2), Status: entities.AppointmentStatusPending},
		{ID: "a2", Date: dates.New(2025, time.April, 2), Status: entities.AppointmentStatusPending},
		{ID: "a3", Date: dates.New(2025, time.April, 2), Status: entities.AppointmentStatusCancelled},
		{ID: "a4", Date: dates.New(2025, time.April, 9), Status: entities.AppointmentStatusConfirmed},
	}, nil)
	holidays.On("List", ctx, entities.HolidayFilter{From: first, To: last, Doctor: "Dr. Mehta"}).Return([]*entities.Holiday{
		{ID: "h1", Date: goodFriday, Name: "Good Friday", Type: entities.HolidayTypeNational},
	}, nil)

	month, err := svc.CalendarMonth(ctx, dates.New(2025, time.April, 15), "Dr. Mehta")
	require.NoError(t, err)

	require.Len(t, month.Days, 30)
	assert.Equal(t, time.April, month.Month)

	second := month.Days[1]
	assert.Equal(t, 3, second.Total)
	assert.Equal(t, 2, second.Counts[entities.AppointmentStatusPending])
	assert.Equal(t, []entities.StatusDot{
		{Status: entities.AppointmentStatusPending, Color: "amber", Count: 2},
		{Status: entities.AppointmentStatusCancelled, Color: "red", Count: 1},
	}, second.Dots)

	assert.Equal(t, "green", month.Days[8].Dots[0].Color)
	require.NotNil(t, month.Days[17].Holiday)
	assert.Equal(t, "Good Friday", month.Days[17].Holiday.Name)
	assert.Nil(t, month.Days[16].Holiday)
	assert.Empty(t, month.Days[20].Dots)
}

func TestCalendarService_ParseMonth(t *testing.T) {
	svc := services.NewCalendarService(nil, nil, time.UTC)

	month, err := svc.ParseMonth("2025-02")
	require.NoError(t, err)
	assert.Equal(t, dates.New(2025, time.February, 1), month)

	_, err = svc.ParseMonth("February")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	current, err := svc.ParseMonth("")
	require.NoError(t, err)
	assert.Equal(t, 1, current.Day)
}

func TestCalendarService_Dashboard(t *testing.T) {
	appointments := new(MockAppointmentRepository)
	holidays := new(MockHolidayRepository)
	svc := services.NewCalendarService(appointments, holidays, time.UTC)

	ctx := context.Background()
	today := dates.Today(time.UTC)

	appointments.On("CountByStatus", ctx, dates.Date{}, dates.Date{}).Return(map[entities.AppointmentStatus]int{
		entities.AppointmentStatusPending:   4,
		entities.AppointmentStatusConfirmed: 2,
		entities.AppointmentStatusCompleted: 0,
		entities.AppointmentStatusCancelled: 1,
	}, nil)
	appointments.On("List", ctx, entities.AppointmentFilter{Date: today}).Return([]*entities.Appointment{{ID: "a1"}}, nil)
	appointments.On("List", ctx, mock.MatchedBy(func(f entities.AppointmentFilter) bool {
		return f.From.Equal(today.AddDays(1)) && f.Limit > 0
	})).Return([]*entities.Appointment{{ID: "a2"}, {ID: "a3"}}, nil)
	holidays.On("List", ctx, mock.Anything).Return([]*entities.Holiday{}, nil)

	dashboard, err := svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, 7, dashboard.Total)
	assert.Len(t, dashboard.Today, 1)
	assert.Len(t, dashboard.Upcoming, 2)
	appointments.AssertExpectations(t)
}
