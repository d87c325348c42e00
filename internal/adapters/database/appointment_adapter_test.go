package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/pkg/dates"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

func appointmentColumnNames() []string {
	names := make([]string, len(appointmentColumns))
	for i, c := range appointmentColumns {
		names[i] = c.(string)
	}
	return names
}

func TestAppointmentConditions(t *testing.T) {
	assert.Empty(t, appointmentConditions(entities.AppointmentFilter{}))
	assert.Empty(t, appointmentConditions(entities.AppointmentFilter{Doctor: entities.AllDoctors}))
	assert.Empty(t, appointmentConditions(entities.AppointmentFilter{Doctor: " All "}))
	assert.Len(t, appointmentConditions(entities.AppointmentFilter{
		From:   dates.New(2025, time.April, 1),
		To:     dates.New(2025, time.April, 30),
		Status: entities.AppointmentStatusPending,
	}), 3)
}

func TestAppointmentAdapter_ListByDate(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewAppointmentAdapter(client)
	day := dates.New(2025, time.April, 18)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE (("date" = '2025-04-18') AND ("status" = 'pending'))`)).
		WillReturnRows(sqlmock.NewRows(appointmentColumnNames()).
			AddRow("a1", "Asha", "K", "asha@example.com", "+91", day.Time(time.UTC), "10:30 AM",
				"eyecare", "Blurry vision", nil, nil, "pending", 34, "female", nil, now, now))

	list, err := adapter.List(context.Background(), entities.AppointmentFilter{Date: day, Status: entities.AppointmentStatusPending})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Asha K", list[0].FullName())
	assert.Equal(t, day, list[0].Date)
	require.NotNil(t, list[0].Age)
	assert.Equal(t, 34, *list[0].Age)
}

func TestAppointmentAdapter_ListMatchesDoctorExactly(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewAppointmentAdapter(client)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE (LOWER("doctor") = 'dr_smith%')`)).
		WillReturnRows(sqlmock.NewRows(appointmentColumnNames()))

	list, err := adapter.List(context.Background(), entities.AppointmentFilter{Doctor: " Dr_Smith% "})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentAdapter_UpdateStatusNotFound(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewAppointmentAdapter(client)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE "appointments" SET`)).
		WillReturnRows(sqlmock.NewRows(appointmentColumnNames()))

	_, err := adapter.UpdateStatus(context.Background(), "nope", entities.AppointmentStatusConfirmed)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAppointmentAdapter_CountByStatusFillsZeros(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewAppointmentAdapter(client)

	mock.ExpectQuery(regexp.QuoteMeta(`GROUP BY "status"`)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("pending", 3).AddRow("cancelled", 1))

	counts, err := adapter.CountByStatus(context.Background(), dates.Date{}, dates.Date{})
	require.NoError(t, err)
	assert.Equal(t, 3, counts[entities.AppointmentStatusPending])
	assert.Equal(t, 0, counts[entities.AppointmentStatusConfirmed])
	assert.Equal(t, 1, counts[entities.AppointmentStatusCancelled])
	assert.Len(t, counts, 4)
}
