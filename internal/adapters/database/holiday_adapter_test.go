package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/pkg/dates"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

func TestHolidayAdapter_ListByDate(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewHolidayAdapter(client)
	day := dates.New(2025, time.April, 18)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ("date" = '2025-04-18')`)).
		WillReturnRows(sqlmock.NewRows(holidayColumnNames()).
			AddRow("h1", day.Time(time.UTC), "Good Friday", "national", nil, "Clinic closed", time.Now()).
			AddRow("h2", day.Time(time.UTC), "Leave", "doctor", "Dr. Rao", nil, time.Now()))

	holidays, err := adapter.ListByDate(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.True(t, holidays[0].ClinicWide())
	assert.Equal(t, day, holidays[0].Date)
	assert.Equal(t, "Dr. Rao", holidays[1].Doctor)
}

func TestHolidayAdapter_ListByDoctor(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewHolidayAdapter(client)

	mock.ExpectQuery(regexp.QuoteMeta(`("doctor" IS NULL)`) + `.*` + regexp.QuoteMeta(`(LOWER("doctor") = 'dr_rao')`)).
		WillReturnRows(sqlmock.NewRows(holidayColumnNames()))
	_, err := adapter.List(context.Background(), entities.HolidayFilter{Doctor: "Dr_Rao"})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "holidays" ORDER BY`)).
		WillReturnRows(sqlmock.NewRows(holidayColumnNames()))
	_, err = adapter.List(context.Background(), entities.HolidayFilter{Doctor: "ALL"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidayAdapter_UpsertSkipsExisting(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewHolidayAdapter(client)

	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT DO NOTHING`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := adapter.Upsert(context.Background(), []*entities.Holiday{
		{ID: "1", Date: dates.New(2025, time.January, 26), Name: "Republic Day", Type: entities.HolidayTypeAPI},
		{ID: "2", Date: dates.New(2025, time.August, 15), Name: "Independence Day", Type: entities.HolidayTypeAPI},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	inserted, err = adapter.Upsert(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidayAdapter_CreateDuplicateIsConflict(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := NewHolidayAdapter(client)

	mock.ExpectExec(`INSERT INTO "holidays"`).WillReturnError(&pq.Error{Code: "23505"})

	err := adapter.Create(context.Background(), &entities.Holiday{
		ID: "1", Date: dates.New(2025, time.December, 25), Name: "Christmas", Type: entities.HolidayTypeManual,
	})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
}

func holidayColumnNames() []string {
	names := make([]string, len(holidayColumns))
	for i, c := range holidayColumns {
		names[i] = c.(string)
	}
	return names
}
