package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinic-site/internal/application/services"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/pkg/dates"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

func exportFixture(t *testing.T) (*services.ExportService, *entities.ExportBundle) {
	t.Helper()
	appointments := new(MockAppointmentRepository)
	holidays := new(MockHolidayRepository)
	blocks := new(MockContentBlockRepository)
	svc := services.NewExportService(appointments, holidays, blocks)

	ctx := context.Background()
	from := dates.New(2025, time.April, 1)
	to := dates.New(2025, time.April, 30)
	age := 34

	appointments.On("List", ctx, entities.AppointmentFilter{From: from, To: to}).Return([]*entities.Appointment{
		{ID: "a1", FirstName: "Asha", LastName: "Rao", Date: dates.New(2025, time.April, 18), Time: "10:30",
			Status: entities.AppointmentStatusConfirmed, Specialty: entities.SpecialtyEyecare, Age: &age},
	}, nil)
	holidays.On("List", ctx, entities.HolidayFilter{From: from, To: to}).Return([]*entities.Holiday{
		{ID: "h1", Date: dates.New(2025, time.April, 18), Name: "Good Friday", Type: entities.HolidayTypeAPI},
	}, nil)
	blocks.On("ListAll", ctx).Return([]*entities.ContentBlock{
		{ID: "b1", Page: "home", Section: "hero", Title: "Welcome", OrderIndex: 0},
		{ID: "b2", Page: "home", Section: "about", Title: "About us", OrderIndex: 1},
	}, nil)

	bundle, err := svc.Collect(ctx, from, to)
	require.NoError(t, err)
	return svc, bundle
}

func TestExportService_WriteXLSX(t *testing.T) {
	svc, bundle := exportFixture(t)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteXLSX(&buf, bundle))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)

	assert.Equal(t, 0, file.GetSheetIndex("Sheet1"))
	assert.Equal(t, "ID", file.GetCellValue(services.SheetAppointments, "A1"))
	assert.Equal(t, "2025-04-18", file.GetCellValue(services.SheetAppointments, "B2"))
	assert.Equal(t, "confirmed", file.GetCellValue(services.SheetAppointments, "D2"))
	assert.Equal(t, "34", file.GetCellValue(services.SheetAppointments, "L2"))
	assert.Equal(t, "Good Friday", file.GetCellValue(services.SheetHolidays, "C2"))
	assert.Equal(t, "About us", file.GetCellValue(services.SheetContentBlocks, "F3"))
}

func TestExportService_WriteJSON(t *testing.T) {
	svc, bundle := exportFixture(t)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteJSON(&buf, bundle))

	var decoded struct {
		From         string                   `json:"from"`
		Appointments []map[string]interface{} `json:"appointments"`
		Blocks       []map[string]interface{} `json:"content_blocks"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2025-04-01", decoded.From)
	assert.Len(t, decoded.Appointments, 1)
	assert.Len(t, decoded.Blocks, 2)
}

func TestExportService_CollectRejectsInvertedRange(t *testing.T) {
	svc := services.NewExportService(nil, nil, nil)

	_, err := svc.Collect(context.Background(), dates.New(2025, time.May, 1), dates.New(2025, time.April, 1))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
