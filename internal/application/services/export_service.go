package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	"github.com/zatekoja/clinic-site/pkg/dates"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

// Sheet names in the exported workbook
const (
	SheetAppointments  = "Appointments"
	SheetHolidays      = "Holidays"
	SheetContentBlocks = "ContentBlocks"
)

var (
	appointmentHeaders = []string{
		"ID", "Date", "Time", "Status", "Specialty", "Doctor", "Clinic", "First Name", "Last Name",
		"Email", "Phone", "Age", "Gender", "Reason", "Additional Info", "Created At",
	}
	holidayHeaders = []string{"ID", "Date", "Name", "Type", "Doctor", "Description"}
	blockHeaders   = []string{"ID", "Page", "Section", "Specialty", "Name", "Title", "Content", "Image URL", "Order", "Updated At"}
)

// ExportService produces the admin data export
type ExportService struct {
	appointments repositories.AppointmentRepository
	holidays     repositories.HolidayRepository
	blocks       repositories.ContentBlockRepository
	now          func() time.Time
}

// NewExportService creates a new export service
func NewExportService(appointments repositories.AppointmentRepository, holidays repositories.HolidayRepository, blocks repositories.ContentBlockRepository) *ExportService {
	return &ExportService{
		appointments: appointments,
		holidays:     holidays,
		blocks:       blocks,
		now:          time.Now,
	}
}

// Collect gathers appointments and holidays within [from, to] plus every content block.
// Zero dates leave that side of the range open.
func (s *ExportService) Collect(ctx context.Context, from, to dates.Date) (*entities.ExportBundle, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, apperrors.NewValidationError("to must not be before from")
	}

	appointments, err := s.appointments.List(ctx, entities.AppointmentFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	holidays, err := s.holidays.List(ctx, entities.HolidayFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	blocks, err := s.blocks.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return &entities.ExportBundle{
		From:         from,
		To:           to,
		Appointments: appointments,
		Holidays:     holidays,
		Blocks:       blocks,
		GeneratedAt:  s.now(),
	}, nil
}

// WriteJSON writes the bundle as indented JSON
func (s *ExportService) WriteJSON(w io.Writer, bundle *entities.ExportBundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bundle)
}

// WriteXLSX writes the bundle as a workbook with one sheet per dataset
func (s *ExportService) WriteXLSX(w io.Writer, bundle *entities.ExportBundle) error {
	file := excelize.NewFile()
	for _, sheet := range []string{SheetAppointments, SheetHolidays, SheetContentBlocks} {
		file.NewSheet(sheet)
	}
	file.DeleteSheet("Sheet1")

	writeHeaders(file, SheetAppointments, appointmentHeaders)
	for i, a := range bundle.Appointments {
		age := ""
		if a.Age != nil {
			age = fmt.Sprint(*a.Age)
		}
		writeRow(file, SheetAppointments, i+2, []interface{}{
			a.ID, a.Date.String(), a.Time, string(a.Status), string(a.Specialty), a.Doctor, a.Clinic,
			a.FirstName, a.LastName, a.Email, a.Phone, age, a.Gender, a.Reason, a.AdditionalInfo,
			a.CreatedAt.Format(time.RFC3339),
		})
	}

	writeHeaders(file, SheetHolidays, holidayHeaders)
	for i, h := range bundle.Holidays {
		writeRow(file, SheetHolidays, i+2, []interface{}{
			h.ID, h.Date.String(), h.Name, string(h.Type), h.Doctor, h.Description,
		})
	}

	writeHeaders(file, SheetContentBlocks, blockHeaders)
	for i, b := range bundle.Blocks {
		writeRow(file, SheetContentBlocks, i+2, []interface{}{
			b.ID, b.Page, b.Section, b.Specialty, b.Name, b.Title, b.Content, b.ImageURL,
			b.OrderIndex, b.UpdatedAt.Format(time.RFC3339),
		})
	}

	if err := file.Write(w); err != nil {
		return apperrors.NewInternalError("failed to write workbook", err)
	}
	return nil
}

func writeHeaders(file *excelize.File, sheet string, headers []string) {
	for col, h := range headers {
		file.SetCellValue(sheet, cellName(col, 1), h)
	}
}

func writeRow(file *excelize.File, sheet string, row int, values []interface{}) {
	for col, v := range values {
		file.SetCellValue(sheet, cellName(col, row), v)
	}
}

// cellName converts a 0-based column and 1-based row to an A1 reference
func cellName(col, row int) string {
	return fmt.Sprintf("%s%d", excelize.ToAlphaString(col), row)
}
