package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	"github.com/zatekoja/clinic-site/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/clinic-site/pkg/dates"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

const appointmentsTable = "appointments"

var appointmentColumns = []interface{}{
	"id", "first_name", "last_name", "email", "phone", "date", "time",
	"specialty", "reason", "doctor", "clinic", "status", "age", "gender",
	"additional_info", "created_at", "updated_at",
}

type appointmentRow struct {
	ID             string         `db:"id"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	Email          string         `db:"email"`
	Phone          string         `db:"phone"`
	Date           dates.Date     `db:"date"`
	Time           string         `db:"time"`
	Specialty      string         `db:"specialty"`
	Reason         sql.NullString `db:"reason"`
	Doctor         sql.NullString `db:"doctor"`
	Clinic         sql.NullString `db:"clinic"`
	Status         string         `db:"status"`
	Age            sql.NullInt64  `db:"age"`
	Gender         sql.NullString `db:"gender"`
	AdditionalInfo sql.NullString `db:"additional_info"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r *appointmentRow) toEntity() *entities.Appointment {
	a := &entities.Appointment{
		ID:             r.ID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		Date:           r.Date,
		Time:           r.Time,
		Specialty:      entities.Specialty(r.Specialty),
		Reason:         r.Reason.String,
		Doctor:         r.Doctor.String,
		Clinic:         r.Clinic.String,
		Status:         entities.AppointmentStatus(r.Status),
		Gender:         r.Gender.String,
		AdditionalInfo: r.AdditionalInfo.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.Age.Valid {
		age := int(r.Age.Int64)
		a.Age = &age
	}
	return a
}

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new appointment
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	var age interface{}
	if appointment.Age != nil {
		age = *appointment.Age
	}

	record := goqu.Record{
		"id":              appointment.ID,
		"first_name":      appointment.FirstName,
		"last_name":       appointment.LastName,
		"email":           appointment.Email,
		"phone":           appointment.Phone,
		"date":            appointment.Date.String(),
		"time":            appointment.Time,
		"specialty":       string(appointment.Specialty),
		"reason":          appointment.Reason,
		"doctor":          nullIfEmpty(appointment.Doctor),
		"clinic":          appointment.Clinic,
		"status":          string(appointment.Status),
		"age":             age,
		"gender":          appointment.Gender,
		"additional_info": appointment.AdditionalInfo,
		"created_at":      appointment.CreatedAt,
		"updated_at":      appointment.UpdatedAt,
	}

	query, args, err := a.db.Insert(appointmentsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create appointment", err)
	}
	return nil
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From(appointmentsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var row appointmentRow
	err = a.client.DBX().GetContext(ctx, &row, query, args...)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}
	return row.toEntity(), nil
}

// List retrieves appointments matching the filter
func (a *AppointmentAdapter) List(ctx context.Context, filter entities.AppointmentFilter) ([]*entities.Appointment, error) {
	ds := a.db.Select(appointmentColumns...).
		From(appointmentsTable).
		Where(appointmentConditions(filter)...).
		Order(goqu.I("date").Asc(), goqu.I("time").Asc(), goqu.I("created_at").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var rows []appointmentRow
	if err := a.client.DBX().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}

	appointments := make([]*entities.Appointment, 0, len(rows))
	for i := range rows {
		appointments = append(appointments, rows[i].toEntity())
	}
	return appointments, nil
}

func appointmentConditions(filter entities.AppointmentFilter) []goqu.Expression {
	var conds []goqu.Expression
	if !filter.Date.IsZero() {
		conds = append(conds, goqu.C("date").Eq(filter.Date.String()))
	}
	if !filter.From.IsZero() {
		conds = append(conds, goqu.C("date").Gte(filter.From.String()))
	}
	if !filter.To.IsZero() {
		conds = append(conds, goqu.C("date").Lte(filter.To.String()))
	}
	if filter.Status != "" {
		conds = append(conds, goqu.C("status").Eq(string(filter.Status)))
	}
	if filter.Specialty != "" {
		conds = append(conds, goqu.C("specialty").Eq(string(filter.Specialty)))
	}
	if !entities.SelectsAllDoctors(filter.Doctor) {
		conds = append(conds, doctorNameEq(filter.Doctor))
	}
	return conds
}

// doctorNameEq compares doctor names case-insensitively without LIKE wildcards.
func doctorNameEq(name string) goqu.Expression {
	return goqu.Func("LOWER", goqu.C("doctor")).Eq(strings.ToLower(strings.TrimSpace(name)))
}

// UpdateStatus sets the status of an appointment
func (a *AppointmentAdapter) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error) {
	query, args, err := a.db.Update(appointmentsTable).
		Set(goqu.Record{"status": string(status), "updated_at": time.Now()}).
		Where(goqu.Ex{"id": id}).
		Returning(appointmentColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	var row appointmentRow
	err = a.client.DBX().GetContext(ctx, &row, query, args...)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to update appointment", err)
	}
	return row.toEntity(), nil
}

// Delete removes an appointment
func (a *AppointmentAdapter) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, a.db, a.client, appointmentsTable, "appointment", id)
}

// CountByStatus counts appointments per status within [from, to]
func (a *AppointmentAdapter) CountByStatus(ctx context.Context, from, to dates.Date) (map[entities.AppointmentStatus]int, error) {
	query, args, err := a.db.Select(goqu.C("status"), goqu.COUNT("*").As("count")).
		From(appointmentsTable).
		Where(appointmentConditions(entities.AppointmentFilter{From: from, To: to})...).
		GroupBy("status").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := a.client.DBX().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to count appointments", err)
	}

	counts := make(map[entities.AppointmentStatus]int, len(entities.AppointmentStatuses()))
	for _, s := range entities.AppointmentStatuses() {
		counts[s] = 0
	}
	for _, r := range rows {
		counts[entities.AppointmentStatus(r.Status)] = r.Count
	}
	return counts, nil
}
