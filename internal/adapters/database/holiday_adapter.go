package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	"github.com/zatekoja/clinic-site/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/clinic-site/pkg/dates"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

const holidaysTable = "holidays"

var holidayColumns = []interface{}{"id", "date", "name", "type", "doctor", "description", "created_at"}

type holidayRow struct {
	ID          string         `db:"id"`
	Date        dates.Date     `db:"date"`
	Name        string         `db:"name"`
	Type        string         `db:"type"`
	Doctor      sql.NullString `db:"doctor"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r *holidayRow) toEntity() *entities.Holiday {
	return &entities.Holiday{
		ID:          r.ID,
		Date:        r.Date,
		Name:        r.Name,
		Type:        entities.HolidayType(r.Type),
		Doctor:      r.Doctor.String,
		Description: r.Description.String,
		CreatedAt:   r.CreatedAt,
	}
}

func holidayRecord(h *entities.Holiday) goqu.Record {
	return goqu.Record{
		"id":          h.ID,
		"date":        h.Date.String(),
		"name":        h.Name,
		"type":        string(h.Type),
		"doctor":      nullIfEmpty(h.Doctor),
		"description": h.Description,
		"created_at":  h.CreatedAt,
	}
}

// HolidayAdapter implements the HolidayRepository interface
type HolidayAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewHolidayAdapter creates a new holiday adapter
func NewHolidayAdapter(client *postgres.Client) repositories.HolidayRepository {
	return &HolidayAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a holiday; a duplicate (date, name, type) is a conflict
func (a *HolidayAdapter) Create(ctx context.Context, holiday *entities.Holiday) error {
	query, args, err := a.db.Insert(holidaysTable).Rows(holidayRecord(holiday)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("holiday %q already exists on %s", holiday.Name, holiday.Date))
		}
		return apperrors.NewInternalError("failed to create holiday", err)
	}
	return nil
}

// GetByID retrieves a holiday by ID
func (a *HolidayAdapter) GetByID(ctx context.Context, id string) (*entities.Holiday, error) {
	query, args, err := a.db.Select(holidayColumns...).
		From(holidaysTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var row holidayRow
	err = a.client.DBX().GetContext(ctx, &row, query, args...)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("holiday with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get holiday", err)
	}
	return row.toEntity(), nil
}

// Update overwrites a holiday's editable fields
func (a *HolidayAdapter) Update(ctx context.Context, holiday *entities.Holiday) error {
	record := holidayRecord(holiday)
	delete(record, "id")
	delete(record, "created_at")

	query, args, err := a.db.Update(holidaysTable).
		Set(record).
		Where(goqu.Ex{"id": holiday.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("holiday %q already exists on %s", holiday.Name, holiday.Date))
		}
		return apperrors.NewInternalError("failed to update holiday", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("holiday with id %s not found", holiday.ID))
	}
	return nil
}

// Delete removes a holiday
func (a *HolidayAdapter) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, a.db, a.client, holidaysTable, "holiday", id)
}

// ListByDate returns every holiday on the given day
func (a *HolidayAdapter) ListByDate(ctx context.Context, day dates.Date) ([]*entities.Holiday, error) {
	query, args, err := a.db.Select(holidayColumns...).
		From(holidaysTable).
		Where(goqu.C("date").Eq(day.String())).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.selectHolidays(ctx, query, args...)
}

// List returns holidays matching the filter ordered by date
func (a *HolidayAdapter) List(ctx context.Context, filter entities.HolidayFilter) ([]*entities.Holiday, error) {
	var conds []goqu.Expression
	if !filter.From.IsZero() {
		conds = append(conds, goqu.C("date").Gte(filter.From.String()))
	}
	if !filter.To.IsZero() {
		conds = append(conds, goqu.C("date").Lte(filter.To.String()))
	}
	if filter.Type != "" {
		conds = append(conds, goqu.C("type").Eq(string(filter.Type)))
	}
	if !entities.SelectsAllDoctors(filter.Doctor) {
		// Clinic-wide holidays apply to every doctor.
		conds = append(conds, goqu.Or(
			goqu.C("doctor").IsNull(),
			goqu.C("doctor").Eq(""),
			doctorNameEq(filter.Doctor),
		))
	}

	query, args, err := a.db.Select(holidayColumns...).
		From(holidaysTable).
		Where(conds...).
		Order(goqu.I("date").Asc(), goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.selectHolidays(ctx, query, args...)
}

// Upsert inserts holidays, skipping any (date, name, type) that already exists
func (a *HolidayAdapter) Upsert(ctx context.Context, holidays []*entities.Holiday) (int, error) {
	if len(holidays) == 0 {
		return 0, nil
	}

	rows := make([]interface{}, 0, len(holidays))
	for _, h := range holidays {
		rows = append(rows, holidayRecord(h))
	}

	query, args, err := a.db.Insert(holidaysTable).
		Rows(rows...).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build upsert query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to upsert holidays", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return int(inserted), nil
}

func (a *HolidayAdapter) selectHolidays(ctx context.Context, query string, args ...interface{}) ([]*entities.Holiday, error) {
	var rows []holidayRow
	if err := a.client.DBX().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list holidays", err)
	}
	holidays := make([]*entities.Holiday, 0, len(rows))
	for i := range rows {
		holidays = append(holidays, rows[i].toEntity())
	}
	return holidays, nil
}
