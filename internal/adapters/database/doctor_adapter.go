package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	"github.com/zatekoja/clinic-site/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

const doctorsTable = "doctors"

var doctorColumns = []interface{}{
	"id", "specialty", "name", "title", "bio", "image_url",
	"qualifications", "order_index", "created_at", "updated_at",
}

type doctorRow struct {
	ID             string         `db:"id"`
	Specialty      string         `db:"specialty"`
	Name           string         `db:"name"`
	Title          sql.NullString `db:"title"`
	Bio            sql.NullString `db:"bio"`
	ImageURL       sql.NullString `db:"image_url"`
	Qualifications pq.StringArray `db:"qualifications"`
	OrderIndex     int            `db:"order_index"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r *doctorRow) toEntity() *entities.Doctor {
	quals := []string(r.Qualifications)
	if quals == nil {
		quals = []string{}
	}
	return &entities.Doctor{
		ID:             r.ID,
		Specialty:      entities.Specialty(r.Specialty),
		Name:           r.Name,
		Title:          r.Title.String,
		Bio:            r.Bio.String,
		ImageURL:       r.ImageURL.String,
		Qualifications: quals,
		OrderIndex:     r.OrderIndex,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// DoctorAdapter implements the DoctorRepository interface
type DoctorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(client *postgres.Client) repositories.DoctorRepository {
	return &DoctorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a doctor profile
func (a *DoctorAdapter) Create(ctx context.Context, doctor *entities.Doctor) error {
	record := goqu.Record{
		"id":             doctor.ID,
		"specialty":      string(doctor.Specialty),
		"name":           doctor.Name,
		"title":          doctor.Title,
		"bio":            doctor.Bio,
		"image_url":      doctor.ImageURL,
		"qualifications": pq.StringArray(doctor.Qualifications),
		"order_index":    doctor.OrderIndex,
		"created_at":     doctor.CreatedAt,
		"updated_at":     doctor.UpdatedAt,
	}

	query, args, err := a.db.Insert(doctorsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create doctor", err)
	}
	return nil
}

// GetByID retrieves a doctor by ID
func (a *DoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	query, args, err := a.db.Select(doctorColumns...).
		From(doctorsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var row doctorRow
	err = a.client.DBX().GetContext(ctx, &row, query, args...)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get doctor", err)
	}
	return row.toEntity(), nil
}

// List returns doctors ordered by order_index
func (a *DoctorAdapter) List(ctx context.Context, specialty entities.Specialty) ([]*entities.Doctor, error) {
	ds := a.db.Select(doctorColumns...).From(doctorsTable)
	if specialty != "" {
		ds = ds.Where(goqu.Ex{"specialty": string(specialty)})
	}

	query, args, err := ds.Order(goqu.I("order_index").Asc(), goqu.I("created_at").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.selectDoctors(ctx, query, args...)
}

// Update overwrites a doctor's editable fields
func (a *DoctorAdapter) Update(ctx context.Context, doctor *entities.Doctor) error {
	doctor.UpdatedAt = time.Now()

	query, args, err := a.db.Update(doctorsTable).
		Set(goqu.Record{
			"specialty":      string(doctor.Specialty),
			"name":           doctor.Name,
			"title":          doctor.Title,
			"bio":            doctor.Bio,
			"image_url":      doctor.ImageURL,
			"qualifications": pq.StringArray(doctor.Qualifications),
			"updated_at":     doctor.UpdatedAt,
		}).
		Where(goqu.Ex{"id": doctor.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update doctor", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", doctor.ID))
	}
	return nil
}

// SwapOrder writes both doctors' order_index in one transaction
func (a *DoctorAdapter) SwapOrder(ctx context.Context, first, second *entities.Doctor) error {
	now := time.Now()
	return a.client.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, d := range []*entities.Doctor{first, second} {
			if err := updateOrderIndex(ctx, a.db, tx, doctorsTable, "doctor", d.ID, d.OrderIndex, now); err != nil {
				return err
			}
			d.UpdatedAt = now
		}
		return nil
	})
}

// Delete removes a doctor
func (a *DoctorAdapter) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, a.db, a.client, doctorsTable, "doctor", id)
}

// SearchText matches name/title/bio with a case-insensitive substring
func (a *DoctorAdapter) SearchText(ctx context.Context, q string, limit int) ([]*entities.Doctor, error) {
	pattern := "%" + q + "%"
	query, args, err := a.db.Select(doctorColumns...).
		From(doctorsTable).
		Where(goqu.Or(
			goqu.C("name").ILike(pattern),
			goqu.C("title").ILike(pattern),
			goqu.C("bio").ILike(pattern),
		)).
		Order(goqu.I("order_index").Asc()).
		Limit(uint(clampLimit(limit))).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build search query", err)
	}
	return a.selectDoctors(ctx, query, args...)
}

func (a *DoctorAdapter) selectDoctors(ctx context.Context, query string, args ...interface{}) ([]*entities.Doctor, error) {
	var rows []doctorRow
	if err := a.client.DBX().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list doctors", err)
	}
	doctors := make([]*entities.Doctor, 0, len(rows))
	for i := range rows {
		doctors = append(doctors, rows[i].toEntity())
	}
	return doctors, nil
}
