package repositories

import (
	"context"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/pkg/dates"
)

// HolidayRepository defines the interface for holiday data operations
type HolidayRepository interface {
	Create(ctx context.Context, holiday *entities.Holiday) error
	GetByID(ctx context.Context, id string) (*entities.Holiday, error)
	Update(ctx context.Context, holiday *entities.Holiday) error
	Delete(ctx context.Context, id string) error

	// ListByDate returns every holiday on the given day
	ListByDate(ctx context.Context, day dates.Date) ([]*entities.Holiday, error)

	// List returns holidays matching the filter ordered by date
	List(ctx context.Context, filter entities.HolidayFilter) ([]*entities.Holiday, error)

	// Upsert inserts holidays, skipping any (date, name, type) that already exists.
	// It returns the number of rows inserted.
	Upsert(ctx context.Context, holidays []*entities.Holiday) (int, error)
}
