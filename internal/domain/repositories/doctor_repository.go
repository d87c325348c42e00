package repositories

import (
	"context"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
)

// DoctorRepository defines the interface for doctor profile data operations
type DoctorRepository interface {
	Create(ctx context.Context, doctor *entities.Doctor) error
	GetByID(ctx context.Context, id string) (*entities.Doctor, error)
	// List returns doctors ordered by order_index; an empty specialty lists all
	List(ctx context.Context, specialty entities.Specialty) ([]*entities.Doctor, error)
	Update(ctx context.Context, doctor *entities.Doctor) error
	SwapOrder(ctx context.Context, a, b *entities.Doctor) error
	Delete(ctx context.Context, id string) error
	SearchText(ctx context.Context, query string, limit int) ([]*entities.Doctor, error)
}
