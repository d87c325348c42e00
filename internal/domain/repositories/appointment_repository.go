package repositories

import (
	"context"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/pkg/dates"
)

// AppointmentRepository defines the interface for appointment data operations
type AppointmentRepository interface {
	// Create creates a new appointment
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment by ID
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// List retrieves appointments matching the filter ordered by date then time
	List(ctx context.Context, filter entities.AppointmentFilter) ([]*entities.Appointment, error)

	// UpdateStatus sets the status of an appointment
	UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error)

	// Delete removes an appointment
	Delete(ctx context.Context, id string) error

	// CountByStatus counts appointments per status within [from, to]; zero dates are open bounds
	CountByStatus(ctx context.Context, from, to dates.Date) (map[entities.AppointmentStatus]int, error)
}
