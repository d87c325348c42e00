package providers

import (
	"context"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
)

// HolidayProvider fetches public holidays from an external calendar service.
type HolidayProvider interface {
	// PublicHolidays returns the holidays of a year; returned holidays have Type=api
	PublicHolidays(ctx context.Context, year int) ([]*entities.Holiday, error)

	// Name identifies the provider in logs
	Name() string
}
