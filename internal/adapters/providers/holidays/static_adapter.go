package holidays

import (
	"context"
	"time"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	"github.com/zatekoja/clinic-site/pkg/dates"
)

// StaticAdapter serves the fixed-date national holidays for local development
// and as a fallback when the remote API is down.
type StaticAdapter struct{}

// NewStaticAdapter creates the fixed-date holiday provider.
func NewStaticAdapter() providers.HolidayProvider {
	return StaticAdapter{}
}

var fixedHolidays = []struct {
	month time.Month
	day   int
	name  string
}{
	{time.January, 26, "Republic Day"},
	{time.August, 15, "Independence Day"},
	{time.October, 2, "Gandhi Jayanti"},
	{time.December, 25, "Christmas Day"},
}

// Name identifies the provider in logs
func (StaticAdapter) Name() string {
	return "static"
}

// PublicHolidays returns the fixed-date holidays of year.
func (StaticAdapter) PublicHolidays(ctx context.Context, year int) ([]*entities.Holiday, error) {
	out := make([]*entities.Holiday, 0, len(fixedHolidays))
	for _, h := range fixedHolidays {
		out = append(out, &entities.Holiday{
			Date:        dates.New(year, h.month, h.day),
			Name:        h.name,
			Type:        entities.HolidayTypeAPI,
			Description: "Clinic closed for " + h.name,
		})
	}
	return out, nil
}
