package holidays

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
)

// ProviderConfig configures the holiday provider.
type ProviderConfig struct {
	APIURL              string
	CountryCode         string
	AllowStaticFallback bool
}

// NewHolidayProvider returns the remote provider, wrapped with the static
// fallback when allowed. Without an API URL the static provider is used.
func NewHolidayProvider(cfg ProviderConfig) providers.HolidayProvider {
	if cfg.APIURL == "" {
		return NewStaticAdapter()
	}

	primary := NewNagerAdapter(cfg.APIURL, cfg.CountryCode)
	if !cfg.AllowStaticFallback {
		return primary
	}
	return &FallbackProvider{primary: primary, fallback: NewStaticAdapter()}
}

// FallbackProvider wraps a primary provider with a fallback.
type FallbackProvider struct {
	primary  providers.HolidayProvider
	fallback providers.HolidayProvider
}

// Name identifies the provider in logs
func (p *FallbackProvider) Name() string {
	return p.primary.Name() + "+" + p.fallback.Name()
}

// PublicHolidays asks the primary and falls back on error.
func (p *FallbackProvider) PublicHolidays(ctx context.Context, year int) ([]*entities.Holiday, error) {
	holidays, err := p.primary.PublicHolidays(ctx, year)
	if err == nil {
		return holidays, nil
	}
	log.Warn().Err(err).Str("provider", p.primary.Name()).Int("year", year).Msg("Holiday provider failed, using fallback")
	return p.fallback.PublicHolidays(ctx, year)
}
