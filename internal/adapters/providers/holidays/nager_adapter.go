package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	"github.com/zatekoja/clinic-site/pkg/dates"
	"github.com/zatekoja/clinic-site/pkg/retry"
)

// NagerAdapter fetches public holidays from a Nager.Date compatible API.
type NagerAdapter struct {
	baseURL     string
	countryCode string
	client      *http.Client
	retryConfig retry.Config
}

// NewNagerAdapter creates a holiday provider for one country.
func NewNagerAdapter(baseURL, countryCode string) *NagerAdapter {
	return &NagerAdapter{
		baseURL:     strings.TrimRight(baseURL, "/"),
		countryCode: strings.ToUpper(countryCode),
		client:      &http.Client{Timeout: 10 * time.Second},
		retryConfig: retry.OutboundConfig(),
	}
}

var _ providers.HolidayProvider = (*NagerAdapter)(nil)

type nagerHoliday struct {
	Date      string   `json:"date"`
	LocalName string   `json:"localName"`
	Name      string   `json:"name"`
	Global    bool     `json:"global"`
	Counties  []string `json:"counties"`
	Types     []string `json:"types"`
}

// Name identifies the provider in logs
func (a *NagerAdapter) Name() string {
	return "nager"
}

// PublicHolidays returns the country's nationwide holidays for year
func (a *NagerAdapter) PublicHolidays(ctx context.Context, year int) ([]*entities.Holiday, error) {
	url := fmt.Sprintf("%s/PublicHolidays/%d/%s", a.baseURL, year, a.countryCode)

	var payload []nagerHoliday
	err := retry.DoWithLog(ctx, a.retryConfig, "nager", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := a.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNoContent:
			payload = nil
			return nil
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("holiday api error: status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return retry.Permanent(fmt.Errorf("holiday api error: status %d", resp.StatusCode))
		}

		payload = nil
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return retry.Permanent(fmt.Errorf("failed to decode holiday response: %w", err))
		}
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("Holiday API request failed")
	})
	if err != nil {
		return nil, err
	}

	return convertNagerHolidays(payload), nil
}

func convertNagerHolidays(payload []nagerHoliday) []*entities.Holiday {
	out := make([]*entities.Holiday, 0, len(payload))
	for _, h := range payload {
		// Regional holidays do not close the clinic.
		if !h.Global {
			continue
		}
		day, err := dates.Parse(h.Date)
		if err != nil {
			log.Warn().Str("date", h.Date).Str("name", h.Name).Msg("Skipping holiday with unparseable date")
			continue
		}
		description := h.Name
		if h.LocalName != "" && h.LocalName != h.Name {
			description = fmt.Sprintf("%s (%s)", h.Name, h.LocalName)
		}
		out = append(out, &entities.Holiday{
			Date:        day,
			Name:        h.Name,
			Type:        entities.HolidayTypeAPI,
			Description: "Clinic closed for " + description,
		})
	}
	return out
}
