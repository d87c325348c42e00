// Package dates provides a civil calendar date used for appointments and
// holidays, plus parsing of the legacy text formats those dates were stored in.
package dates

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// ISOLayout is the canonical storage and wire layout.
	ISOLayout = "2006-01-02"
	// MediumLayout renders "April 18, 2025".
	MediumLayout = "January 2, 2006"
)

// ordinalSuffix matches the "18th" in "April 18th, 2025".
var ordinalSuffix = regexp.MustCompile(`\b(\d{1,2})(st|nd|rd|th)\b`)

// Date is a calendar day with no time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New builds a Date, normalising out-of-range values the way time.Date does.
func New(year int, month time.Month, day int) Date {
	return Of(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Of returns the calendar day of t in t's location.
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in loc.
func Today(loc *time.Location) Date {
	return Of(time.Now().In(loc))
}

// Parse accepts "2025-04-18", "April 18th, 2025", "April 18, 2025" and RFC3339
// timestamps.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}

	if t, err := time.Parse(ISOLayout, s); err == nil {
		return Of(t), nil
	}

	normalized := ordinalSuffix.ReplaceAllString(s, "$1")
	for _, layout := range []string{MediumLayout, "January 2 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, normalized); err == nil {
			return Of(t), nil
		}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Of(t), nil
	}

	return Date{}, fmt.Errorf("unrecognised date %q", s)
}

// MustParse is Parse for literals; it panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// String renders the ISO form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Medium renders "April 18, 2025".
func (d Date) Medium() string {
	return d.Time(time.UTC).Format(MediumLayout)
}

// Long renders "April 18th, 2025".
func (d Date) Long() string {
	return fmt.Sprintf("%s %d%s, %d", d.Month, d.Day, ordinal(d.Day), d.Year)
}

// Formats lists every text form this date may have been stored as.
func (d Date) Formats() []string {
	return []string{d.String(), d.Long(), d.Medium()}
}

func ordinal(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.compare(other) < 0
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.compare(other) > 0
}

// Equal reports whether both are the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.compare(other) == 0
}

func (d Date) compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return d.Year - other.Year
	case d.Month != other.Month:
		return int(d.Month) - int(other.Month)
	default:
		return d.Day - other.Day
	}
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return New(d.Year, d.Month, d.Day+n)
}

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

// DaysInMonth returns the number of days in d's month.
func (d Date) DaysInMonth() int {
	return time.Date(d.Year, d.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MarshalJSON renders the ISO form.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts any format Parse accepts.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer for DATE columns.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = Of(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into dates.Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) >= len(ISOLayout) {
		if t, err := time.Parse(ISOLayout, s[:len(ISOLayout)]); err == nil {
			*d = Of(t)
			return nil
		}
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
