package entities

import (
	"strings"
	"time"

	"github.com/zatekoja/clinic-site/pkg/dates"
)

// HolidayType records where a holiday came from.
type HolidayType string

const (
	HolidayTypeNational HolidayType = "national"
	HolidayTypeDoctor   HolidayType = "doctor"
	HolidayTypeManual   HolidayType = "manual"
	HolidayTypeAPI      HolidayType = "api"
)

// Valid reports whether t is a known holiday type.
func (t HolidayType) Valid() bool {
	switch t {
	case HolidayTypeNational, HolidayTypeDoctor, HolidayTypeManual, HolidayTypeAPI:
		return true
	}
	return false
}

// AllDoctors is the doctor filter value that selects every doctor.
const AllDoctors = "all"

// SelectsAllDoctors reports whether a doctor filter matches every doctor.
func SelectsAllDoctors(doctor string) bool {
	doctor = strings.TrimSpace(doctor)
	return doctor == "" || strings.EqualFold(doctor, AllDoctors)
}

// Holiday marks a date as unavailable for booking, clinic-wide or for one doctor.
type Holiday struct {
	ID          string      `json:"id" db:"id"`
	Date        dates.Date  `json:"date" db:"date"`
	Name        string      `json:"name" db:"name"`
	Type        HolidayType `json:"type" db:"type"`
	Doctor      string      `json:"doctor,omitempty" db:"doctor"`
	Description string      `json:"description" db:"description"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// ClinicWide reports whether the holiday applies to every doctor.
func (h *Holiday) ClinicWide() bool {
	return strings.TrimSpace(h.Doctor) == ""
}

// AppliesTo reports whether the holiday blocks bookings for the selected doctor.
// An empty selection or AllDoctors matches every holiday.
func (h *Holiday) AppliesTo(doctor string) bool {
	if h.ClinicWide() {
		return true
	}
	if SelectsAllDoctors(doctor) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(h.Doctor), strings.TrimSpace(doctor))
}

// Reason is the message shown when the holiday rejects a date.
func (h *Holiday) Reason() string {
	if strings.TrimSpace(h.Description) != "" {
		return h.Description
	}
	return h.Name
}

// BlockingHoliday returns the first holiday in the list that falls on day and
// applies to doctor, or nil when the date is available.
func BlockingHoliday(holidays []*Holiday, day dates.Date, doctor string) *Holiday {
	for _, h := range holidays {
		if h == nil || !h.Date.Equal(day) {
			continue
		}
		if h.AppliesTo(doctor) {
			return h
		}
	}
	return nil
}

// DateCheck is the outcome of checking a date against the holiday list.
type DateCheck struct {
	Date      dates.Date `json:"date"`
	Available bool       `json:"available"`
	Reason    string     `json:"reason,omitempty"`
	Holiday   *Holiday   `json:"holiday,omitempty"`
}

// HolidayFilter narrows a holiday listing. Zero values are ignored.
type HolidayFilter struct {
	From   dates.Date
	To     dates.Date
	Doctor string
	Type   HolidayType
}
