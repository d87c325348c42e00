package entities

import (
	"time"

	"github.com/zatekoja/clinic-site/pkg/dates"
)

// StatusDot is one coloured indicator on a calendar day.
type StatusDot struct {
	Status AppointmentStatus `json:"status"`
	Color  string            `json:"color"`
	Count  int               `json:"count"`
}

// CalendarDay summarises one day of the admin calendar.
type CalendarDay struct {
	Date    dates.Date                `json:"date"`
	Total   int                       `json:"total"`
	Counts  map[AppointmentStatus]int `json:"counts"`
	Dots    []StatusDot               `json:"dots"`
	Holiday *Holiday                  `json:"holiday,omitempty"`
}

// CalendarMonth is the admin calendar for one month and doctor filter.
type CalendarMonth struct {
	Year   int            `json:"year"`
	Month  time.Month     `json:"month"`
	Doctor string         `json:"doctor,omitempty"`
	Days   []*CalendarDay `json:"days"`
}

// Dashboard is the admin landing summary.
type Dashboard struct {
	Totals           map[AppointmentStatus]int `json:"totals"`
	Total            int                       `json:"total"`
	Today            []*Appointment            `json:"today"`
	Upcoming         []*Appointment            `json:"upcoming"`
	UpcomingHolidays []*Holiday                `json:"upcoming_holidays"`
	GeneratedAt      time.Time                 `json:"generated_at"`
}

// ExportBundle is everything the data export writes.
type ExportBundle struct {
	From         dates.Date      `json:"from"`
	To           dates.Date      `json:"to"`
	Appointments []*Appointment  `json:"appointments"`
	Holidays     []*Holiday      `json:"holidays"`
	Blocks       []*ContentBlock `json:"content_blocks"`
	GeneratedAt  time.Time       `json:"generated_at"`
}
