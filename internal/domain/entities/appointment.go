package entities

import (
	"time"

	"github.com/zatekoja/clinic-site/pkg/dates"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentStatuses lists every status in dashboard order.
func AppointmentStatuses() []AppointmentStatus {
	return []AppointmentStatus{
		AppointmentStatusPending,
		AppointmentStatusConfirmed,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
	}
}

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Color is the calendar indicator colour for the status.
func (s AppointmentStatus) Color() string {
	switch s {
	case AppointmentStatusPending:
		return "amber"
	case AppointmentStatusConfirmed:
		return "green"
	case AppointmentStatusCompleted:
		return "blue"
	case AppointmentStatusCancelled:
		return "red"
	default:
		return "gray"
	}
}

// Appointment is a booking request submitted from a specialty appointment page.
type Appointment struct {
	ID             string            `json:"id" db:"id"`
	FirstName      string            `json:"first_name" db:"first_name"`
	LastName       string            `json:"last_name" db:"last_name"`
	Email          string            `json:"email" db:"email"`
	Phone          string            `json:"phone" db:"phone"`
	Date           dates.Date        `json:"date" db:"date"`
	Time           string            `json:"time" db:"time"`
	Specialty      Specialty         `json:"specialty" db:"specialty"`
	Reason         string            `json:"reason" db:"reason"`
	Doctor         string            `json:"doctor" db:"doctor"`
	Clinic         string            `json:"clinic" db:"clinic"`
	Status         AppointmentStatus `json:"status" db:"status"`
	Age            *int              `json:"age,omitempty" db:"age"`
	Gender         string            `json:"gender" db:"gender"`
	AdditionalInfo string            `json:"additional_info" db:"additional_info"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name.
func (a *Appointment) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// AppointmentFilter narrows an appointment listing. Zero values are ignored.
type AppointmentFilter struct {
	Date      dates.Date
	From      dates.Date
	To        dates.Date
	Status    AppointmentStatus
	Specialty Specialty
	Doctor    string
	Limit     int
	Offset    int
}
