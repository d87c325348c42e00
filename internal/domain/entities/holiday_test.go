package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/clinic-site/pkg/dates"
)

func TestBlockingHoliday_ClinicWideBlocksEveryFilter(t *testing.T) {
	day := dates.New(2025, time.August, 15)

	for _, typ := range []HolidayType{HolidayTypeManual, HolidayTypeNational, HolidayTypeAPI} {
		holidays := []*Holiday{{ID: "h1", Date: day, Name: "Independence Day", Type: typ}}
		for _, doctor := range []string{"", AllDoctors, "Dr. Rao", "Dr. Mehta"} {
			assert.NotNil(t, BlockingHoliday(holidays, day, doctor), "type=%s doctor=%q", typ, doctor)
		}
	}
}

func TestBlockingHoliday_DoctorScoped(t *testing.T) {
	day := dates.New(2025, time.March, 3)
	holidays := []*Holiday{{ID: "h1", Date: day, Name: "Leave", Type: HolidayTypeDoctor, Doctor: "Dr. Rao"}}

	assert.NotNil(t, BlockingHoliday(holidays, day, "Dr. Rao"))
	assert.NotNil(t, BlockingHoliday(holidays, day, "dr. rao"))
	assert.NotNil(t, BlockingHoliday(holidays, day, AllDoctors))
	assert.NotNil(t, BlockingHoliday(holidays, day, ""))
	assert.Nil(t, BlockingHoliday(holidays, day, "Dr. Mehta"))
}

func TestSelectsAllDoctors(t *testing.T) {
	for _, doctor := range []string{"", "  ", "all", "All", " ALL "} {
		assert.True(t, SelectsAllDoctors(doctor), "doctor=%q", doctor)
	}
	assert.False(t, SelectsAllDoctors("Dr. Rao"))
	assert.False(t, SelectsAllDoctors("allen"))
}

func TestBlockingHoliday_OtherDayIsAvailable(t *testing.T) {
	holidays := []*Holiday{{Date: dates.New(2025, time.March, 3), Name: "Holi"}}
	assert.Nil(t, BlockingHoliday(holidays, dates.New(2025, time.March, 4), ""))
	assert.Nil(t, BlockingHoliday(nil, dates.New(2025, time.March, 4), ""))
}

func TestHolidayReason(t *testing.T) {
	h := &Holiday{Name: "Diwali"}
	assert.Equal(t, "Diwali", h.Reason())

	h.Description = "Clinic closed for Diwali"
	assert.Equal(t, "Clinic closed for Diwali", h.Reason())
}

func TestAppointmentStatus(t *testing.T) {
	assert.True(t, AppointmentStatusPending.Valid())
	assert.False(t, AppointmentStatus("archived").Valid())
	assert.Equal(t, "amber", AppointmentStatusPending.Color())
	assert.Equal(t, "green", AppointmentStatusConfirmed.Color())
	assert.Equal(t, "blue", AppointmentStatusCompleted.Color())
	assert.Equal(t, "red", AppointmentStatusCancelled.Color())
}

func TestLookupRoute(t *testing.T) {
	r, ok := LookupRoute("/eyecare/doctor/")
	assert.True(t, ok)
	assert.Equal(t, "eyecare-doctor", r.Page)
	assert.Equal(t, SpecialtyEyecare, r.Specialty)
	assert.True(t, r.IsPublic())

	r, ok = LookupRoute("/admin/dashboard")
	assert.True(t, ok)
	assert.True(t, r.RequiresAuth)
	assert.False(t, r.IsPublic())

	_, ok = LookupRoute("/nope")
	assert.False(t, ok)

	assert.True(t, KnownPage(GlobalPage))
	assert.True(t, KnownPage("gynecology-health"))
	assert.False(t, KnownPage("admin-dashboard"))
}
