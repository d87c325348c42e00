package entities

import (
	"fmt"
	"strings"
)

// Specialty is one of the clinic's two verticals.
type Specialty string

const (
	SpecialtyEyecare    Specialty = "eyecare"
	SpecialtyGynecology Specialty = "gynecology"
)

// Specialties lists every known specialty in display order.
func Specialties() []Specialty {
	return []Specialty{SpecialtyEyecare, SpecialtyGynecology}
}

// Valid reports whether s is a known specialty.
func (s Specialty) Valid() bool {
	return s == SpecialtyEyecare || s == SpecialtyGynecology
}

// ParseSpecialty accepts the canonical names case-insensitively.
func ParseSpecialty(value string) (Specialty, error) {
	s := Specialty(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown specialty %q", value)
	}
	return s, nil
}

// DisplayName is the department name shown to patients.
func (s Specialty) DisplayName() string {
	switch s {
	case SpecialtyEyecare:
		return "Eye Care"
	case SpecialtyGynecology:
		return "Gynecology"
	default:
		return string(s)
	}
}
