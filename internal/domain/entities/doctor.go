package entities

import "time"

// Doctor is a profile shown on a specialty's doctor page.
type Doctor struct {
	ID             string    `json:"id" db:"id"`
	Specialty      Specialty `json:"specialty" db:"specialty"`
	Name           string    `json:"name" db:"name"`
	Title          string    `json:"title" db:"title"`
	Bio            string    `json:"bio" db:"bio"`
	ImageURL       string    `json:"image_url" db:"image_url"`
	Qualifications []string  `json:"qualifications" db:"qualifications"`
	OrderIndex     int       `json:"order_index" db:"order_index"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

func (d *Doctor) GetID() string         { return d.ID }
func (d *Doctor) GetOrderIndex() int    { return d.OrderIndex }
func (d *Doctor) SetOrderIndex(idx int) { d.OrderIndex = idx }

// DoctorPatch is a partial doctor update; nil fields are left unchanged.
type DoctorPatch struct {
	Specialty      *Specialty `json:"specialty,omitempty"`
	Name           *string    `json:"name,omitempty"`
	Title          *string    `json:"title,omitempty"`
	Bio            *string    `json:"bio,omitempty"`
	ImageURL       *string    `json:"image_url,omitempty"`
	Qualifications []string   `json:"qualifications,omitempty"`
}

// Apply copies the set fields onto d.
func (p DoctorPatch) Apply(d *Doctor) {
	if p.Specialty != nil {
		d.Specialty = *p.Specialty
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Bio != nil {
		d.Bio = *p.Bio
	}
	if p.ImageURL != nil {
		d.ImageURL = *p.ImageURL
	}
	if p.Qualifications != nil {
		d.Qualifications = p.Qualifications
	}
}
