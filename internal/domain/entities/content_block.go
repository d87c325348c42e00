package entities

import (
	"strings"
	"time"
)

// Well-known content sections shared by the page editors.
const (
	SectionHero         = "hero"
	SectionAbout        = "about"
	SectionServices     = "services"
	SectionConditions   = "conditions"
	SectionProcedures   = "procedures"
	SectionFAQ          = "faq"
	SectionTestimonials = "testimonials"
	SectionInsurance    = "insurance"
	SectionGallery      = "gallery"
	SectionContact      = "contact"
	SectionFooter       = "footer"
)

// GlobalPage holds blocks rendered on every public page (footer, contact).
const GlobalPage = "global"

// ContentBlock is a named, ordered unit of editable text/image content.
type ContentBlock struct {
	ID         string                 `json:"id" db:"id"`
	Page       string                 `json:"page" db:"page"`
	Section    string                 `json:"section" db:"section"`
	Specialty  string                 `json:"specialty,omitempty" db:"specialty"`
	Name       string                 `json:"name" db:"name"`
	Title      string                 `json:"title" db:"title"`
	Content    string                 `json:"content" db:"content"`
	ImageURL   string                 `json:"image_url" db:"image_url"`
	OrderIndex int                    `json:"order_index" db:"order_index"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at" db:"updated_at"`
}

func (b *ContentBlock) GetID() string         { return b.ID }
func (b *ContentBlock) GetOrderIndex() int    { return b.OrderIndex }
func (b *ContentBlock) SetOrderIndex(idx int) { b.OrderIndex = idx }

// ContentBlockPatch carries a partial update; nil fields are left unchanged.
type ContentBlockPatch struct {
	Section   *string                `json:"section,omitempty"`
	Specialty *string                `json:"specialty,omitempty"`
	Name      *string                `json:"name,omitempty"`
	Title     *string                `json:"title,omitempty"`
	Content   *string                `json:"content,omitempty"`
	ImageURL  *string                `json:"image_url,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ContentBlockPatch) IsEmpty() bool {
	return p.Section == nil && p.Specialty == nil && p.Name == nil && p.Title == nil &&
		p.Content == nil && p.ImageURL == nil && p.Metadata == nil
}

// Validate applies the per-field presence checks of the editors.
func (p ContentBlockPatch) Validate() []string {
	var problems []string
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		problems = append(problems, "title is required")
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.Section != nil && strings.TrimSpace(*p.Section) == "" {
		problems = append(problems, "section is required")
	}
	return problems
}

// Apply copies the set fields onto b.
func (p ContentBlockPatch) Apply(b *ContentBlock) {
	if p.Section != nil {
		b.Section = *p.Section
	}
	if p.Specialty != nil {
		b.Specialty = *p.Specialty
	}
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Content != nil {
		b.Content = *p.Content
	}
	if p.ImageURL != nil {
		b.ImageURL = *p.ImageURL
	}
	if p.Metadata != nil {
		b.Metadata = p.Metadata
	}
}

// Fields returns the column/value pairs the patch sets.
func (p ContentBlockPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Section != nil {
		fields["section"] = *p.Section
	}
	if p.Specialty != nil {
		fields["specialty"] = *p.Specialty
	}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Content != nil {
		fields["content"] = *p.Content
	}
	if p.ImageURL != nil {
		fields["image_url"] = *p.ImageURL
	}
	if p.Metadata != nil {
		fields["metadata"] = p.Metadata
	}
	return fields
}
