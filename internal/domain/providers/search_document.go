package providers

import (
	"strings"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
)

// BlockDocument flattens a content block for indexing.
func BlockDocument(block *entities.ContentBlock) ContentDocument {
	path := "/"
	if r, ok := entities.LookupPage(block.Page); ok {
		path = r.Path
	}
	title := block.Title
	if title == "" {
		title = block.Name
	}
	return ContentDocument{
		ID:        block.ID,
		Kind:      entities.ContentKindBlock,
		Page:      block.Page,
		Path:      path,
		Section:   block.Section,
		Specialty: block.Specialty,
		Title:     title,
		Body:      StripTags(block.Content),
		UpdatedAt: block.UpdatedAt.Unix(),
	}
}

// DoctorDocument flattens a doctor profile for indexing.
func DoctorDocument(doctor *entities.Doctor) ContentDocument {
	page := string(doctor.Specialty) + "-doctor"
	path := "/"
	if r, ok := entities.LookupPage(page); ok {
		path = r.Path
	}
	body := strings.TrimSpace(doctor.Title + " " + StripTags(doctor.Bio) + " " + strings.Join(doctor.Qualifications, ", "))
	return ContentDocument{
		ID:        doctor.ID,
		Kind:      entities.ContentKindDoctor,
		Page:      page,
		Path:      path,
		Specialty: string(doctor.Specialty),
		Title:     doctor.Name,
		Body:      body,
		UpdatedAt: doctor.UpdatedAt.Unix(),
	}
}

// Snippet trims text to at most n runes on a word boundary.
func Snippet(text string, n int) string {
	text = strings.Join(strings.Fields(StripTags(text)), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "…"
}

// StripTags drops HTML markup left by the rich-text editors.
func StripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
