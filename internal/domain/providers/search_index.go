package providers

import (
	"context"

	"github.com/zatekoja/clinic-site/internal/domain/entities"
)

// ContentDocument is the flattened search document for a block or doctor.
type ContentDocument struct {
	ID        string
	Kind      entities.ContentKind
	Page      string
	Path      string
	Section   string
	Specialty string
	Title     string
	Body      string
	UpdatedAt int64
}

// SearchIndex is the full-text index behind site search.
type SearchIndex interface {
	EnsureCollection(ctx context.Context) error
	Index(ctx context.Context, doc ContentDocument) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]*entities.SearchHit, error)
}
