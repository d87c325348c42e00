package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
	snippetLength      = 160

	BackendTypesense = "typesense"
	BackendDatabase  = "database"
)

// SearchService runs site search over blocks and doctor profiles
type SearchService struct {
	index   providers.SearchIndex
	blocks  repositories.ContentBlockRepository
	doctors repositories.DoctorRepository
}

// NewSearchService creates a new search service. index may be nil, in which
// case every query goes to the database.
func NewSearchService(index providers.SearchIndex, blocks repositories.ContentBlockRepository, doctors repositories.DoctorRepository) *SearchService {
	return &SearchService{
		index:   index,
		blocks:  blocks,
		doctors: doctors,
	}
}

// Search queries the full-text index, falling back to a substring match in
// the database when the index is unavailable.
func (s *SearchService) Search(ctx context.Context, query string, limit int) (*entities.SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	if s.index != nil {
		hits, err := s.index.Search(ctx, query, limit)
		if err == nil {
			return &entities.SearchResults{Query: query, Hits: hits, Total: len(hits), Backend: BackendTypesense}, nil
		}
		log.Ctx(ctx).Warn().Err(err).Str("query", query).Msg("Search index unavailable, falling back to database")
	}

	hits, err := s.searchDatabase(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return &entities.SearchResults{Query: query, Hits: hits, Total: len(hits), Backend: BackendDatabase}, nil
}

func (s *SearchService) searchDatabase(ctx context.Context, query string, limit int) ([]*entities.SearchHit, error) {
	blocks, err := s.blocks.SearchText(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	hits := make([]*entities.SearchHit, 0, limit)
	for _, b := range blocks {
		hits = append(hits, documentHit(providers.BlockDocument(b)))
	}

	if s.doctors != nil && len(hits) < limit {
		doctors, err := s.doctors.SearchText(ctx, query, limit-len(hits))
		if err != nil {
			return nil, err
		}
		for _, d := range doctors {
			hits = append(hits, documentHit(providers.DoctorDocument(d)))
		}
	}
	return hits, nil
}

func documentHit(doc providers.ContentDocument) *entities.SearchHit {
	return &entities.SearchHit{
		ID:      doc.ID,
		Kind:    doc.Kind,
		Page:    doc.Page,
		Path:    doc.Path,
		Title:   doc.Title,
		Snippet: providers.Snippet(doc.Body, snippetLength),
	}
}
