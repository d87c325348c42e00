package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	tsclient "github.com/zatekoja/clinic-site/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements site content search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ providers.SearchIndex = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// EnsureCollection creates the content collection when missing
func (a *TypesenseAdapter) EnsureCollection(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Index upserts a content document
func (a *TypesenseAdapter) Index(ctx context.Context, doc providers.ContentDocument) error {
	_, err := a.client.Client().Collection(tsclient.ContentCollection).Documents().Upsert(ctx, documentFields(doc))
	if err != nil {
		return fmt.Errorf("failed to index %s %s: %w", doc.Kind, doc.ID, err)
	}
	return nil
}

// Delete removes a document from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.ContentCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete %s from index: %w", id, err)
	}
	return nil
}

// Search runs a full-text query over titles and bodies
func (a *TypesenseAdapter) Search(ctx context.Context, query string, limit int) ([]*entities.SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	params := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("title,body"),
		Page:    pointer.Int(1),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(tsclient.ContentCollection).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search content: %w", err)
	}

	hits := []*entities.SearchHit{}
	if result.Hits == nil {
		return hits, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		h := hitFromDocument(*hit.Document)
		if hit.TextMatch != nil {
			h.Score = float64(*hit.TextMatch)
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func documentFields(doc providers.ContentDocument) map[string]interface{} {
	return map[string]interface{}{
		"id":         doc.ID,
		"kind":       string(doc.Kind),
		"page":       doc.Page,
		"path":       doc.Path,
		"section":    doc.Section,
		"specialty":  doc.Specialty,
		"title":      doc.Title,
		"body":       doc.Body,
		"updated_at": doc.UpdatedAt,
	}
}

func hitFromDocument(doc map[string]interface{}) *entities.SearchHit {
	str := func(key string) string {
		if v, ok := doc[key].(string); ok {
			return v
		}
		return ""
	}
	return &entities.SearchHit{
		ID:      str("id"),
		Kind:    entities.ContentKind(str("kind")),
		Page:    str("page"),
		Path:    str("path"),
		Title:   str("title"),
		Snippet: providers.Snippet(str("body"), 160),
	}
}
