package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/ordering"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

// NewBlockInput is the payload of "Add Block"
type NewBlockInput struct {
	Section   string                 `json:"section"`
	Specialty string                 `json:"specialty"`
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	ImageURL  string                 `json:"image_url"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// ContentService handles the editable content blocks of every page
type ContentService struct {
	repo  repositories.ContentBlockRepository
	media providers.MediaStorage
	feed  changeFeed
}

// NewContentService creates a new content service. bus, index and media may be nil.
func NewContentService(repo repositories.ContentBlockRepository, bus providers.EventBus, index providers.SearchIndex, media providers.MediaStorage) *ContentService {
	return &ContentService{
		repo:  repo,
		media: media,
		feed:  changeFeed{bus: bus, index: index},
	}
}

func validatePage(page string) error {
	if !entities.KnownPage(page) {
		return apperrors.NewValidationError(fmt.Sprintf("unknown page %q", page))
	}
	return nil
}

// ListBlocks returns a page's blocks sorted by order_index
func (s *ContentService) ListBlocks(ctx context.Context, page string, filter repositories.ContentBlockFilter) ([]*entities.ContentBlock, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	blocks, err := s.repo.ListByPage(ctx, page, filter)
	if err != nil {
		return nil, err
	}
	ordering.Sort(blocks)
	return blocks, nil
}

// GetBlock returns one block
func (s *ContentService) GetBlock(ctx context.Context, id string) (*entities.ContentBlock, error) {
	return s.repo.GetByID(ctx, id)
}

// AddBlock appends a block to the end of the page
func (s *ContentService) AddBlock(ctx context.Context, page string, input NewBlockInput) (*entities.ContentBlock, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	section := strings.TrimSpace(input.Section)
	if section == "" {
		return nil, apperrors.NewValidationError("section is required")
	}
	if input.Specialty != "" {
		if _, err := entities.ParseSpecialty(input.Specialty); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	max, ok, err := s.repo.MaxOrderIndex(ctx, page)
	if err != nil {
		return nil, err
	}
	next := 0
	if ok {
		next = max + 1
	}

	now := time.Now()
	block := &entities.ContentBlock{
		ID:         uuid.New().String(),
		Page:       page,
		Section:    section,
		Specialty:  strings.ToLower(strings.TrimSpace(input.Specialty)),
		Name:       newBlockName(),
		Title:      input.Title,
		Content:    input.Content,
		ImageURL:   input.ImageURL,
		OrderIndex: next,
		Metadata:   input.Metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, block); err != nil {
		return nil, err
	}

	s.feed.publish(ctx, page, entities.ContentKindBlock, block.ID, entities.ContentEventCreated, nil)
	s.feed.indexDocument(ctx, providers.BlockDocument(block))
	return block, nil
}

// UpdateBlock applies a partial update
func (s *ContentService) UpdateBlock(ctx context.Context, id string, patch entities.ContentBlockPatch) (*entities.ContentBlock, error) {
	if patch.IsEmpty() {
		return nil, apperrors.NewValidationError("no fields to update")
	}
	if problems := patch.Validate(); len(problems) > 0 {
		return nil, apperrors.NewValidationError(strings.Join(problems, "; "))
	}
	if patch.Specialty != nil {
		// Stored lowercase so specialty filters and pages match.
		canonical := strings.TrimSpace(*patch.Specialty)
		if canonical != "" {
			parsed, err := entities.ParseSpecialty(canonical)
			if err != nil {
				return nil, apperrors.NewValidationError(err.Error())
			}
			canonical = string(parsed)
		}
		patch.Specialty = &canonical
	}

	block, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.feed.publish(ctx, block.Page, entities.ContentKindBlock, block.ID, entities.ContentEventUpdated, patch.Fields())
	s.feed.indexDocument(ctx, providers.BlockDocument(block))
	return block, nil
}

// DeleteBlock removes a block; siblings keep their order_index
func (s *ContentService) DeleteBlock(ctx context.Context, id string) error {
	block, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.feed.publish(ctx, block.Page, entities.ContentKindBlock, id, entities.ContentEventDeleted, nil)
	s.feed.removeDocument(ctx, id)
	return nil
}

// ReorderBlock swaps the block with its neighbour and returns the page re-sorted
func (s *ContentService) ReorderBlock(ctx context.Context, id string, dir ordering.Direction) ([]*entities.ContentBlock, error) {
	block, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	siblings, err := s.repo.ListByPage(ctx, block.Page, repositories.ContentBlockFilter{})
	if err != nil {
		return nil, err
	}

	swap, err := ordering.Move(siblings, id, dir)
	if errors.Is(err, ordering.ErrItemNotFound) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("content block with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to reorder", err)
	}
	if !swap.Changed {
		return siblings, nil
	}

	if err := s.repo.SwapOrder(ctx, swap.Moved, swap.Neighbor); err != nil {
		return nil, err
	}

	s.feed.publish(ctx, block.Page, entities.ContentKindBlock, id, entities.ContentEventReordered, map[string]interface{}{
		"direction": string(dir),
		"swapped":   swap.Neighbor.ID,
	})
	return siblings, nil
}

// UploadBlockImage stores an image and points the block at it
func (s *ContentService) UploadBlockImage(ctx context.Context, id, filename, contentType string, r io.Reader) (*entities.ContentBlock, error) {
	if s.media == nil {
		return nil, apperrors.NewInternalError("media storage not configured", nil)
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	stored, err := s.media.Save(ctx, filename, contentType, r)
	if err != nil {
		return nil, err
	}
	url := stored.URL
	block, err := s.UpdateBlock(ctx, id, entities.ContentBlockPatch{ImageURL: &url})
	if err != nil {
		_ = s.media.Delete(ctx, stored.Key)
		return nil, err
	}
	return block, nil
}

// Reindex pushes every block into the search index
func (s *ContentService) Reindex(ctx context.Context) (int, error) {
	if s.feed.index == nil {
		return 0, nil
	}
	blocks, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	indexed := 0
	for _, b := range blocks {
		if err := s.feed.index.Index(ctx, providers.BlockDocument(b)); err != nil {
			return indexed, apperrors.NewExternalError("failed to index content block", err)
		}
		indexed++
	}
	return indexed, nil
}

func newBlockName() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "block-" + uuid.New().String()[:8]
	}
	return "block-" + hex.EncodeToString(buf)
}
