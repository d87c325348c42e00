package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
)

// CacheWarmingService preloads the block lists of every content page so the
// first visitor after a deploy or a flush is served from cache.
type CacheWarmingService struct {
	blocks repositories.ContentBlockRepository
}

// NewCacheWarmingService expects the cached block repository; warming the
// plain database adapter is harmless but pointless.
func NewCacheWarmingService(blocks repositories.ContentBlockRepository) *CacheWarmingService {
	return &CacheWarmingService{blocks: blocks}
}

// WarmCache loads every content page in one batch and returns how many
// blocks were cached.
func (s *CacheWarmingService) WarmCache(ctx context.Context) (int, error) {
	start := time.Now()
	pages := ContentPages()

	byPage, err := s.blocks.ListByPages(ctx, pages)
	if err != nil {
		return 0, fmt.Errorf("failed to warm content pages: %w", err)
	}

	total := 0
	for _, blocks := range byPage {
		total += len(blocks)
	}
	log.Ctx(ctx).Info().
		Int("pages", len(pages)).
		Int("blocks", total).
		Dur("took", time.Since(start)).
		Msg("Content cache warmed")
	return total, nil
}

// ContentPages lists the page keys editors can hold blocks under, global first.
func ContentPages() []string {
	pages := []string{entities.GlobalPage}
	for _, r := range entities.SiteRoutes() {
		if r.IsPublic() {
			pages = append(pages, r.Page)
		}
	}
	return pages
}
