package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
)

// CachedContentBlockAdapter wraps a ContentBlockRepository with caching.
// Invalidation runs before the mutating call returns, so a subscriber that
// re-fetches on a content event never reads a stale page.
type CachedContentBlockAdapter struct {
	adapter repositories.ContentBlockRepository
	cache   providers.CacheProvider
}

// NewCachedContentBlockAdapter creates a new cached content block adapter
func NewCachedContentBlockAdapter(adapter repositories.ContentBlockRepository, cache providers.CacheProvider) repositories.ContentBlockRepository {
	return &CachedContentBlockAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	blockByIDTTL  = 300
	pageBlocksTTL = 180
)

// ContentCachePattern matches every key this adapter writes
const ContentCachePattern = "content:*"

func blockCacheKey(id string) string {
	return fmt.Sprintf("content:block:%s", id)
}

func pageBlocksCacheKey(page string, filter repositories.ContentBlockFilter) string {
	return fmt.Sprintf("content:page:%s:%s:%s", page, filter.Section, filter.Specialty)
}

func pageBlocksCachePattern(page string) string {
	return fmt.Sprintf("content:page:%s:*", page)
}

func (a *CachedContentBlockAdapter) readCache(ctx context.Context, key string, dst interface{}) bool {
	cached, err := a.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(cached, dst); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Failed to unmarshal cached content")
		return false
	}
	return true
}

func (a *CachedContentBlockAdapter) writeCache(ctx context.Context, key string, value interface{}, ttl int) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, ttl); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Failed to cache content")
	}
}

func (a *CachedContentBlockAdapter) invalidate(ctx context.Context, page, id string) {
	if id != "" {
		if err := a.cache.Delete(ctx, blockCacheKey(id)); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("block_id", id).Msg("Failed to invalidate block cache")
		}
	}
	if page != "" {
		if err := a.cache.DeletePattern(ctx, pageBlocksCachePattern(page)); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("page", page).Msg("Failed to invalidate page cache")
		}
	}
}

// Create creates a block and invalidates its page
func (a *CachedContentBlockAdapter) Create(ctx context.Context, block *entities.ContentBlock) error {
	if err := a.adapter.Create(ctx, block); err != nil {
		return err
	}
	a.invalidate(ctx, block.Page, "")
	return nil
}

// GetByID retrieves a block by ID with caching
func (a *CachedContentBlockAdapter) GetByID(ctx context.Context, id string) (*entities.ContentBlock, error) {
	key := blockCacheKey(id)
	var block entities.ContentBlock
	if a.readCache(ctx, key, &block) {
		return &block, nil
	}

	found, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.writeCache(ctx, key, found, blockByIDTTL)
	return found, nil
}

// ListByPage retrieves a page's blocks with caching
func (a *CachedContentBlockAdapter) ListByPage(ctx context.Context, page string, filter repositories.ContentBlockFilter) ([]*entities.ContentBlock, error) {
	key := pageBlocksCacheKey(page, filter)
	var blocks []*entities.ContentBlock
	if a.readCache(ctx, key, &blocks) {
		return blocks, nil
	}

	blocks, err := a.adapter.ListByPage(ctx, page, filter)
	if err != nil {
		return nil, err
	}
	a.writeCache(ctx, key, blocks, pageBlocksTTL)
	return blocks, nil
}

// ListByPages serves each page from cache and batches the misses into one query
func (a *CachedContentBlockAdapter) ListByPages(ctx context.Context, pages []string) (map[string][]*entities.ContentBlock, error) {
	result := make(map[string][]*entities.ContentBlock, len(pages))
	missing := make([]string, 0, len(pages))

	for _, page := range pages {
		var blocks []*entities.ContentBlock
		if a.readCache(ctx, pageBlocksCacheKey(page, repositories.ContentBlockFilter{}), &blocks) {
			result[page] = blocks
			continue
		}
		missing = append(missing, page)
	}
	if len(missing) == 0 {
		return result, nil
	}

	fetched, err := a.adapter.ListByPages(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, page := range missing {
		blocks := fetched[page]
		if blocks == nil {
			blocks = []*entities.ContentBlock{}
		}
		result[page] = blocks
		a.writeCache(ctx, pageBlocksCacheKey(page, repositories.ContentBlockFilter{}), blocks, pageBlocksTTL)
	}
	return result, nil
}

// ListAll is not cached
func (a *CachedContentBlockAdapter) ListAll(ctx context.Context) ([]*entities.ContentBlock, error) {
	return a.adapter.ListAll(ctx)
}

// MaxOrderIndex is not cached; Add must see the latest rows
func (a *CachedContentBlockAdapter) MaxOrderIndex(ctx context.Context, page string) (int, bool, error) {
	return a.adapter.MaxOrderIndex(ctx, page)
}

// Update updates a block and invalidates its caches
func (a *CachedContentBlockAdapter) Update(ctx context.Context, id string, patch entities.ContentBlockPatch) (*entities.ContentBlock, error) {
	block, err := a.adapter.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	a.invalidate(ctx, block.Page, id)
	return block, nil
}

// SwapOrder swaps two blocks and invalidates their page
func (a *CachedContentBlockAdapter) SwapOrder(ctx context.Context, x, y *entities.ContentBlock) error {
	if err := a.adapter.SwapOrder(ctx, x, y); err != nil {
		return err
	}
	a.invalidate(ctx, x.Page, x.ID)
	a.invalidate(ctx, "", y.ID)
	if y.Page != x.Page {
		a.invalidate(ctx, y.Page, "")
	}
	return nil
}

// Delete deletes a block and invalidates its caches
func (a *CachedContentBlockAdapter) Delete(ctx context.Context, id string) error {
	page := ""
	if existing, err := a.adapter.GetByID(ctx, id); err == nil {
		page = existing.Page
	}
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx, page, id)
	return nil
}

// SearchText is not cached
func (a *CachedContentBlockAdapter) SearchText(ctx context.Context, query string, limit int) ([]*entities.ContentBlock, error) {
	return a.adapter.SearchText(ctx, query, limit)
}
