package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
)

// Cache key families dropped when content changes
const (
	HTTPCachePattern = "http:cache:*"
	blockKeyFormat   = "content:block:%s"
	pageKeyPattern   = "content:page:%s:*"
)

// CacheInvalidationService handles cache invalidation based on events
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelContentUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to content updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Msg("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service and waits for the loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	<-s.done
	log.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.ContentEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.HandleEvent(event)
		}
	}
}

// HandleEvent drops every cached entry the event can make stale. Rendered
// pages embed global blocks and doctors, so all cached responses go.
func (s *CacheInvalidationService) HandleEvent(event *entities.ContentEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := log.With().
		Str("event_id", event.ID).
		Str("page", event.Page).
		Str("kind", string(event.Kind)).
		Str("entity_id", event.EntityID).
		Logger()

	patterns := []string{HTTPCachePattern}
	if event.Page != "" {
		patterns = append(patterns, fmt.Sprintf(pageKeyPattern, event.Page))
	}
	for _, pattern := range patterns {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			logger.Warn().Err(err).Str("pattern", pattern).Msg("Failed to invalidate cache pattern")
		}
	}

	if event.Kind == entities.ContentKindBlock && event.EntityID != "" {
		if err := s.cache.Delete(ctx, fmt.Sprintf(blockKeyFormat, event.EntityID)); err != nil {
			logger.Warn().Err(err).Msg("Failed to invalidate block cache")
		}
	}
	logger.Debug().Msg("Invalidated caches for content event")
}

// InvalidateAll drops every cached response and content listing
func (s *CacheInvalidationService) InvalidateAll(ctx context.Context) error {
	for _, pattern := range []string{HTTPCachePattern, "content:*"} {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
		}
	}
	return nil
}
