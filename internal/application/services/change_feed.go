package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
)

// changeFeed fans a content mutation out to realtime subscribers and the
// search index. Both sides are optional and failures are only logged: the
// write has already been committed.
type changeFeed struct {
	bus   providers.EventBus
	index providers.SearchIndex
}

func (f changeFeed) publish(ctx context.Context, page string, kind entities.ContentKind, id string, eventType entities.ContentEventType, changed map[string]interface{}) {
	if f.bus == nil {
		return
	}
	event := entities.NewContentEvent(page, kind, id, eventType, changed)
	if err := providers.PublishContentEvent(ctx, f.bus, event); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("page", page).Str("entity_id", id).Msg("Failed to publish content event")
	}
}

func (f changeFeed) indexDocument(ctx context.Context, doc providers.ContentDocument) {
	if f.index == nil {
		return
	}
	if err := f.index.Index(ctx, doc); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("id", doc.ID).Msg("Failed to index content")
	}
}

func (f changeFeed) removeDocument(ctx context.Context, id string) {
	if f.index == nil {
		return
	}
	if err := f.index.Delete(ctx, id); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("id", id).Msg("Failed to remove content from index")
	}
}
