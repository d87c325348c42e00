//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinic-site/internal/adapters/cache"
	"github.com/zatekoja/clinic-site/internal/adapters/events"
	"github.com/zatekoja/clinic-site/internal/application/services"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
)

func TestRedisEventBusFanoutIntegration(t *testing.T) {
	requireEnv(t, "TEST_REDIS_HOST")

	redisClient := newTestRedisClient(t)
	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all, err := eventBus.Subscribe(ctx, providers.EventChannelContentUpdates)
	require.NoError(t, err)
	gallery, err := eventBus.Subscribe(ctx, providers.GetPageChannel("gallery"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	event := entities.NewContentEvent("gallery", entities.ContentKindBlock, "b-redis-1", entities.ContentEventUpdated,
		map[string]interface{}{"title": "Our new wing"})
	require.NoError(t, providers.PublishContentEvent(context.Background(), eventBus, event))

	for _, ch := range []<-chan *entities.ContentEvent{all, gallery} {
		received := waitForContentEvent(t, ch)
		assert.Equal(t, event.ID, received.ID)
		assert.Equal(t, "gallery", received.Page)
		assert.Equal(t, "Our new wing", received.ChangedFields["title"])
	}
}

func TestCacheInvalidationIntegration(t *testing.T) {
	requireEnv(t, "TEST_REDIS_HOST")

	redisClient := newTestRedisClient(t)
	cacheProvider := cache.NewRedisAdapter(redisClient)
	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	invalidation := services.NewCacheInvalidationService(cacheProvider, eventBus)
	require.NoError(t, invalidation.Start())
	defer invalidation.Stop()
	time.Sleep(50 * time.Millisecond)

	ctx := context.Background()
	key := "http:cache:integration-test"
	require.NoError(t, cacheProvider.Set(ctx, key, []byte(`{"page":"home"}`), 60))

	event := entities.NewContentEvent("home", entities.ContentKindBlock, "b1", entities.ContentEventDeleted, nil)
	require.NoError(t, providers.PublishContentEvent(ctx, eventBus, event))

	require.Eventually(t, func() bool {
		exists, err := cacheProvider.Exists(ctx, key)
		return err == nil && !exists
	}, 2*time.Second, 20*time.Millisecond)
}

func waitForContentEvent(t *testing.T, ch <-chan *entities.ContentEvent) *entities.ContentEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for content event")
		return nil
	}
}
