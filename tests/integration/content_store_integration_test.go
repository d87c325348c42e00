//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinic-site/internal/adapters/database"
	"github.com/zatekoja/clinic-site/internal/adapters/events"
	"github.com/zatekoja/clinic-site/internal/application/services"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/ordering"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
)

func TestContentService_OrderingIntegration(t *testing.T) {
	requireEnv(t, "TEST_DB_HOST")

	client := newTestPostgresClient(t)
	bus := events.NewMemoryEventBus()
	defer bus.Close()

	repo := database.NewContentBlockAdapter(client)
	svc := services.NewContentService(repo, bus, nil, nil)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"First", "Second", "Third"} {
		block, err := svc.AddBlock(ctx, "home", services.NewBlockInput{
			Section:  "services",
			Title:    title,
			Metadata: map[string]interface{}{"layout": "card"},
		})
		require.NoError(t, err)
		ids = append(ids, block.ID)
	}

	blocks, err := svc.ListBlocks(ctx, "home", repositories.ContentBlockFilter{})
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	for i, b := range blocks {
		assert.Equal(t, i, b.OrderIndex)
	}
	assert.Equal(t, "card", blocks[0].Metadata["layout"])

	reordered, err := svc.ReorderBlock(ctx, ids[2], ordering.Up)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[2], ids[1]}, blockIDs(reordered))

	// Reload to make sure both swapped rows were persisted.
	blocks, err = svc.ListBlocks(ctx, "home", repositories.ContentBlockFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[2], ids[1]}, blockIDs(blocks))

	// Deleting the middle block leaves a gap; the next add still appends after the max.
	require.NoError(t, svc.DeleteBlock(ctx, ids[2]))
	added, err := svc.AddBlock(ctx, "home", services.NewBlockInput{Section: "services", Title: "Fourth"})
	require.NoError(t, err)
	assert.Equal(t, 3, added.OrderIndex)

	title := "First, renamed"
	updated, err := svc.UpdateBlock(ctx, ids[0], entities.ContentBlockPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, 0, updated.OrderIndex)
}

func TestDoctorAdapter_QualificationsIntegration(t *testing.T) {
	requireEnv(t, "TEST_DB_HOST")

	client := newTestPostgresClient(t)
	svc := services.NewDoctorService(database.NewDoctorAdapter(client), nil, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, &entities.Doctor{
		Specialty:      entities.SpecialtyEyecare,
		Name:           "Dr. Kavya Mehta",
		Title:          "Consultant Ophthalmologist",
		Qualifications: []string{"MBBS", "MS (Ophthalmology)"},
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"MBBS", "MS (Ophthalmology)"}, got.Qualifications)

	doctors, err := svc.List(ctx, "eyecare")
	require.NoError(t, err)
	require.Len(t, doctors, 1)

	gyn, err := svc.List(ctx, "gynecology")
	require.NoError(t, err)
	assert.Empty(t, gyn)
}

func blockIDs(blocks []*entities.ContentBlock) []string {
	ids := make([]string, 0, len(blocks))
	for _, b := range blocks {
		ids = append(ids, b.ID)
	}
	return ids
}
