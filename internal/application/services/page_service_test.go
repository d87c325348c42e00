package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinic-site/internal/application/loaders"
	"github.com/zatekoja/clinic-site/internal/application/services"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

func newPageService(t *testing.T, blocks *MockContentBlockRepository, doctors *MockDoctorRepository) *services.PageService {
	t.Helper()
	defaults, err := services.EmbeddedPageDefaults()
	require.NoError(t, err)
	return services.NewPageService(blocks, doctors, defaults)
}

func TestEmbeddedPageDefaultsCoverEveryPublicPage(t *testing.T) {
	defaults, err := services.EmbeddedPageDefaults()
	require.NoError(t, err)

	for _, route := range entities.SiteRoutes() {
		if !route.IsPublic() {
			continue
		}
		assert.NotEmpty(t, defaults.Pages[route.Page], "no defaults for %s", route.Page)
	}
	assert.NotEmpty(t, defaults.Global)
}

func TestLoadPageDefaultsRejectsUnknownPage(t *testing.T) {
	_, err := services.LoadPageDefaults([]byte("pages:\n  pricing:\n    - section: hero\n"))
	assert.Error(t, err)
}

func TestPageService_RenderPage_FillsMissingSections(t *testing.T) {
	blocks := new(MockContentBlockRepository)
	svc := newPageService(t, blocks, nil)
	ctx := context.Background()

	blocks.On("ListByPages", ctx, []string{"eyecare", entities.GlobalPage}).Return(map[string][]*entities.ContentBlock{
		"eyecare": {
			{ID: "b2", Page: "eyecare", Section: "services", Title: "Retina", OrderIndex: 3},
			{ID: "b1", Page: "eyecare", Section: "hero", Title: "Stored hero", OrderIndex: 1},
			{ID: "b3", Page: "eyecare", Section: "insurance", Title: "Insurers", OrderIndex: 2},
			{ID: "b4", Page: "eyecare", Section: "services", Title: "LASIK", OrderIndex: 0},
		},
	}, nil)

	page, err := svc.RenderPage(ctx, "/eyecare/")
	require.NoError(t, err)

	assert.Equal(t, "eyecare", page.Route.Page)
	names := make([]string, 0, len(page.Sections))
	for _, s := range page.Sections {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"hero", "services", "faq", "insurance"}, names)

	hero := page.Section("hero")
	assert.False(t, hero.IsDefault)
	assert.Equal(t, "Stored hero", hero.Blocks[0].Title)

	svcSection := page.Section("services")
	require.Len(t, svcSection.Blocks, 2)
	assert.Equal(t, "LASIK", svcSection.Blocks[0].Title)
	assert.Equal(t, "Retina", svcSection.Blocks[1].Title)

	faq := page.Section("faq")
	assert.True(t, faq.IsDefault)
	assert.NotEmpty(t, faq.Blocks[0].Title)

	require.NotEmpty(t, page.Global)
	for _, s := range page.Global {
		assert.True(t, s.IsDefault)
	}
	assert.Nil(t, page.Doctors)
}

func TestPageService_RenderPage_DoctorPageUsesLoaders(t *testing.T) {
	blocks := new(MockContentBlockRepository)
	doctors := new(MockDoctorRepository)
	svc := newPageService(t, blocks, doctors)

	blocks.On("ListByPages", mock.Anything, []string{"gynecology-doctor", entities.GlobalPage}).Return(map[string][]*entities.ContentBlock{}, nil).Once()
	doctors.On("List", mock.Anything, entities.SpecialtyGynecology).Return([]*entities.Doctor{
		{ID: "d2", Name: "Dr. Iyer", OrderIndex: 1},
		{ID: "d1", Name: "Dr. Shah", OrderIndex: 0},
	}, nil).Once()

	ctx := loaders.WithLoaders(context.Background(), loaders.NewLoaders(blocks, doctors))
	page, err := svc.RenderPage(ctx, "/gynecology/doctor")
	require.NoError(t, err)

	require.Len(t, page.Doctors, 2)
	assert.Equal(t, "Dr. Shah", page.Doctors[0].Name)
	blocks.AssertExpectations(t)
	doctors.AssertExpectations(t)
}

func TestPageService_RenderPage_AdminAndUnknownRoutes(t *testing.T) {
	svc := newPageService(t, new(MockContentBlockRepository), nil)

	page, err := svc.RenderPage(context.Background(), "/admin/dashboard")
	require.NoError(t, err)
	assert.True(t, page.Route.RequiresAuth)
	assert.Empty(t, page.Sections)

	_, err = svc.RenderPage(context.Background(), "/pricing")
	assert.True(t, apperrors.IsNotFound(err))
}
