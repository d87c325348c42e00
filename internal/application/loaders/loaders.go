package loaders

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/zatekoja/clinic-site/internal/domain/entities"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// batchWait is how long a loader collects keys before querying
const batchWait = 2 * time.Millisecond

// Loaders contains the request-scoped dataloaders used to render pages
type Loaders struct {
	PageBlocksLoader *dataloader.Loader[string, []*entities.ContentBlock]
	DoctorsLoader    *dataloader.Loader[entities.Specialty, []*entities.Doctor]
}

// NewLoaders creates a new instance of Loaders. Loaders cache per instance,
// so create one per request.
func NewLoaders(blockRepo repositories.ContentBlockRepository, doctorRepo repositories.DoctorRepository) *Loaders {
	return &Loaders{
		PageBlocksLoader: dataloader.NewBatchedLoader(func(ctx context.Context, pages []string) []*dataloader.Result[[]*entities.ContentBlock] {
			results := make([]*dataloader.Result[[]*entities.ContentBlock], len(pages))
			byPage, err := blockRepo.ListByPages(ctx, pages)

			for i, page := range pages {
				if err != nil {
					results[i] = &dataloader.Result[[]*entities.ContentBlock]{Error: err}
					continue
				}
				// A page with no rows is a valid, empty page.
				results[i] = &dataloader.Result[[]*entities.ContentBlock]{Data: byPage[page]}
			}
			return results
		}, dataloader.WithWait[string, []*entities.ContentBlock](batchWait)),

		DoctorsLoader: dataloader.NewBatchedLoader(func(ctx context.Context, specialties []entities.Specialty) []*dataloader.Result[[]*entities.Doctor] {
			results := make([]*dataloader.Result[[]*entities.Doctor], len(specialties))
			for i, specialty := range specialties {
				doctors, err := doctorRepo.List(ctx, specialty)
				results[i] = &dataloader.Result[[]*entities.Doctor]{Data: doctors, Error: err}
			}
			return results
		}, dataloader.WithWait[entities.Specialty, []*entities.Doctor](batchWait)),
	}
}

// For returns the loaders for a given context, or nil when none are attached
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}
