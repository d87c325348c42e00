package middleware

import (
	"net/http"

	"github.com/zatekoja/clinic-site/internal/application/loaders"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
)

// LoadersMiddleware attaches fresh dataloaders to every request so page
// renders batch their block and doctor lookups
func LoadersMiddleware(blocks repositories.ContentBlockRepository, doctors repositories.DoctorRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := loaders.WithLoaders(r.Context(), loaders.NewLoaders(blocks, doctors))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
