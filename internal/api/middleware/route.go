package middleware

import (
	"context"
	"net/http"
)

const routeInfoKey ctxKey = "route_info"

// routeInfo carries the matched mux pattern back out to the outer
// middlewares, which only see copies of the request.
type routeInfo struct {
	pattern string
}

func withRouteInfo(r *http.Request) (*http.Request, *routeInfo) {
	if info, ok := r.Context().Value(routeInfoKey).(*routeInfo); ok {
		return r, info
	}
	info := &routeInfo{}
	return r.WithContext(context.WithValue(r.Context(), routeInfoKey, info)), info
}

// RecordRoute wraps the mux and publishes the pattern it matched
func RecordRoute(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if info, ok := r.Context().Value(routeInfoKey).(*routeInfo); ok {
			info.pattern = r.Pattern
		}
	})
}

func (i *routeInfo) route(fallback string) string {
	if i.pattern != "" {
		return i.pattern
	}
	return fallback
}
