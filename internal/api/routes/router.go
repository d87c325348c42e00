package routes

import (
	"net/http"

	"github.com/zatekoja/clinic-site/internal/api/handlers"
	"github.com/zatekoja/clinic-site/internal/api/middleware"
	"github.com/zatekoja/clinic-site/internal/domain/repositories"
	"github.com/zatekoja/clinic-site/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	pageHandler        *handlers.PageHandler
	contentHandler     *handlers.ContentHandler
	doctorHandler      *handlers.DoctorHandler
	holidayHandler     *handlers.HolidayHandler
	appointmentHandler *handlers.AppointmentHandler
	authHandler        *handlers.AuthHandler
	exportHandler      *handlers.ExportHandler
	searchHandler      *handlers.SearchHandler
	sseHandler         *handlers.SSEHandler

	// Media is served from disk under /media/. Nil disables it.
	media http.Handler

	auth            middleware.TokenValidator
	cacheMiddleware *middleware.CacheMiddleware
	blocks          repositories.ContentBlockRepository
	doctors         repositories.DoctorRepository
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// Handlers groups the HTTP handlers the router mounts
type Handlers struct {
	Page        *handlers.PageHandler
	Content     *handlers.ContentHandler
	Doctor      *handlers.DoctorHandler
	Holiday     *handlers.HolidayHandler
	Appointment *handlers.AppointmentHandler
	Auth        *handlers.AuthHandler
	Export      *handlers.ExportHandler
	Search      *handlers.SearchHandler
	SSE         *handlers.SSEHandler
	Media       http.Handler
}

// Options configures the middleware chain
type Options struct {
	Auth           middleware.TokenValidator
	Cache          *middleware.CacheMiddleware
	Blocks         repositories.ContentBlockRepository
	Doctors        repositories.DoctorRepository
	AllowedOrigins []string
	Metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(h Handlers, opts Options) *Router {
	return &Router{
		mux: http.NewServeMux(),

		pageHandler:        h.Page,
		contentHandler:     h.Content,
		doctorHandler:      h.Doctor,
		holidayHandler:     h.Holiday,
		appointmentHandler: h.Appointment,
		authHandler:        h.Auth,
		exportHandler:      h.Export,
		searchHandler:      h.Search,
		sseHandler:         h.SSE,
		media:              h.Media,

		auth:            opts.Auth,
		cacheMiddleware: opts.Cache,
		blocks:          opts.Blocks,
		doctors:         opts.Doctors,
		allowedOrigins:  opts.AllowedOrigins,
		metrics:         opts.Metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Public site
	r.mux.HandleFunc("GET /api/pages", r.pageHandler.GetPage)
	r.mux.HandleFunc("GET /api/routes", r.pageHandler.ListRoutes)
	r.mux.HandleFunc("GET /api/content/{page}", r.contentHandler.ListBlocks)
	r.mux.HandleFunc("GET /api/content/blocks/{id}", r.contentHandler.GetBlock)
	r.mux.HandleFunc("GET /api/doctors", r.doctorHandler.ListDoctors)
	r.mux.HandleFunc("GET /api/doctors/{id}", r.doctorHandler.GetDoctor)
	r.mux.HandleFunc("GET /api/holidays", r.holidayHandler.ListHolidays)
	r.mux.HandleFunc("GET /api/holidays/check", r.holidayHandler.CheckDate)
	r.mux.HandleFunc("POST /api/appointments", r.appointmentHandler.RequestAppointment)
	r.mux.HandleFunc("GET /api/search", r.searchHandler.Search)

	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/content", r.sseHandler.StreamContentUpdates)
	}
	if r.media != nil {
		r.mux.Handle("GET /media/", http.StripPrefix("/media/", r.media))
	}

	// Admin session
	r.mux.HandleFunc("POST /api/admin/login", r.authHandler.Login)
	r.mux.HandleFunc("POST /api/admin/forgot-password", r.authHandler.ForgotPassword)
	r.mux.HandleFunc("POST /api/admin/reset-password", r.authHandler.ResetPassword)

	admin := middleware.RequireAdmin(r.auth)
	protect := func(pattern string, h http.HandlerFunc) {
		r.mux.Handle(pattern, admin(h))
	}

	protect("GET /api/admin/me", r.authHandler.Me)

	// Appointments
	protect("GET /api/admin/appointments", r.appointmentHandler.ListAppointments)
	protect("GET /api/admin/appointments/{id}", r.appointmentHandler.GetAppointment)
	protect("PATCH /api/admin/appointments/{id}/status", r.appointmentHandler.UpdateStatus)
	protect("DELETE /api/admin/appointments/{id}", r.appointmentHandler.DeleteAppointment)
	protect("GET /api/admin/calendar", r.appointmentHandler.GetCalendar)
	protect("GET /api/admin/dashboard", r.appointmentHandler.GetDashboard)

	// Content blocks
	protect("POST /api/admin/content/{page}/blocks", r.contentHandler.AddBlock)
	protect("PATCH /api/admin/content/blocks/{id}", r.contentHandler.UpdateBlock)
	protect("DELETE /api/admin/content/blocks/{id}", r.contentHandler.DeleteBlock)
	protect("POST /api/admin/content/blocks/{id}/reorder", r.contentHandler.ReorderBlock)
	protect("POST /api/admin/content/blocks/{id}/image", r.contentHandler.UploadBlockImage)

	// Doctors
	protect("POST /api/admin/doctors", r.doctorHandler.CreateDoctor)
	protect("PATCH /api/admin/doctors/{id}", r.doctorHandler.UpdateDoctor)
	protect("DELETE /api/admin/doctors/{id}", r.doctorHandler.DeleteDoctor)
	protect("POST /api/admin/doctors/{id}/reorder", r.doctorHandler.ReorderDoctor)
	protect("POST /api/admin/doctors/{id}/image", r.doctorHandler.UploadDoctorImage)

	// Holidays
	protect("GET /api/admin/holidays/{id}", r.holidayHandler.GetHoliday)
	protect("POST /api/admin/holidays", r.holidayHandler.CreateHoliday)
	protect("PUT /api/admin/holidays/{id}", r.holidayHandler.UpdateHoliday)
	protect("DELETE /api/admin/holidays/{id}", r.holidayHandler.DeleteHoliday)
	protect("POST /api/admin/holidays/sync", r.holidayHandler.SyncHolidays)

	protect("GET /api/admin/export", r.exportHandler.Export)
	protect("POST /api/admin/search/reindex", r.searchHandler.Reindex)

	// Apply middleware in reverse order (last middleware wraps first).
	// RecordRoute sits directly on the mux so outer layers see the pattern.
	var handler http.Handler = middleware.RecordRoute(r.mux)
	if r.blocks != nil && r.doctors != nil {
		handler = middleware.LoadersMiddleware(r.blocks, r.doctors)(handler)
	}
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
