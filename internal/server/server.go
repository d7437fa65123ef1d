package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"projectadmin/internal/projects"
)

// NewRouter builds the route table. metricsHandler may be nil.
func NewRouter(projectHandler projects.Handler, metricsHandler http.Handler) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler)
	}

	router.Route("/api", func(r chi.Router) {
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.List)
			r.Post("/", projectHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", projectHandler.Get)
				r.Put("/", projectHandler.Update)
				r.Delete("/", projectHandler.Delete)
				r.Get("/edit", projectHandler.Edit)
				r.Post("/repair", projectHandler.Repair)
			})
		})
		r.Get("/amenities", projectHandler.Amenities)
		r.Get("/events", projectHandler.StreamEvents)
	})

	return router
}

// New constructs the HTTP server with routes and middleware.
func New(port string, projectHandler projects.Handler, metricsHandler http.Handler) *http.Server {
	// WriteTimeout stays zero so /api/events can stream.
	return &http.Server{
		Addr:              ":" + port,
		Handler:           NewRouter(projectHandler, metricsHandler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
