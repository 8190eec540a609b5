package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pcpedia/leasing-api/internal/auth"
	"github.com/pcpedia/leasing-api/internal/leasing/contracts"
	"github.com/pcpedia/leasing-api/internal/leasing/quotes"
	"github.com/pcpedia/leasing-api/internal/leasing/requests"
	"github.com/pcpedia/leasing-api/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	AuthMiddleware   *auth.Middleware
	RequestsHandler  *requests.Handler
	QuotesHandler    *quotes.Handler
	ContractsHandler *contracts.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router for the leasing API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything below requires a resolved caller.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.Authenticate)

		r.Route("/requests", func(r chi.Router) {
			params.RequestsHandler.MountRoutes(r, params.AuthMiddleware)
		})
		r.Route("/quotes", func(r chi.Router) {
			params.QuotesHandler.MountRoutes(r, params.AuthMiddleware)
		})
		r.Route("/contracts", func(r chi.Router) {
			params.ContractsHandler.MountRoutes(r, params.AuthMiddleware)
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
