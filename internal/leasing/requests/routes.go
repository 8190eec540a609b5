package requests

import (
	"github.com/go-chi/chi/v5"

	"github.com/pcpedia/leasing-api/internal/auth"
)

// MountRoutes registers request endpoints. Create is for clients; reject is
// admin-only; reads are scoped inside the service.
func (h *Handler) MountRoutes(r chi.Router, authmw *auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireClient)
		r.Post("/", h.Create)
	})
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAdmin)
		r.Post("/{id}/reject", h.Reject)
	})
}
