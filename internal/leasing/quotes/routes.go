package quotes

import (
	"github.com/go-chi/chi/v5"

	"github.com/pcpedia/leasing-api/internal/auth"
)

// MountRoutes registers quote endpoints. Authoring (create/update/send) is
// admin-only; accept/reject belong to the owning client; reads are scoped
// inside the service.
func (h *Handler) MountRoutes(r chi.Router, authmw *auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAdmin)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Post("/{id}/send", h.Send)
	})
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireClient)
		r.Post("/{id}/accept", h.Accept)
		r.Post("/{id}/reject", h.Reject)
	})
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
}
