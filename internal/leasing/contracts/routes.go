package contracts

import (
	"github.com/go-chi/chi/v5"

	"github.com/pcpedia/leasing-api/internal/auth"
)

// MountRoutes registers contract endpoints. Lifecycle mutations are
// admin-only; the equipment projection is client-only; reads are scoped
// inside the service.
func (h *Handler) MountRoutes(r chi.Router, authmw *auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAdmin)
		r.Post("/", h.Create)
		r.Post("/{id}/cancel", h.Cancel)
		r.Post("/{id}/renew", h.Renew)
	})
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireClient)
		r.Get("/equipment", h.ListClientEquipment)
		r.Get("/equipment/{equipmentId}", h.ShowClientEquipment)
	})
	r.Get("/", h.List)
	r.Get("/number/{number}", h.ShowByNumber)
	r.Get("/{id}", h.Show)
}
