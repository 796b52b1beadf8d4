package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all simulation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolio/kinds", h.HandleGetKinds)

	r.Route("/simulations", func(r chi.Router) {
		r.Post("/", h.HandleCreateSimulation)
		r.Get("/", h.HandleListSimulations)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetSimulation)
			r.Get("/distribution", h.HandleGetDistribution)

			// Export step
			r.Get("/export", h.HandleExport)
			r.Post("/upload", h.HandleUpload)
			r.Get("/uploads", h.HandleListUploads)
		})
	})
}
