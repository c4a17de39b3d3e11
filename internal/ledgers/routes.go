package ledgers

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/nature-groups", func(r chi.Router) {
		r.Get("/", h.ListNatureGroups)
		r.Post("/", h.CreateNatureGroup)
	})
	r.Route("/main-groups", func(r chi.Router) {
		r.Get("/", h.ListMainGroups)
		r.Post("/", h.CreateMainGroup)
	})
	r.Route("/ledgers", func(r chi.Router) {
		r.Get("/", h.ListLedgers)
		r.Post("/", h.CreateLedger)
		r.Get("/{id}", h.GetLedger)
	})
}
