package shares

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/share-users", func(r chi.Router) {
		r.Get("/", h.ListShareUsers)
		r.Post("/", h.CreateShareUser)
		r.Get("/{id}/transactions", h.ListAllocationsByShareUser)
	})
	r.Route("/profit-loss-share-transactions", func(r chi.Router) {
		r.Get("/", h.ListDistributions)
		r.Post("/", h.CreateDistribution)
	})
	r.Route("/share-payments", func(r chi.Router) {
		r.Post("/", h.RecordPayment)
		r.Get("/allocation/{id}", h.ListPayments)
	})
}
