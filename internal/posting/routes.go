package posting

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", h.CreateBundle)
		r.Get("/ledger-report", h.LedgerReport)
		r.Get("/filter-by-nature-group", h.FilterByNatureGroup)
	})
	r.Post("/ledgers/{id}/rebuild-balances", h.RebuildBalances)
}
