package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profit-and-loss", h.ProfitAndLoss)
	r.Route("/income-statements", func(r chi.Router) {
		r.Get("/", h.ListIncomeStatements)
		r.Post("/", h.CreateIncomeStatement)
	})
	r.Route("/balance-sheets", func(r chi.Router) {
		r.Get("/", h.ListBalanceSheets)
		r.Post("/", h.CreateBalanceSheet)
	})
}

func (h *Handler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	from, ok := h.queryDate(w, r, "from_date")
	if !ok {
		return
	}
	to, ok := h.queryDate(w, r, "to_date")
	if !ok {
		return
	}
	pl, err := h.service.ProfitAndLoss(r.Context(), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"total_expense": pl.TotalExpense.StringFixed(2),
		"total_income":  pl.TotalIncome.StringFixed(2),
		"net_profit":    pl.NetProfit.StringFixed(2),
		"net_loss":      pl.NetLoss.StringFixed(2),
	})
}

type incomeStatementRequest struct {
	LedgerID   int64  `json:"ledger_id"`
	IncomeType string `json:"income_type"`
	Amount     string `json:"amount"`
}

func (h *Handler) CreateIncomeStatement(w http.ResponseWriter, r *http.Request) {
	var req incomeStatementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Invalid(w, "invalid JSON body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.Invalid(w, "invalid amount")
		return
	}
	created, err := h.service.CreateIncomeStatement(r.Context(), IncomeStatement{
		LedgerID:   req.LedgerID,
		IncomeType: IncomeType(req.IncomeType),
		Amount:     amount,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":          created.ID,
		"ledger_id":   created.LedgerID,
		"income_type": string(created.IncomeType),
		"amount":      created.Amount.StringFixed(2),
	})
}

func (h *Handler) ListIncomeStatements(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListIncomeStatements(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(rows))
	for _, s := range rows {
		row := map[string]any{
			"id":          s.ID,
			"ledger_id":   s.LedgerID,
			"income_type": string(s.IncomeType),
			"amount":      s.Amount.StringFixed(2),
		}
		if s.Ledger != nil {
			row["ledger_name"] = s.Ledger.Name
		}
		out = append(out, row)
	}
	httpx.JSON(w, http.StatusOK, out)
}

type balanceSheetRequest struct {
	LedgerID    int64  `json:"ledger_id"`
	BalanceType string `json:"balance_type"`
	Amount      string `json:"amount"`
}

func (h *Handler) CreateBalanceSheet(w http.ResponseWriter, r *http.Request) {
	var req balanceSheetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Invalid(w, "invalid JSON body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.Invalid(w, "invalid amount")
		return
	}
	created, err := h.service.CreateBalanceSheet(r.Context(), BalanceSheet{
		LedgerID:    req.LedgerID,
		BalanceType: BalanceType(req.BalanceType),
		Amount:      amount,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":           created.ID,
		"ledger_id":    created.LedgerID,
		"balance_type": string(created.BalanceType),
		"amount":       created.Amount.StringFixed(2),
	})
}

func (h *Handler) ListBalanceSheets(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListBalanceSheets(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(rows))
	for _, s := range rows {
		row := map[string]any{
			"id":           s.ID,
			"ledger_id":    s.LedgerID,
			"balance_type": string(s.BalanceType),
			"amount":       s.Amount.StringFixed(2),
		}
		if s.Ledger != nil {
			row["ledger_name"] = s.Ledger.Name
		}
		out = append(out, row)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) queryDate(w http.ResponseWriter, r *http.Request, param string) (*time.Time, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return nil, true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.Invalid(w, "invalid "+param)
		return nil, false
	}
	return &date, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDatesRequired), errors.Is(err, ErrInvalidSnapshot):
		httpx.Invalid(w, err.Error())
	default:
		h.logger.Error("reports request failed", slog.Any("error", err))
		httpx.Internal(w)
	}
}
