package cashcount

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
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
	r.Route("/cash-count-sheets", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.CreateBatch)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
	})
}

type itemPayload struct {
	CreatedDate string          `json:"created_date"`
	Currency    int64           `json:"currency"`
	Nos         int64           `json:"nos"`
	Amount      decimal.Decimal `json:"amount"`
}

type sheetPayload struct {
	CreatedDate     string          `json:"created_date"`
	VoucherNumber   int64           `json:"voucher_number"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transaction_type"`
	Items           []itemPayload   `json:"items"`
}

type createBatchRequest struct {
	Entries []sheetPayload `json:"entries"`
}

func (p sheetPayload) toSheet() (Sheet, error) {
	sheet := Sheet{
		VoucherNumber:   p.VoucherNumber,
		Amount:          p.Amount,
		TransactionType: SheetType(p.TransactionType),
	}
	if p.CreatedDate != "" {
		date, err := time.Parse("2006-01-02", p.CreatedDate)
		if err != nil {
			return Sheet{}, errors.New("invalid created_date")
		}
		sheet.CreatedDate = date
	}
	for _, item := range p.Items {
		row := Item{Currency: item.Currency, Nos: item.Nos, Amount: item.Amount}
		if item.CreatedDate != "" {
			date, err := time.Parse("2006-01-02", item.CreatedDate)
			if err != nil {
				return Sheet{}, errors.New("invalid item created_date")
			}
			row.CreatedDate = date
		}
		sheet.Items = append(sheet.Items, row)
	}
	return sheet, nil
}

func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req createBatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Invalid(w, "invalid JSON body")
		return
	}
	entries := make([]Sheet, 0, len(req.Entries))
	for _, payload := range req.Entries {
		sheet, err := payload.toSheet()
		if err != nil {
			httpx.Invalid(w, err.Error())
			return
		}
		entries = append(entries, sheet)
	}
	created, err := h.service.CreateBatch(r.Context(), entries)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(created))
	for _, sheet := range created {
		out = append(out, toSheetResponse(sheet))
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Invalid(w, "invalid sheet id")
		return
	}
	var payload sheetPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Invalid(w, "invalid JSON body")
		return
	}
	sheet, err := payload.toSheet()
	if err != nil {
		httpx.Invalid(w, err.Error())
		return
	}
	sheet.ID = id
	updated, err := h.service.Update(r.Context(), sheet)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSheetResponse(updated))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Invalid(w, "invalid sheet id")
		return
	}
	sheet, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSheetResponse(sheet))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	from, ok := h.queryDate(w, r, "from_date")
	if !ok {
		return
	}
	to, ok := h.queryDate(w, r, "to_date")
	if !ok {
		return
	}
	sheets, err := h.service.List(r.Context(), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(sheets))
	for _, sheet := range sheets {
		out = append(out, toSheetResponse(sheet))
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
	case errors.Is(err, ErrInvalidSheet):
		httpx.Invalid(w, err.Error())
	case errors.Is(err, ErrSheetNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error("cashcount request failed", slog.Any("error", err))
		httpx.Internal(w)
	}
}

func toSheetResponse(s Sheet) map[string]any {
	items := make([]map[string]any, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, map[string]any{
			"id":           item.ID,
			"created_date": item.CreatedDate.Format("2006-01-02"),
			"currency":     item.Currency,
			"nos":          item.Nos,
			"amount":       item.Amount.StringFixed(2),
		})
	}
	return map[string]any{
		"id":               s.ID,
		"created_date":     s.CreatedDate.Format("2006-01-02"),
		"voucher_number":   s.VoucherNumber,
		"amount":           s.Amount.StringFixed(2),
		"transaction_type": string(s.TransactionType),
		"items":            items,
	}
}
