package posting

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/ledgers"
	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) CreateBundle(w http.ResponseWriter, r *http.Request) {
	var req createBundleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Invalid(w, "invalid JSON body")
		return
	}
	bundle, err := req.toBundle()
	if err != nil {
		httpx.Invalid(w, err.Error())
		return
	}
	key := uuid.Nil
	if req.IdempotencyKey != "" {
		key, err = uuid.Parse(req.IdempotencyKey)
		if err != nil {
			httpx.Invalid(w, "invalid idempotency_key")
			return
		}
	}
	posted, err := h.service.PostBundle(r.Context(), bundle, key)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toTransactionResponses(posted))
}

func (h *Handler) LedgerReport(w http.ResponseWriter, r *http.Request) {
	from, ok := h.optionalDate(w, r, "from_date")
	if !ok {
		return
	}
	to, ok := h.optionalDate(w, r, "to_date")
	if !ok {
		return
	}
	rows, err := h.service.LedgerReport(r.Context(), r.URL.Query().Get("ledger"), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTransactionResponses(rows))
}

func (h *Handler) FilterByNatureGroup(w http.ResponseWriter, r *http.Request) {
	from, ok := h.optionalDate(w, r, "from_date")
	if !ok {
		return
	}
	to, ok := h.optionalDate(w, r, "to_date")
	if !ok {
		return
	}
	rows, err := h.service.FilterByNatureGroup(r.Context(), r.URL.Query().Get("nature_group_name"), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTransactionResponses(rows))
}

func (h *Handler) RebuildBalances(w http.ResponseWriter, r *http.Request) {
	ledgerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Invalid(w, "invalid ledger id")
		return
	}
	updated, err := h.service.RebuildBalances(r.Context(), ledgerID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ledger_id": ledgerID, "updated_rows": updated})
}

func (h *Handler) optionalDate(w http.ResponseWriter, r *http.Request, param string) (*time.Time, bool) {
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
	case errors.Is(err, ErrInvalidBundle), errors.Is(err, ErrDatesRequired):
		httpx.Invalid(w, err.Error())
	case errors.Is(err, ledgers.ErrLedgerNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrBundleConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("posting request failed", slog.Any("error", err))
		httpx.Internal(w)
	}
}
