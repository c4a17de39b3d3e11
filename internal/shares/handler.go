package shares

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) CreateShareUser(w http.ResponseWriter, r *http.Request) {
	var req shareUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Invalid(w, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Invalid(w, err.Error())
		return
	}
	created, err := h.service.CreateShareUser(r.Context(), ShareUser{
		Name:            req.Name,
		MobileNo:        req.MobileNo,
		Category:        Category(req.Category),
		ProfitLoseShare: req.ProfitLoseShare,
		Address:         req.Address,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toShareUserResponse(created))
}

func (h *Handler) ListShareUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListShareUsers(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, toShareUserResponse(u))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) CreateDistribution(w http.ResponseWriter, r *http.Request) {
	var req createDistributionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Invalid(w, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Invalid(w, err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.respondError(w, err)
		return
	}
	created, err := h.service.CreateDistribution(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toDistributionResponse(created))
}

func (h *Handler) ListDistributions(w http.ResponseWriter, r *http.Request) {
	if transactionNo := r.URL.Query().Get("transaction_no"); transactionNo != "" {
		d, err := h.service.GetDistribution(r.Context(), transactionNo)
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, []map[string]any{toDistributionResponse(d)})
		return
	}
	distributions, err := h.service.ListDistributions(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(distributions))
	for _, d := range distributions {
		out = append(out, toDistributionResponse(d))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) ListAllocationsByShareUser(w http.ResponseWriter, r *http.Request) {
	shareUserID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Invalid(w, "invalid share user id")
		return
	}
	allocations, err := h.service.ListAllocationsByShareUser(r.Context(), shareUserID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(allocations))
	for _, a := range allocations {
		out = append(out, toAllocationResponse(a))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Invalid(w, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Invalid(w, err.Error())
		return
	}
	var paidDate time.Time
	if req.PaidDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PaidDate)
		if err != nil {
			httpx.Invalid(w, "invalid paid_date")
			return
		}
		paidDate = parsed
	}
	payment, err := h.service.RecordPayment(r.Context(), req.AllocationID, req.PaidAmount, paidDate)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPaymentResponse(payment))
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	allocationID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Invalid(w, "invalid allocation id")
		return
	}
	payments, err := h.service.ListPayments(r.Context(), allocationID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidDistribution), errors.Is(err, ErrInvalidPayment), errors.Is(err, ErrInvalidShareUser):
		httpx.Invalid(w, err.Error())
	case errors.Is(err, ErrDistributionNotFound), errors.Is(err, ErrAllocationNotFound), errors.Is(err, ErrShareUserNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrTransactionNoConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("shares request failed", slog.Any("error", err))
		httpx.Internal(w)
	}
}
