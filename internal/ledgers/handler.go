package ledgers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

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

type natureGroupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type mainGroupRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	NatureGroupID int64  `json:"nature_group_id" validate:"required"`
}

type ledgerRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	MobileNo       string `json:"mobile_no" validate:"max=15"`
	OpeningBalance string `json:"opening_balance"`
	Date           string `json:"date"`
	MainGroupID    int64  `json:"group_id" validate:"required"`
	DebitCredit    string `json:"debit_credit" validate:"omitempty,oneof=DEBIT CREDIT"`
}

func (h *Handler) CreateNatureGroup(w http.ResponseWriter, r *http.Request) {
	var req natureGroupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Invalid(w, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Invalid(w, err.Error())
		return
	}
	group, err := h.service.CreateNatureGroup(r.Context(), req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toNatureGroupResponse(group))
}

func (h *Handler) ListNatureGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListNatureGroups(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		out = append(out, toNatureGroupResponse(g))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) CreateMainGroup(w http.ResponseWriter, r *http.Request) {
	var req mainGroupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Invalid(w, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Invalid(w, err.Error())
		return
	}
	group, err := h.service.CreateMainGroup(r.Context(), req.Name, req.NatureGroupID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toMainGroupResponse(group))
}

func (h *Handler) ListMainGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListMainGroups(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		out = append(out, toMainGroupResponse(g))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) CreateLedger(w http.ResponseWriter, r *http.Request) {
	var req ledgerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Invalid(w, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Invalid(w, err.Error())
		return
	}
	input := CreateLedgerInput{
		Name:        req.Name,
		MobileNo:    req.MobileNo,
		MainGroupID: req.MainGroupID,
		DebitCredit: Side(req.DebitCredit),
	}
	if req.OpeningBalance != "" {
		bal, err := decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			httpx.Invalid(w, "invalid opening_balance")
			return
		}
		input.OpeningBalance = bal
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httpx.Invalid(w, "invalid date")
			return
		}
		input.Date = date
	}
	ledger, err := h.service.CreateLedger(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ToLedgerResponse(ledger))
}

func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Invalid(w, "invalid ledger id")
		return
	}
	ledger, err := h.service.GetLedger(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ToLedgerResponse(ledger))
}

func (h *Handler) ListLedgers(w http.ResponseWriter, r *http.Request) {
	var (
		ledgers []Ledger
		err     error
	)
	switch {
	case r.URL.Query().Get("group_name") != "":
		ledgers, err = h.service.ListLedgersByGroupName(r.Context(), r.URL.Query().Get("group_name"))
	case r.URL.Query().Get("ledger_name") != "":
		ledgers, err = h.service.SearchLedgersByName(r.Context(), r.URL.Query().Get("ledger_name"))
	default:
		ledgers, err = h.service.ListLedgers(r.Context())
	}
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(ledgers))
	for _, l := range ledgers {
		out = append(out, ToLedgerResponse(l))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLedgerNotFound), errors.Is(err, ErrGroupNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrGroupExists):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("ledgers request failed", slog.Any("error", err))
		httpx.Internal(w)
	}
}

func toNatureGroupResponse(g NatureGroup) map[string]any {
	return map[string]any{"id": g.ID, "name": g.Name}
}

func toMainGroupResponse(g MainGroup) map[string]any {
	out := map[string]any{"id": g.ID, "name": g.Name, "nature_group_id": g.NatureGroupID}
	if g.NatureGroup != nil {
		out["nature_group"] = toNatureGroupResponse(*g.NatureGroup)
	}
	return out
}

// ToLedgerResponse serializes a ledger with its nested groups. Shared
// with the posting handlers, which embed ledgers in transaction rows.
func ToLedgerResponse(l Ledger) map[string]any {
	out := map[string]any{
		"id":              l.ID,
		"name":            l.Name,
		"mobile_no":       l.MobileNo,
		"opening_balance": l.OpeningBalance.StringFixed(2),
		"date":            l.Date.Format("2006-01-02"),
		"debit_credit":    string(l.DebitCredit),
	}
	if l.MainGroup != nil {
		out["group"] = toMainGroupResponse(*l.MainGroup)
	}
	return out
}
