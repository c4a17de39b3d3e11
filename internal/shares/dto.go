package shares

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type shareUserRequest struct {
	Name            string          `json:"name" validate:"required,max=255"`
	MobileNo        string          `json:"mobile_no" validate:"required,max=15"`
	Category        string          `json:"category" validate:"required,oneof=partners managements"`
	ProfitLoseShare decimal.Decimal `json:"profitlose_share"`
	Address         string          `json:"address"`
}

type allocationPayload struct {
	ShareUserID      int64           `json:"share_user" validate:"required"`
	Percentage       decimal.Decimal `json:"percentage"`
	ProfitLose       string          `json:"profit_lose" validate:"required,oneof=profit lose"`
	Amount           decimal.Decimal `json:"amount"`
	PercentageAmount decimal.Decimal `json:"percentage_amount"`
}

type createDistributionRequest struct {
	PeriodFrom   string              `json:"period_from" validate:"required"`
	PeriodTo     string              `json:"period_to" validate:"required"`
	Status       string              `json:"status" validate:"required,oneof=profit lose"`
	ProfitAmount decimal.Decimal     `json:"profit_amount"`
	LossAmount   decimal.Decimal     `json:"loss_amount"`
	Allocations  []allocationPayload `json:"share_user_transactions" validate:"required,min=1,dive"`
}

func (req createDistributionRequest) toInput() (DistributionInput, error) {
	from, err := time.Parse("2006-01-02", req.PeriodFrom)
	if err != nil {
		return DistributionInput{}, fmt.Errorf("%w: invalid period_from", ErrInvalidDistribution)
	}
	to, err := time.Parse("2006-01-02", req.PeriodTo)
	if err != nil {
		return DistributionInput{}, fmt.Errorf("%w: invalid period_to", ErrInvalidDistribution)
	}
	input := DistributionInput{
		PeriodFrom:   from,
		PeriodTo:     to,
		Status:       Status(req.Status),
		ProfitAmount: req.ProfitAmount,
		LossAmount:   req.LossAmount,
	}
	for _, a := range req.Allocations {
		input.Allocations = append(input.Allocations, AllocationInput{
			ShareUserID:      a.ShareUserID,
			Percentage:       a.Percentage,
			ProfitLose:       Status(a.ProfitLose),
			Amount:           a.Amount,
			PercentageAmount: a.PercentageAmount,
		})
	}
	return input, nil
}

type recordPaymentRequest struct {
	AllocationID int64           `json:"share_user_transaction" validate:"required"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	PaidDate     string          `json:"paid_date"`
}

func toShareUserResponse(u ShareUser) map[string]any {
	return map[string]any{
		"id":               u.ID,
		"name":             u.Name,
		"mobile_no":        u.MobileNo,
		"category":         string(u.Category),
		"profitlose_share": u.ProfitLoseShare.StringFixed(2),
		"address":          u.Address,
	}
}

func toAllocationResponse(a Allocation) map[string]any {
	out := map[string]any{
		"id":                a.ID,
		"transaction_id":    a.DistributionID,
		"share_user":        a.ShareUserID,
		"percentage":        a.Percentage.StringFixed(2),
		"profit_lose":       string(a.ProfitLose),
		"amount":            a.Amount.StringFixed(2),
		"percentage_amount": a.PercentageAmount.StringFixed(2),
		"balance_amount":    a.BalanceAmount.StringFixed(2),
		"is_paid":           a.IsPaid,
	}
	if a.ShareUser != nil {
		out["share_user_data"] = map[string]any{
			"id":       a.ShareUser.ID,
			"name":     a.ShareUser.Name,
			"category": string(a.ShareUser.Category),
		}
	}
	return out
}

func toDistributionResponse(d Distribution) map[string]any {
	allocations := make([]map[string]any, 0, len(d.Allocations))
	for _, a := range d.Allocations {
		allocations = append(allocations, toAllocationResponse(a))
	}
	return map[string]any{
		"id":                      d.ID,
		"transaction_no":          d.TransactionNo,
		"created_date":            d.CreatedDate.Format(time.RFC3339),
		"period_from":             d.PeriodFrom.Format("2006-01-02"),
		"period_to":               d.PeriodTo.Format("2006-01-02"),
		"total_percentage":        d.TotalPercentage.StringFixed(2),
		"total_amount":            d.TotalAmount.StringFixed(2),
		"status":                  string(d.Status),
		"profit_amount":           d.ProfitAmount.StringFixed(2),
		"loss_amount":             d.LossAmount.StringFixed(2),
		"share_user_transactions": allocations,
	}
}

func toPaymentResponse(p Payment) map[string]any {
	return map[string]any{
		"id":                     p.ID,
		"share_user_transaction": p.AllocationID,
		"is_paid":                p.IsPaid,
		"paid_date":              p.PaidDate.Format("2006-01-02"),
		"paid_amount":            p.PaidAmount.StringFixed(2),
	}
}
