package posting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// legPayload is one leg as it arrives on the wire. decimal.Decimal
// accepts both bare numbers and quoted strings, which the callers mix.
type legPayload struct {
	LedgerID      int64           `json:"ledger_id" validate:"required"`
	ParticularsID int64           `json:"particulars_id" validate:"required"`
	Date          string          `json:"date" validate:"required"`
	DebitAmount   decimal.Decimal `json:"debit_amount"`
	CreditAmount  decimal.Decimal `json:"credit_amount"`
	RefNo         string          `json:"ref_no" validate:"max=15"`
	Remarks       string          `json:"remarks"`
	DebitCredit   string          `json:"debit_credit" validate:"required,oneof=debit credit"`
}

func (p legPayload) toLeg() (Leg, error) {
	date, err := time.Parse("2006-01-02", p.Date)
	if err != nil {
		return Leg{}, fmt.Errorf("invalid date %q", p.Date)
	}
	return Leg{
		LedgerID:      p.LedgerID,
		ParticularsID: p.ParticularsID,
		Date:          date,
		DebitAmount:   p.DebitAmount,
		CreditAmount:  p.CreditAmount,
		RefNo:         p.RefNo,
		Remarks:       p.Remarks,
		DebitCredit:   Side(p.DebitCredit),
	}, nil
}

// createBundleRequest carries every leg key the three entry shapes
// use. toBundle picks the keys the discriminator requires and rejects
// the request when one is absent.
type createBundleRequest struct {
	TransactionType string `json:"transaction_type"`
	IdempotencyKey  string `json:"idempotency_key"`

	Transaction1 *legPayload `json:"transaction1"`
	Transaction2 *legPayload `json:"transaction2"`

	SalesCashTransaction1 *legPayload `json:"salescashtransaction1"`
	SalesCashTransaction2 *legPayload `json:"salescashtransaction2"`
	SalesBankTransaction1 *legPayload `json:"salesbanktransaction1"`
	SalesBankTransaction2 *legPayload `json:"salesbanktransaction2"`
	PurchaseTransaction1  *legPayload `json:"purchasetransaction1"`
	PurchaseTransaction2  *legPayload `json:"purchasetransaction2"`
}

func (req createBundleRequest) toBundle() (Bundle, error) {
	switch BundleKind(req.TransactionType) {
	case BundlePayIn, BundlePayOut:
		if req.Transaction1 == nil || req.Transaction2 == nil {
			return nil, fmt.Errorf("%w: both transactions are required for pay in/out", ErrInvalidBundle)
		}
		leg1, err := req.Transaction1.toLeg()
		if err != nil {
			return nil, fmt.Errorf("%w: transaction1: %v", ErrInvalidBundle, err)
		}
		leg2, err := req.Transaction2.toLeg()
		if err != nil {
			return nil, fmt.Errorf("%w: transaction2: %v", ErrInvalidBundle, err)
		}
		return PayInOut{Direction: BundleKind(req.TransactionType), Transaction1: leg1, Transaction2: leg2}, nil
	case BundleSalesEntry:
		payloads := []struct {
			name string
			leg  *legPayload
		}{
			{"salescashtransaction1", req.SalesCashTransaction1},
			{"salescashtransaction2", req.SalesCashTransaction2},
			{"salesbanktransaction1", req.SalesBankTransaction1},
			{"salesbanktransaction2", req.SalesBankTransaction2},
			{"purchasetransaction1", req.PurchaseTransaction1},
			{"purchasetransaction2", req.PurchaseTransaction2},
		}
		legs := make([]Leg, 0, len(payloads))
		for _, p := range payloads {
			if p.leg == nil {
				return nil, fmt.Errorf("%w: all transaction data is required for sales entry", ErrInvalidBundle)
			}
			leg, err := p.leg.toLeg()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBundle, p.name, err)
			}
			legs = append(legs, leg)
		}
		return SalesEntry{
			SalesCash1: legs[0], SalesCash2: legs[1],
			SalesBank1: legs[2], SalesBank2: legs[3],
			Purchase1: legs[4], Purchase2: legs[5],
		}, nil
	default:
		return nil, fmt.Errorf("%w: invalid transaction type %q", ErrInvalidBundle, req.TransactionType)
	}
}

// transactionResponse is the serialized shape of one posted row.
type transactionResponse struct {
	ID            int64          `json:"id"`
	Ledger        ledgerRef      `json:"ledger"`
	Particulars   ledgerRef      `json:"particulars"`
	Date          string         `json:"date"`
	DebitAmount   string         `json:"debit_amount"`
	CreditAmount  string         `json:"credit_amount"`
	BalanceAmount string         `json:"balance_amount"`
	Remarks       string         `json:"remarks,omitempty"`
	VoucherNo     int64          `json:"voucher_no"`
	RefNo         string         `json:"ref_no,omitempty"`
	DebitCredit   string         `json:"debit_credit"`
}

type ledgerRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toTransactionResponse(t Transaction) transactionResponse {
	resp := transactionResponse{
		ID:            t.ID,
		Ledger:        ledgerRef{ID: t.LedgerID},
		Particulars:   ledgerRef{ID: t.ParticularsID},
		Date:          t.Date.Format("2006-01-02"),
		DebitAmount:   t.DebitAmount.StringFixed(2),
		CreditAmount:  t.CreditAmount.StringFixed(2),
		BalanceAmount: t.BalanceAmount.StringFixed(2),
		Remarks:       t.Remarks,
		VoucherNo:     t.VoucherNo,
		RefNo:         t.RefNo,
		DebitCredit:   string(t.DebitCredit),
	}
	if t.Ledger != nil {
		resp.Ledger.Name = t.Ledger.Name
	}
	if t.Particulars != nil {
		resp.Particulars.Name = t.Particulars.Name
	}
	return resp
}

func toTransactionResponses(rows []Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(rows))
	for _, t := range rows {
		out = append(out, toTransactionResponse(t))
	}
	return out
}
