package posting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/ledgers"
)

// Side discriminates the debit/credit orientation of one row.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// Transaction is one posted row of the running ledger. BalanceAmount is
// always derived by the posting engine, never authored by callers.
type Transaction struct {
	ID            int64
	LedgerID      int64
	Ledger        *ledgers.Ledger
	ParticularsID int64
	Particulars   *ledgers.Ledger
	Date          time.Time
	DebitAmount   decimal.Decimal
	CreditAmount  decimal.Decimal
	BalanceAmount decimal.Decimal
	RefNo         string
	Remarks       string
	VoucherNo     int64
	DebitCredit   Side
	CreatedAt     time.Time
}

// BundleKind discriminates the supported compound entry shapes.
type BundleKind string

const (
	BundlePayIn      BundleKind = "payin"
	BundlePayOut     BundleKind = "payout"
	BundleSalesEntry BundleKind = "salesentry"
)

// Leg is one debit-or-credit row of a compound entry before posting.
type Leg struct {
	LedgerID      int64
	ParticularsID int64
	Date          time.Time
	DebitAmount   decimal.Decimal
	CreditAmount  decimal.Decimal
	RefNo         string
	Remarks       string
	DebitCredit   Side
}

// Bundle is a compound entry whose legs share one voucher number and
// post atomically. Each variant carries its fixed leg schema, so a
// missing leg is a shape error rather than a runtime key lookup.
type Bundle interface {
	Kind() BundleKind
	Legs() []Leg
}

// PayInOut is the two-leg pay-in/pay-out entry.
type PayInOut struct {
	Direction    BundleKind // BundlePayIn or BundlePayOut
	Transaction1 Leg
	Transaction2 Leg
}

func (b PayInOut) Kind() BundleKind { return b.Direction }

func (b PayInOut) Legs() []Leg { return []Leg{b.Transaction1, b.Transaction2} }

// SalesEntry is the six-leg cash/bank/purchase sales entry.
type SalesEntry struct {
	SalesCash1 Leg
	SalesCash2 Leg
	SalesBank1 Leg
	SalesBank2 Leg
	Purchase1  Leg
	Purchase2  Leg
}

func (SalesEntry) Kind() BundleKind { return BundleSalesEntry }

func (b SalesEntry) Legs() []Leg {
	return []Leg{b.SalesCash1, b.SalesCash2, b.SalesBank1, b.SalesBank2, b.Purchase1, b.Purchase2}
}
