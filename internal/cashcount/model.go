package cashcount

import (
	"time"

	"github.com/shopspring/decimal"
)

// SheetType discriminates the drawer movement direction.
type SheetType string

const (
	SheetPayIn  SheetType = "payin"
	SheetPayOut SheetType = "payout"
)

// Sheet is one cash-drawer count tied to a voucher.
type Sheet struct {
	ID              int64
	CreatedDate     time.Time
	VoucherNumber   int64
	Amount          decimal.Decimal
	TransactionType SheetType
	Items           []Item
}

// Item is one denomination line of a count sheet. Currency is the
// denomination value, Nos the note/coin count.
type Item struct {
	ID          int64
	SheetID     int64
	CreatedDate time.Time
	Currency    int64
	Nos         int64
	Amount      decimal.Decimal
}
