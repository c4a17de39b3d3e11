package ledgers

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the default orientation of a ledger.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// NatureGroup is the root classification of the chart of accounts
// (Asset, Income, Expense, ...).
type NatureGroup struct {
	ID   int64
	Name string
}

// MainGroup is the sub-classification under one nature group.
type MainGroup struct {
	ID            int64
	Name          string
	NatureGroupID int64
	NatureGroup   *NatureGroup
}

// Ledger is an account (party or category) transactions post against.
type Ledger struct {
	ID             int64
	Name           string
	MobileNo       string
	OpeningBalance decimal.Decimal
	Date           time.Time
	MainGroupID    int64
	MainGroup      *MainGroup
	DebitCredit    Side
}
