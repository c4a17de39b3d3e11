package reports

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/ledgers"
)

// IncomeType classifies an income statement snapshot row.
type IncomeType string

const (
	IncomeTypeSales    IncomeType = "Sales"
	IncomeTypeIndirect IncomeType = "Indirect Income"
)

// BalanceType classifies a balance sheet snapshot row.
type BalanceType string

const (
	BalanceTypeAsset     BalanceType = "Asset"
	BalanceTypeLiability BalanceType = "Liability"
)

// IncomeStatement is a classification snapshot, independent of the
// transaction balance chain.
type IncomeStatement struct {
	ID         int64
	LedgerID   int64
	Ledger     *ledgers.Ledger
	IncomeType IncomeType
	Amount     decimal.Decimal
}

// BalanceSheet is the asset/liability counterpart of IncomeStatement.
type BalanceSheet struct {
	ID          int64
	LedgerID    int64
	Ledger      *ledgers.Ledger
	BalanceType BalanceType
	Amount      decimal.Decimal
}

// ProfitAndLoss aggregates transaction totals for one period. Expense
// sums debits under the "Expense" nature group, income sums credits
// under "Income"; at most one of net profit/net loss is non-zero.
type ProfitAndLoss struct {
	TotalExpense decimal.Decimal `json:"total_expense"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	NetLoss      decimal.Decimal `json:"net_loss"`
}
