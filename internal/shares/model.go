package shares

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies a shareholder.
type Category string

const (
	CategoryPartners    Category = "partners"
	CategoryManagements Category = "managements"
)

// Status discriminates a distribution period's outcome.
type Status string

const (
	StatusProfit Status = "profit"
	StatusLoss   Status = "lose"
)

// ShareUser is one shareholder in the profit/loss scheme.
type ShareUser struct {
	ID              int64
	Name            string
	MobileNo        string
	Category        Category
	ProfitLoseShare decimal.Decimal
	Address         string
}

// Distribution is one profit-or-loss period settled across the
// shareholders. TransactionNo is a sequential numeric string allocated
// by the engine; TotalAmount and TotalPercentage are derived from the
// allocation set, never taken from the caller.
type Distribution struct {
	ID              int64
	CreatedDate     time.Time
	TransactionNo   string
	PeriodFrom      time.Time
	PeriodTo        time.Time
	TotalPercentage decimal.Decimal
	TotalAmount     decimal.Decimal
	Status          Status
	ProfitAmount    decimal.Decimal
	LossAmount      decimal.Decimal
	Allocations     []Allocation
}

// Allocation is one shareholder's portion of a distribution.
// BalanceAmount starts at the allocated amount and is decremented by
// the settlement tracker as payments arrive.
type Allocation struct {
	ID               int64
	DistributionID   int64
	ShareUserID      int64
	ShareUser        *ShareUser
	Percentage       decimal.Decimal
	ProfitLose       Status
	Amount           decimal.Decimal
	PercentageAmount decimal.Decimal
	BalanceAmount    decimal.Decimal
	IsPaid           bool
}

// Payment is one append-only payment record against an allocation.
type Payment struct {
	ID           int64
	AllocationID int64
	IsPaid       bool
	PaidDate     time.Time
	PaidAmount   decimal.Decimal
}

// PaymentRecorded is the domain event published after a payment row is
// durably created. The settlement tracker consumes it synchronously in
// the same transaction scope.
type PaymentRecorded struct {
	AllocationID int64
	PaidAmount   decimal.Decimal
	PaidDate     time.Time
}
