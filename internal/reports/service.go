package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrDatesRequired indicates a summary query missing its date bounds.
	ErrDatesRequired = errors.New("reports: both from_date and to_date are required")
	// ErrInvalidSnapshot indicates a malformed classification snapshot.
	ErrInvalidSnapshot = errors.New("reports: invalid snapshot")
)

type Service struct {
	repo  Repository
	cache *Cache
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetCache injects the Redis-backed aggregate cache.
func (s *Service) SetCache(cache *Cache) {
	s.cache = cache
}

// ProfitAndLoss sums expenses and income over the period. Scoped to
// ledgers classified under the nature groups named "Expense" and
// "Income" (case-insensitive exact match).
func (s *Service) ProfitAndLoss(ctx context.Context, from, to *time.Time) (ProfitAndLoss, error) {
	if from == nil || to == nil {
		return ProfitAndLoss{}, ErrDatesRequired
	}
	if cached, ok := s.cache.Get(ctx, *from, *to); ok {
		return cached, nil
	}

	expense, err := s.repo.SumDebitsByNatureGroup(ctx, "Expense", *from, *to)
	if err != nil {
		return ProfitAndLoss{}, err
	}
	income, err := s.repo.SumCreditsByNatureGroup(ctx, "Income", *from, *to)
	if err != nil {
		return ProfitAndLoss{}, err
	}

	pl := ProfitAndLoss{
		TotalExpense: expense,
		TotalIncome:  income,
		NetProfit:    decimal.Zero,
		NetLoss:      decimal.Zero,
	}
	switch {
	case income.GreaterThan(expense):
		pl.NetProfit = income.Sub(expense)
	case expense.GreaterThan(income):
		pl.NetLoss = expense.Sub(income)
	}

	s.cache.Set(ctx, *from, *to, pl)
	return pl, nil
}

func (s *Service) CreateIncomeStatement(ctx context.Context, in IncomeStatement) (IncomeStatement, error) {
	if in.LedgerID == 0 {
		return IncomeStatement{}, fmt.Errorf("%w: ledger required", ErrInvalidSnapshot)
	}
	switch in.IncomeType {
	case IncomeTypeSales, IncomeTypeIndirect:
	default:
		return IncomeStatement{}, fmt.Errorf("%w: invalid income type %q", ErrInvalidSnapshot, in.IncomeType)
	}
	return s.repo.CreateIncomeStatement(ctx, in)
}

func (s *Service) ListIncomeStatements(ctx context.Context) ([]IncomeStatement, error) {
	return s.repo.ListIncomeStatements(ctx)
}

func (s *Service) CreateBalanceSheet(ctx context.Context, in BalanceSheet) (BalanceSheet, error) {
	if in.LedgerID == 0 {
		return BalanceSheet{}, fmt.Errorf("%w: ledger required", ErrInvalidSnapshot)
	}
	switch in.BalanceType {
	case BalanceTypeAsset, BalanceTypeLiability:
	default:
		return BalanceSheet{}, fmt.Errorf("%w: invalid balance type %q", ErrInvalidSnapshot, in.BalanceType)
	}
	return s.repo.CreateBalanceSheet(ctx, in)
}

func (s *Service) ListBalanceSheets(ctx context.Context) ([]BalanceSheet, error) {
	return s.repo.ListBalanceSheets(ctx)
}
