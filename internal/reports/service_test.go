package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	debits  map[string]decimal.Decimal
	credits map[string]decimal.Decimal

	sumCalls int

	incomeStatements []IncomeStatement
	balanceSheets    []BalanceSheet
	nextID           int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		debits:  make(map[string]decimal.Decimal),
		credits: make(map[string]decimal.Decimal),
		nextID:  1,
	}
}

func (m *mockRepository) SumDebitsByNatureGroup(ctx context.Context, natureGroup string, from, to time.Time) (decimal.Decimal, error) {
	m.sumCalls++
	return m.debits[natureGroup], nil
}

func (m *mockRepository) SumCreditsByNatureGroup(ctx context.Context, natureGroup string, from, to time.Time) (decimal.Decimal, error) {
	m.sumCalls++
	return m.credits[natureGroup], nil
}

func (m *mockRepository) CreateIncomeStatement(ctx context.Context, in IncomeStatement) (IncomeStatement, error) {
	in.ID = m.nextID
	m.nextID++
	m.incomeStatements = append(m.incomeStatements, in)
	return in, nil
}

func (m *mockRepository) ListIncomeStatements(ctx context.Context) ([]IncomeStatement, error) {
	return m.incomeStatements, nil
}

func (m *mockRepository) CreateBalanceSheet(ctx context.Context, in BalanceSheet) (BalanceSheet, error) {
	in.ID = m.nextID
	m.nextID++
	m.balanceSheets = append(m.balanceSheets, in)
	return in, nil
}

func (m *mockRepository) ListBalanceSheets(ctx context.Context) ([]BalanceSheet, error) {
	return m.balanceSheets, nil
}

func d(v string) decimal.Decimal {
	out, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return out
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestProfitAndLossRequiresDates(t *testing.T) {
	svc := NewService(newMockRepository())
	from := day("2026-01-01")

	_, err := svc.ProfitAndLoss(context.Background(), &from, nil)
	require.ErrorIs(t, err, ErrDatesRequired)
}

func TestProfitAndLossNetProfit(t *testing.T) {
	repo := newMockRepository()
	repo.debits["Expense"] = d("4000.00")
	repo.credits["Income"] = d("10000.00")
	svc := NewService(repo)

	from, to := day("2026-01-01"), day("2026-03-31")
	pl, err := svc.ProfitAndLoss(context.Background(), &from, &to)
	require.NoError(t, err)

	assert.True(t, d("6000.00").Equal(pl.NetProfit))
	assert.True(t, pl.NetLoss.IsZero())
}

func TestProfitAndLossNetLoss(t *testing.T) {
	repo := newMockRepository()
	repo.debits["Expense"] = d("8000.00")
	repo.credits["Income"] = d("3000.00")
	svc := NewService(repo)

	from, to := day("2026-01-01"), day("2026-03-31")
	pl, err := svc.ProfitAndLoss(context.Background(), &from, &to)
	require.NoError(t, err)

	assert.True(t, pl.NetProfit.IsZero())
	assert.True(t, d("5000.00").Equal(pl.NetLoss))
}

func TestProfitAndLossCaching(t *testing.T) {
	repo := newMockRepository()
	repo.debits["Expense"] = d("100.00")
	repo.credits["Income"] = d("300.00")
	svc := NewService(repo)
	cache := testCache(t)
	svc.SetCache(cache)
	ctx := context.Background()

	from, to := day("2026-01-01"), day("2026-03-31")
	first, err := svc.ProfitAndLoss(ctx, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.sumCalls)

	second, err := svc.ProfitAndLoss(ctx, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.sumCalls, "second read must come from cache")
	assert.True(t, first.NetProfit.Equal(second.NetProfit))

	// Invalidation bumps the version so the next read recomputes.
	require.NoError(t, cache.Invalidate(ctx))
	repo.credits["Income"] = d("500.00")
	third, err := svc.ProfitAndLoss(ctx, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, 4, repo.sumCalls)
	assert.True(t, d("400.00").Equal(third.NetProfit))
}

func TestCreateIncomeStatementValidation(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.CreateIncomeStatement(ctx, IncomeStatement{IncomeType: IncomeTypeSales})
	require.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = svc.CreateIncomeStatement(ctx, IncomeStatement{LedgerID: 1, IncomeType: "Other"})
	require.ErrorIs(t, err, ErrInvalidSnapshot)

	created, err := svc.CreateIncomeStatement(ctx, IncomeStatement{LedgerID: 1, IncomeType: IncomeTypeIndirect, Amount: d("10.00")})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestCreateBalanceSheetValidation(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.CreateBalanceSheet(ctx, BalanceSheet{BalanceType: BalanceTypeAsset})
	require.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = svc.CreateBalanceSheet(ctx, BalanceSheet{LedgerID: 1, BalanceType: "Equity"})
	require.ErrorIs(t, err, ErrInvalidSnapshot)

	created, err := svc.CreateBalanceSheet(ctx, BalanceSheet{LedgerID: 1, BalanceType: BalanceTypeLiability, Amount: d("10.00")})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}
