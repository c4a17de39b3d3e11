package shares

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	users         map[int64]ShareUser
	distributions map[int64]*Distribution
	allocations   map[int64]*Allocation
	payments      []Payment
	nextID        int64

	conflictsLeft int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:         make(map[int64]ShareUser),
		distributions: make(map[int64]*Distribution),
		allocations:   make(map[int64]*Allocation),
		nextID:        1,
	}
}

func (m *mockRepository) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockRepository) CreateShareUser(ctx context.Context, in ShareUser) (ShareUser, error) {
	in.ID = m.id()
	m.users[in.ID] = in
	return in, nil
}

func (m *mockRepository) ListShareUsers(ctx context.Context) ([]ShareUser, error) {
	var out []ShareUser
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockRepository) GetShareUser(ctx context.Context, id int64) (ShareUser, error) {
	u, ok := m.users[id]
	if !ok {
		return ShareUser{}, ErrShareUserNotFound
	}
	return u, nil
}

func (m *mockRepository) GetDistributionByTransactionNo(ctx context.Context, transactionNo string) (Distribution, error) {
	for _, d := range m.distributions {
		if d.TransactionNo == transactionNo {
			return *d, nil
		}
	}
	return Distribution{}, ErrDistributionNotFound
}

func (m *mockRepository) ListDistributions(ctx context.Context) ([]Distribution, error) {
	var out []Distribution
	for _, d := range m.distributions {
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockRepository) ListAllocationsByShareUser(ctx context.Context, shareUserID int64) ([]Allocation, error) {
	var out []Allocation
	for _, a := range m.allocations {
		if a.ShareUserID == shareUserID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockRepository) ListPayments(ctx context.Context, allocationID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range m.payments {
		if p.AllocationID == allocationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &mockTxRepo{mock: m})
}

type mockTxRepo struct {
	mock *mockRepository
}

func (t *mockTxRepo) LatestTransactionNo(ctx context.Context) (string, bool, error) {
	var latest *Distribution
	for _, d := range t.mock.distributions {
		if latest == nil || d.ID > latest.ID {
			latest = d
		}
	}
	if latest == nil {
		return "", false, nil
	}
	return latest.TransactionNo, true, nil
}

func (t *mockTxRepo) InsertDistribution(ctx context.Context, d Distribution) (Distribution, error) {
	if t.mock.conflictsLeft > 0 {
		t.mock.conflictsLeft--
		return Distribution{}, ErrTransactionNoConflict
	}
	d.ID = t.mock.id()
	d.CreatedDate = time.Now()
	stored := d
	t.mock.distributions[d.ID] = &stored
	return d, nil
}

func (t *mockTxRepo) InsertAllocation(ctx context.Context, a Allocation) (Allocation, error) {
	a.ID = t.mock.id()
	stored := a
	t.mock.allocations[a.ID] = &stored
	return a, nil
}

func (t *mockTxRepo) GetAllocationForUpdate(ctx context.Context, id int64) (Allocation, error) {
	a, ok := t.mock.allocations[id]
	if !ok {
		return Allocation{}, ErrAllocationNotFound
	}
	return *a, nil
}

func (t *mockTxRepo) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	p.ID = t.mock.id()
	t.mock.payments = append(t.mock.payments, p)
	return p, nil
}

func (t *mockTxRepo) UpdateAllocationBalance(ctx context.Context, id int64, balance decimal.Decimal, isPaid bool) error {
	a, ok := t.mock.allocations[id]
	if !ok {
		return ErrAllocationNotFound
	}
	a.BalanceAmount = balance
	a.IsPaid = isPaid
	return nil
}

// ============================================================================
// TESTS
// ============================================================================

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

func validInput() DistributionInput {
	return DistributionInput{
		PeriodFrom:   day("2026-01-01"),
		PeriodTo:     day("2026-03-31"),
		Status:       StatusProfit,
		ProfitAmount: d("10000.00"),
		Allocations: []AllocationInput{
			{ShareUserID: 1, Percentage: d("60.00"), ProfitLose: StatusProfit, Amount: d("6000.00"), PercentageAmount: d("6000.00")},
			{ShareUserID: 2, Percentage: d("40.00"), ProfitLose: StatusProfit, Amount: d("4000.00"), PercentageAmount: d("4000.00")},
		},
	}
}

func TestCreateShareUserValidatesCategory(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.CreateShareUser(context.Background(), ShareUser{Name: "Rahim", Category: "staff"})
	require.ErrorIs(t, err, ErrInvalidShareUser)

	u, err := svc.CreateShareUser(context.Background(), ShareUser{Name: "Rahim", Category: CategoryPartners})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
}

func TestCreateDistributionDerivesTotals(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.CreateDistribution(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "1", created.TransactionNo)
	assert.True(t, d("10000.00").Equal(created.TotalAmount))
	assert.True(t, d("100.00").Equal(created.TotalPercentage))
	require.Len(t, created.Allocations, 2)
	for _, a := range created.Allocations {
		assert.True(t, a.Amount.Equal(a.BalanceAmount))
		assert.False(t, a.IsPaid)
	}
}

func TestCreateDistributionSequencesTransactionNo(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.CreateDistribution(ctx, validInput())
	require.NoError(t, err)
	second, err := svc.CreateDistribution(ctx, validInput())
	require.NoError(t, err)

	assert.Equal(t, "1", first.TransactionNo)
	assert.Equal(t, "2", second.TransactionNo)
}

func TestCreateDistributionRetriesOnceOnConflict(t *testing.T) {
	repo := newMockRepository()
	repo.conflictsLeft = 1
	svc := NewService(repo)

	created, err := svc.CreateDistribution(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "1", created.TransactionNo)

	repo.conflictsLeft = 2
	_, err = svc.CreateDistribution(context.Background(), validInput())
	require.ErrorIs(t, err, ErrTransactionNoConflict)
}

func TestCreateDistributionValidation(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	in := validInput()
	in.Allocations = nil
	_, err := svc.CreateDistribution(ctx, in)
	require.ErrorIs(t, err, ErrInvalidDistribution)

	in = validInput()
	in.PeriodTo = day("2025-01-01")
	_, err = svc.CreateDistribution(ctx, in)
	require.ErrorIs(t, err, ErrInvalidDistribution)

	in = validInput()
	in.Status = "breakeven"
	_, err = svc.CreateDistribution(ctx, in)
	require.ErrorIs(t, err, ErrInvalidDistribution)
}

func TestRecordPaymentPartialKeepsAllocationOpen(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.CreateDistribution(ctx, validInput())
	require.NoError(t, err)
	allocation := created.Allocations[0]

	payment, err := svc.RecordPayment(ctx, allocation.ID, d("2500.00"), day("2026-04-05"))
	require.NoError(t, err)
	assert.False(t, payment.IsPaid)

	after := repo.allocations[allocation.ID]
	assert.True(t, d("3500.00").Equal(after.BalanceAmount))
	assert.False(t, after.IsPaid)
}

func TestRecordPaymentOverpayClampsAtZero(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.CreateDistribution(ctx, validInput())
	require.NoError(t, err)
	allocation := created.Allocations[1]

	payment, err := svc.RecordPayment(ctx, allocation.ID, d("5000.00"), day("2026-04-05"))
	require.NoError(t, err)
	assert.True(t, payment.IsPaid)
	assert.True(t, d("5000.00").Equal(payment.PaidAmount))

	after := repo.allocations[allocation.ID]
	assert.True(t, after.BalanceAmount.IsZero())
	assert.True(t, after.IsPaid)
}

func TestRecordPaymentValidation(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, 0, d("10.00"), time.Time{})
	require.ErrorIs(t, err, ErrInvalidPayment)

	_, err = svc.RecordPayment(ctx, 1, d("0"), time.Time{})
	require.ErrorIs(t, err, ErrInvalidPayment)
}

func TestRecordPaymentUnknownAllocation(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.RecordPayment(context.Background(), 99, d("10.00"), day("2026-04-05"))
	require.ErrorIs(t, err, ErrAllocationNotFound)
}
