package cashcount

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	sheets map[int64]*Sheet
	items  map[int64]*Item
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		sheets: make(map[int64]*Sheet),
		items:  make(map[int64]*Item),
		nextID: 1,
	}
}

func (m *mockRepository) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockRepository) GetSheet(ctx context.Context, id int64) (Sheet, error) {
	s, ok := m.sheets[id]
	if !ok {
		return Sheet{}, ErrSheetNotFound
	}
	out := *s
	out.Items = nil
	for _, item := range m.items {
		if item.SheetID == id {
			out.Items = append(out.Items, *item)
		}
	}
	return out, nil
}

func (m *mockRepository) ListSheets(ctx context.Context, from, to *time.Time) ([]Sheet, error) {
	var out []Sheet
	for id := range m.sheets {
		s, _ := m.GetSheet(ctx, id)
		if from != nil && s.CreatedDate.Before(*from) {
			continue
		}
		if to != nil && s.CreatedDate.After(*to) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &mockTxRepo{mock: m})
}

type mockTxRepo struct {
	mock *mockRepository
}

func (t *mockTxRepo) InsertSheet(ctx context.Context, s Sheet) (Sheet, error) {
	s.ID = t.mock.id()
	stored := s
	stored.Items = nil
	t.mock.sheets[s.ID] = &stored
	s.Items = nil
	return s, nil
}

func (t *mockTxRepo) GetSheetForUpdate(ctx context.Context, id int64) (Sheet, error) {
	s, ok := t.mock.sheets[id]
	if !ok {
		return Sheet{}, ErrSheetNotFound
	}
	return *s, nil
}

func (t *mockTxRepo) UpdateSheet(ctx context.Context, s Sheet) error {
	stored, ok := t.mock.sheets[s.ID]
	if !ok {
		return ErrSheetNotFound
	}
	stored.VoucherNumber = s.VoucherNumber
	stored.Amount = s.Amount
	stored.TransactionType = s.TransactionType
	return nil
}

func (t *mockTxRepo) InsertItem(ctx context.Context, item Item) (Item, error) {
	item.ID = t.mock.id()
	stored := item
	t.mock.items[item.ID] = &stored
	return item, nil
}

func (t *mockTxRepo) FindItemByCurrency(ctx context.Context, sheetID, currency int64) (Item, bool, error) {
	for _, item := range t.mock.items {
		if item.SheetID == sheetID && item.Currency == currency {
			return *item, true, nil
		}
	}
	return Item{}, false, nil
}

func (t *mockTxRepo) UpdateItem(ctx context.Context, item Item) error {
	stored, ok := t.mock.items[item.ID]
	if !ok {
		return ErrSheetNotFound
	}
	stored.Nos = item.Nos
	stored.Amount = item.Amount
	return nil
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

func sampleSheet(voucher int64) Sheet {
	return Sheet{
		CreatedDate:     day("2026-05-01"),
		VoucherNumber:   voucher,
		Amount:          d("1500.00"),
		TransactionType: SheetPayIn,
		Items: []Item{
			{Currency: 1000, Nos: 1, Amount: d("1000.00")},
			{Currency: 500, Nos: 1, Amount: d("500.00")},
		},
	}
}

func TestCreateBatchPersistsSheetsWithItems(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.CreateBatch(context.Background(), []Sheet{sampleSheet(1), sampleSheet(2)})
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, s := range created {
		assert.NotZero(t, s.ID)
		assert.Len(t, s.Items, 2)
		for _, item := range s.Items {
			assert.Equal(t, s.ID, item.SheetID)
			assert.Equal(t, s.CreatedDate, item.CreatedDate)
		}
	}
}

func TestCreateBatchRejectsEmpty(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.CreateBatch(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidSheet)
}

func TestCreateBatchRejectsWholeBatchOnBadEntry(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	bad := sampleSheet(2)
	bad.TransactionType = "transfer"

	_, err := svc.CreateBatch(context.Background(), []Sheet{sampleSheet(1), bad})
	require.ErrorIs(t, err, ErrInvalidSheet)
	assert.Empty(t, repo.sheets)
}

func TestUpdateUpsertsItemsByCurrency(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.CreateBatch(ctx, []Sheet{sampleSheet(7)})
	require.NoError(t, err)
	sheet := created[0]

	sheet.Amount = d("2100.00")
	sheet.Items = []Item{
		{Currency: 1000, Nos: 2, Amount: d("2000.00")},
		{Currency: 100, Nos: 1, Amount: d("100.00")},
	}

	updated, err := svc.Update(ctx, sheet)
	require.NoError(t, err)
	assert.True(t, d("2100.00").Equal(updated.Amount))
	require.Len(t, updated.Items, 3)

	byCurrency := make(map[int64]Item, len(updated.Items))
	for _, item := range updated.Items {
		byCurrency[item.Currency] = item
	}
	assert.Equal(t, int64(2), byCurrency[1000].Nos)
	assert.True(t, d("2000.00").Equal(byCurrency[1000].Amount))
	assert.Equal(t, int64(1), byCurrency[500].Nos)
	assert.Equal(t, int64(1), byCurrency[100].Nos)
}

func TestUpdateUnknownSheet(t *testing.T) {
	svc := NewService(newMockRepository())

	sheet := sampleSheet(1)
	sheet.ID = 42
	_, err := svc.Update(context.Background(), sheet)
	require.ErrorIs(t, err, ErrSheetNotFound)
}

func TestListFiltersByDateRange(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	early := sampleSheet(1)
	early.CreatedDate = day("2026-05-01")
	late := sampleSheet(2)
	late.CreatedDate = day("2026-06-15")
	_, err := svc.CreateBatch(ctx, []Sheet{early, late})
	require.NoError(t, err)

	from, to := day("2026-06-01"), day("2026-06-30")
	sheets, err := svc.List(ctx, &from, &to)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, int64(2), sheets[0].VoucherNumber)
}
