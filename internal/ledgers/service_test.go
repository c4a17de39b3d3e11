package ledgers

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	natureGroups map[int64]NatureGroup
	mainGroups   map[int64]MainGroup
	ledgers      map[int64]Ledger
	nextID       int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		natureGroups: make(map[int64]NatureGroup),
		mainGroups:   make(map[int64]MainGroup),
		ledgers:      make(map[int64]Ledger),
		nextID:       1,
	}
}

func (m *mockRepository) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockRepository) CreateNatureGroup(ctx context.Context, name string) (NatureGroup, error) {
	for _, g := range m.natureGroups {
		if g.Name == name {
			return NatureGroup{}, ErrGroupExists
		}
	}
	g := NatureGroup{ID: m.id(), Name: name}
	m.natureGroups[g.ID] = g
	return g, nil
}

func (m *mockRepository) ListNatureGroups(ctx context.Context) ([]NatureGroup, error) {
	var out []NatureGroup
	for _, g := range m.natureGroups {
		out = append(out, g)
	}
	return out, nil
}

func (m *mockRepository) CreateMainGroup(ctx context.Context, name string, natureGroupID int64) (MainGroup, error) {
	if _, ok := m.natureGroups[natureGroupID]; !ok {
		return MainGroup{}, ErrGroupNotFound
	}
	g := MainGroup{ID: m.id(), Name: name, NatureGroupID: natureGroupID}
	m.mainGroups[g.ID] = g
	return g, nil
}

func (m *mockRepository) ListMainGroups(ctx context.Context) ([]MainGroup, error) {
	var out []MainGroup
	for _, g := range m.mainGroups {
		out = append(out, g)
	}
	return out, nil
}

func (m *mockRepository) CreateLedger(ctx context.Context, in Ledger) (Ledger, error) {
	if _, ok := m.mainGroups[in.MainGroupID]; !ok {
		return Ledger{}, ErrGroupNotFound
	}
	in.ID = m.id()
	m.ledgers[in.ID] = in
	return in, nil
}

func (m *mockRepository) GetLedger(ctx context.Context, id int64) (Ledger, error) {
	l, ok := m.ledgers[id]
	if !ok {
		return Ledger{}, ErrLedgerNotFound
	}
	return l, nil
}

func (m *mockRepository) FindLedgerByName(ctx context.Context, name string) (Ledger, error) {
	for _, l := range m.ledgers {
		if strings.EqualFold(l.Name, name) {
			return l, nil
		}
	}
	return Ledger{}, ErrLedgerNotFound
}

func (m *mockRepository) ListLedgers(ctx context.Context) ([]Ledger, error) {
	var out []Ledger
	for _, l := range m.ledgers {
		out = append(out, l)
	}
	return out, nil
}

func (m *mockRepository) ListLedgersByGroupName(ctx context.Context, groupName string) ([]Ledger, error) {
	var out []Ledger
	for _, l := range m.ledgers {
		g, ok := m.mainGroups[l.MainGroupID]
		if ok && strings.EqualFold(g.Name, groupName) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockRepository) SearchLedgersByName(ctx context.Context, fragment string) ([]Ledger, error) {
	var out []Ledger
	for _, l := range m.ledgers {
		if strings.Contains(strings.ToLower(l.Name), strings.ToLower(fragment)) {
			out = append(out, l)
		}
	}
	return out, nil
}

func seedLedger(t *testing.T, svc *Service, name string) Ledger {
	t.Helper()
	ctx := context.Background()
	nature, err := svc.CreateNatureGroup(ctx, "Asset "+name)
	require.NoError(t, err)
	main, err := svc.CreateMainGroup(ctx, "Group "+name, nature.ID)
	require.NoError(t, err)
	ledger, err := svc.CreateLedger(ctx, CreateLedgerInput{
		Name:           name,
		MainGroupID:    main.ID,
		OpeningBalance: decimal.Zero,
		DebitCredit:    SideDebit,
	})
	require.NoError(t, err)
	return ledger
}

func TestCreateLedgerValidation(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.CreateLedger(ctx, CreateLedgerInput{MainGroupID: 1})
	require.Error(t, err)

	_, err = svc.CreateLedger(ctx, CreateLedgerInput{Name: "Cash"})
	require.Error(t, err)

	_, err = svc.CreateLedger(ctx, CreateLedgerInput{Name: "Cash", MainGroupID: 1, DebitCredit: "BOTH"})
	require.Error(t, err)
}

func TestCreateLedgerDefaultsDate(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	ledger := seedLedger(t, svc, "Cash")
	assert.False(t, ledger.Date.IsZero())
}

func TestResolveByNumericID(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	ledger := seedLedger(t, svc, "Cash")

	id, ok, err := svc.Resolve(context.Background(), strconv.FormatInt(ledger.ID, 10))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ledger.ID, id)
}

func TestResolveByName(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	ledger := seedLedger(t, svc, "City Bank")

	id, ok, err := svc.Resolve(context.Background(), "city bank")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ledger.ID, id)
}

func TestResolveUnresolvable(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, ok, err := svc.Resolve(ctx, "999")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = svc.Resolve(ctx, "No Such Ledger")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateNatureGroupDuplicate(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.CreateNatureGroup(ctx, "Asset")
	require.NoError(t, err)
	_, err = svc.CreateNatureGroup(ctx, "Asset")
	require.ErrorIs(t, err, ErrGroupExists)
}
