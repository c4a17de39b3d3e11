package ledgers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrLedgerNotFound indicates a missing ledger.
	ErrLedgerNotFound = errors.New("ledgers: ledger not found")
	// ErrGroupExists indicates a duplicate group name.
	ErrGroupExists = errors.New("ledgers: group name already exists")
	// ErrGroupNotFound indicates a missing classification group.
	ErrGroupNotFound = errors.New("ledgers: group not found")
)

// CreateLedgerInput groups fields for registering a new account.
type CreateLedgerInput struct {
	Name           string
	MobileNo       string
	OpeningBalance decimal.Decimal
	Date           time.Time
	MainGroupID    int64
	DebitCredit    Side
}

func (in CreateLedgerInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("ledgers: name required")
	}
	if in.MainGroupID == 0 {
		return errors.New("ledgers: main group required")
	}
	switch in.DebitCredit {
	case "", SideDebit, SideCredit:
	default:
		return fmt.Errorf("ledgers: invalid orientation %q", in.DebitCredit)
	}
	return nil
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) CreateNatureGroup(ctx context.Context, name string) (NatureGroup, error) {
	if strings.TrimSpace(name) == "" {
		return NatureGroup{}, errors.New("ledgers: nature group name required")
	}
	return s.repo.CreateNatureGroup(ctx, name)
}

func (s *Service) ListNatureGroups(ctx context.Context) ([]NatureGroup, error) {
	return s.repo.ListNatureGroups(ctx)
}

func (s *Service) CreateMainGroup(ctx context.Context, name string, natureGroupID int64) (MainGroup, error) {
	if strings.TrimSpace(name) == "" {
		return MainGroup{}, errors.New("ledgers: main group name required")
	}
	if natureGroupID == 0 {
		return MainGroup{}, errors.New("ledgers: nature group required")
	}
	return s.repo.CreateMainGroup(ctx, name, natureGroupID)
}

func (s *Service) ListMainGroups(ctx context.Context) ([]MainGroup, error) {
	return s.repo.ListMainGroups(ctx)
}

func (s *Service) CreateLedger(ctx context.Context, in CreateLedgerInput) (Ledger, error) {
	if err := in.validate(); err != nil {
		return Ledger{}, err
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	return s.repo.CreateLedger(ctx, Ledger{
		Name:           in.Name,
		MobileNo:       in.MobileNo,
		OpeningBalance: in.OpeningBalance,
		Date:           date,
		MainGroupID:    in.MainGroupID,
		DebitCredit:    in.DebitCredit,
	})
}

func (s *Service) GetLedger(ctx context.Context, id int64) (Ledger, error) {
	return s.repo.GetLedger(ctx, id)
}

func (s *Service) ListLedgers(ctx context.Context) ([]Ledger, error) {
	return s.repo.ListLedgers(ctx)
}

func (s *Service) ListLedgersByGroupName(ctx context.Context, groupName string) ([]Ledger, error) {
	return s.repo.ListLedgersByGroupName(ctx, groupName)
}

func (s *Service) SearchLedgersByName(ctx context.Context, fragment string) ([]Ledger, error) {
	return s.repo.SearchLedgersByName(ctx, fragment)
}

// Resolve maps a ledger identifier-or-name to a ledger ID. The boolean
// reports whether the ledger could be resolved at all; an unresolvable
// reference is not an error for report queries.
func (s *Service) Resolve(ctx context.Context, idOrName string) (int64, bool, error) {
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		if _, err := s.repo.GetLedger(ctx, id); err != nil {
			if errors.Is(err, ErrLedgerNotFound) {
				return 0, false, nil
			}
			return 0, false, err
		}
		return id, true, nil
	}
	ledger, err := s.repo.FindLedgerByName(ctx, idOrName)
	if err != nil {
		if errors.Is(err, ErrLedgerNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return ledger.ID, true, nil
}
