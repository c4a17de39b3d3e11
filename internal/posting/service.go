package posting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/observability"
)

var (
	// ErrInvalidBundle indicates a malformed compound entry.
	ErrInvalidBundle = errors.New("posting: invalid transaction bundle")
	// ErrTransactionNotFound indicates a missing transaction row.
	ErrTransactionNotFound = errors.New("posting: transaction not found")
	// ErrDatesRequired indicates a query missing mandatory date bounds.
	ErrDatesRequired = errors.New("posting: both from_date and to_date are required")
)

// LedgerDirectory resolves ledger references coming from report
// queries. Implemented by the ledgers service.
type LedgerDirectory interface {
	Resolve(ctx context.Context, idOrName string) (int64, bool, error)
}

// ReportInvalidator drops cached report aggregates after a posting
// commit. Implemented by the reports cache.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

type Service struct {
	repo        Repository
	directory   LedgerDirectory
	invalidator ReportInvalidator
	metrics     *observability.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(repo Repository, directory LedgerDirectory) *Service {
	return &Service{repo: repo, directory: directory, now: time.Now}
}

// SetReportInvalidator injects the report cache hook.
func (s *Service) SetReportInvalidator(inv ReportInvalidator) {
	s.invalidator = inv
}

// SetMetrics injects the Prometheus collectors.
func (s *Service) SetMetrics(m *observability.Metrics) {
	s.metrics = m
}

// SetLogger injects the structured logger.
func (s *Service) SetLogger(l *slog.Logger) {
	s.logger = l
}

// invalidateReports drops the cached report aggregates. A failure does
// not fail the commit; stale entries expire by TTL, so the miss is
// logged and posting continues.
func (s *Service) invalidateReports(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		logger := s.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("report cache invalidation failed", slog.Any("error", err))
	}
}

// PostBundle stamps every leg of the bundle with one freshly allocated
// voucher number and posts them in bundle order through the balance
// engine, all inside one transaction. A non-nil idempotency key makes
// retries return the already-posted bundle instead of double posting.
func (s *Service) PostBundle(ctx context.Context, bundle Bundle, key uuid.UUID) ([]Transaction, error) {
	if bundle == nil {
		return nil, fmt.Errorf("%w: missing bundle", ErrInvalidBundle)
	}
	legs := bundle.Legs()
	for idx, leg := range legs {
		if err := validateLeg(leg); err != nil {
			return nil, fmt.Errorf("%w: leg %d: %v", ErrInvalidBundle, idx+1, err)
		}
	}

	var posted []Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if key != uuid.Nil {
			voucherNo, found, err := tx.FindBundleVoucher(ctx, key)
			if err != nil {
				return err
			}
			if found {
				existing, err := tx.ListByVoucher(ctx, voucherNo)
				if err != nil {
					return err
				}
				posted = existing
				return nil
			}
		}

		voucherNo, err := tx.NextVoucherNo(ctx)
		if err != nil {
			return err
		}
		if key != uuid.Nil {
			if err := tx.LinkBundle(ctx, key, voucherNo); err != nil {
				return err
			}
		}

		posted = make([]Transaction, 0, len(legs))
		for _, leg := range legs {
			row, err := s.postLeg(ctx, tx, leg, voucherNo)
			if err != nil {
				return err
			}
			posted = append(posted, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx)
	s.metrics.AddTransactionsPosted(string(bundle.Kind()), len(posted))
	return posted, nil
}

// postLeg serializes on the ledger row, reads the latest balance of
// the chain and derives the new one. Must run inside the bundle's
// transaction scope.
func (s *Service) postLeg(ctx context.Context, tx TxRepository, leg Leg, voucherNo int64) (Transaction, error) {
	if err := tx.LockLedger(ctx, leg.LedgerID); err != nil {
		return Transaction{}, err
	}
	previous := decimal.Zero
	if latest, found, err := tx.LatestForLedger(ctx, leg.LedgerID); err != nil {
		return Transaction{}, err
	} else if found {
		previous = latest.BalanceAmount
	}
	balance, err := ComputeBalance(previous, leg.DebitCredit, leg.DebitAmount, leg.CreditAmount)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	return tx.InsertTransaction(ctx, Transaction{
		LedgerID:      leg.LedgerID,
		ParticularsID: leg.ParticularsID,
		Date:          leg.Date,
		DebitAmount:   leg.DebitAmount,
		CreditAmount:  leg.CreditAmount,
		BalanceAmount: balance,
		Remarks:       leg.Remarks,
		VoucherNo:     voucherNo,
		RefNo:         leg.RefNo,
		DebitCredit:   leg.DebitCredit,
	})
}

func validateLeg(leg Leg) error {
	if leg.LedgerID == 0 {
		return errors.New("ledger required")
	}
	if leg.ParticularsID == 0 {
		return errors.New("particulars ledger required")
	}
	if leg.Date.IsZero() {
		return errors.New("date required")
	}
	if leg.DebitAmount.IsNegative() || leg.CreditAmount.IsNegative() {
		return errors.New("negative amount")
	}
	switch leg.DebitCredit {
	case SideDebit:
		if leg.DebitAmount.IsZero() {
			return errors.New("debit leg requires a debit_amount")
		}
		if !leg.CreditAmount.IsZero() {
			return errors.New("debit leg cannot carry a credit_amount")
		}
	case SideCredit:
		if leg.CreditAmount.IsZero() {
			return errors.New("credit leg requires a credit_amount")
		}
		if !leg.DebitAmount.IsZero() {
			return errors.New("credit leg cannot carry a debit_amount")
		}
	default:
		return fmt.Errorf("unrecognized debit/credit discriminator %q", leg.DebitCredit)
	}
	return nil
}

// LedgerReport returns a ledger's transactions in an optional date
// range. An unresolvable ledger reference yields an empty list, not an
// error.
func (s *Service) LedgerReport(ctx context.Context, idOrName string, from, to *time.Time) ([]Transaction, error) {
	if idOrName == "" {
		return []Transaction{}, nil
	}
	ledgerID, ok, err := s.directory.Resolve(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Transaction{}, nil
	}
	rows, err := s.repo.ListByLedger(ctx, ledgerID, from, to)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Transaction{}
	}
	return rows, nil
}

// FilterByNatureGroup returns transactions whose ledger is classified
// under the named nature group, within a mandatory date range.
func (s *Service) FilterByNatureGroup(ctx context.Context, natureGroup string, from, to *time.Time) ([]Transaction, error) {
	if from == nil || to == nil {
		return nil, ErrDatesRequired
	}
	rows, err := s.repo.ListByNatureGroup(ctx, natureGroup, *from, *to)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Transaction{}
	}
	return rows, nil
}

// RebuildBalances recomputes a ledger's whole balance chain in
// (date, id) order. Posting never recomputes forward on its own, so a
// backdated insert leaves later balances stale until this runs.
func (s *Service) RebuildBalances(ctx context.Context, ledgerID int64) (int, error) {
	var updated int
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockLedger(ctx, ledgerID); err != nil {
			return err
		}
		chain, err := tx.ChainForLedger(ctx, ledgerID)
		if err != nil {
			return err
		}
		previous := decimal.Zero
		for _, row := range chain {
			balance, err := ComputeBalance(previous, row.DebitCredit, row.DebitAmount, row.CreditAmount)
			if err != nil {
				return err
			}
			if !balance.Equal(row.BalanceAmount) {
				if err := tx.UpdateBalance(ctx, row.ID, balance); err != nil {
					return err
				}
				updated++
			}
			previous = balance
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		s.invalidateReports(ctx)
	}
	return updated, nil
}
