package cashcount

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSheet indicates malformed count sheet input.
var ErrInvalidSheet = errors.New("cashcount: invalid sheet")

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func validateSheet(s Sheet) error {
	switch s.TransactionType {
	case SheetPayIn, SheetPayOut:
	default:
		return fmt.Errorf("%w: invalid transaction_type %q", ErrInvalidSheet, s.TransactionType)
	}
	if s.Amount.IsNegative() {
		return fmt.Errorf("%w: negative amount", ErrInvalidSheet)
	}
	for idx, item := range s.Items {
		if item.Currency <= 0 {
			return fmt.Errorf("%w: item %d invalid currency", ErrInvalidSheet, idx)
		}
		if item.Nos < 0 {
			return fmt.Errorf("%w: item %d negative count", ErrInvalidSheet, idx)
		}
		if item.Amount.IsNegative() {
			return fmt.Errorf("%w: item %d negative amount", ErrInvalidSheet, idx)
		}
	}
	return nil
}

// CreateBatch persists a list of sheets with their items as one atomic
// unit; a malformed entry rejects the whole batch.
func (s *Service) CreateBatch(ctx context.Context, entries []Sheet) ([]Sheet, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrInvalidSheet)
	}
	for _, entry := range entries {
		if err := validateSheet(entry); err != nil {
			return nil, err
		}
	}

	created := make([]Sheet, 0, len(entries))
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, entry := range entries {
			if entry.CreatedDate.IsZero() {
				entry.CreatedDate = s.now()
			}
			sheet, err := tx.InsertSheet(ctx, entry)
			if err != nil {
				return err
			}
			for _, item := range entry.Items {
				if item.CreatedDate.IsZero() {
					item.CreatedDate = sheet.CreatedDate
				}
				item.SheetID = sheet.ID
				inserted, err := tx.InsertItem(ctx, item)
				if err != nil {
					return err
				}
				sheet.Items = append(sheet.Items, inserted)
			}
			created = append(created, sheet)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update rewrites the sheet header and upserts items: an incoming item
// matching an existing (sheet, currency) pair updates it, anything
// else inserts.
func (s *Service) Update(ctx context.Context, sheet Sheet) (Sheet, error) {
	if sheet.ID == 0 {
		return Sheet{}, fmt.Errorf("%w: sheet id required", ErrInvalidSheet)
	}
	if err := validateSheet(sheet); err != nil {
		return Sheet{}, err
	}

	var updated Sheet
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetSheetForUpdate(ctx, sheet.ID)
		if err != nil {
			return err
		}
		current.VoucherNumber = sheet.VoucherNumber
		current.Amount = sheet.Amount
		current.TransactionType = sheet.TransactionType
		if err := tx.UpdateSheet(ctx, current); err != nil {
			return err
		}
		for _, item := range sheet.Items {
			existing, found, err := tx.FindItemByCurrency(ctx, current.ID, item.Currency)
			if err != nil {
				return err
			}
			if found {
				existing.Nos = item.Nos
				existing.Amount = item.Amount
				if err := tx.UpdateItem(ctx, existing); err != nil {
					return err
				}
				continue
			}
			if item.CreatedDate.IsZero() {
				item.CreatedDate = s.now()
			}
			item.SheetID = current.ID
			if _, err := tx.InsertItem(ctx, item); err != nil {
				return err
			}
		}
		updated = current
		return nil
	})
	if err != nil {
		return Sheet{}, err
	}
	return s.repo.GetSheet(ctx, updated.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (Sheet, error) {
	return s.repo.GetSheet(ctx, id)
}

func (s *Service) List(ctx context.Context, from, to *time.Time) ([]Sheet, error) {
	sheets, err := s.repo.ListSheets(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if sheets == nil {
		sheets = []Sheet{}
	}
	return sheets, nil
}
