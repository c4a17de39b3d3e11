package cashcount

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// ErrSheetNotFound indicates a missing count sheet.
var ErrSheetNotFound = errors.New("cashcount: sheet not found")

// Repository encapsulates DB operations for cash count sheets.
type Repository interface {
	GetSheet(ctx context.Context, id int64) (Sheet, error)
	ListSheets(ctx context.Context, from, to *time.Time) ([]Sheet, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations available inside one batch
// create/update transaction.
type TxRepository interface {
	InsertSheet(ctx context.Context, s Sheet) (Sheet, error)
	GetSheetForUpdate(ctx context.Context, id int64) (Sheet, error)
	UpdateSheet(ctx context.Context, s Sheet) error
	InsertItem(ctx context.Context, item Item) (Item, error)
	FindItemByCurrency(ctx context.Context, sheetID, currency int64) (Item, bool, error)
	UpdateItem(ctx context.Context, item Item) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) GetSheet(ctx context.Context, id int64) (Sheet, error) {
	row := r.db.QueryRow(ctx, `SELECT id, created_date, voucher_number, amount, transaction_type
 FROM cash_count_sheets WHERE id=$1`, id)
	s, err := scanSheet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sheet{}, ErrSheetNotFound
		}
		return Sheet{}, err
	}
	items, err := r.itemsForSheet(ctx, r.db, s.ID)
	if err != nil {
		return Sheet{}, err
	}
	s.Items = items
	return s, nil
}

func (r *repository) ListSheets(ctx context.Context, from, to *time.Time) ([]Sheet, error) {
	sql := `SELECT id, created_date, voucher_number, amount, transaction_type FROM cash_count_sheets`
	var args []any
	if from != nil && to != nil {
		sql += ` WHERE created_date BETWEEN $1 AND $2`
		args = append(args, *from, *to)
	}
	sql += ` ORDER BY created_date DESC, id DESC`
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Sheet
	for rows.Next() {
		s, err := scanSheet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := r.itemsForSheet(ctx, r.db, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *repository) itemsForSheet(ctx context.Context, q querier, sheetID int64) ([]Item, error) {
	rows, err := q.Query(ctx, `SELECT id, ref_id, created_date, currency, nos, amount
 FROM cash_count_sheet_items WHERE ref_id=$1 ORDER BY currency DESC`, sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanSheet(row pgx.Row) (Sheet, error) {
	var s Sheet
	var amount string
	if err := row.Scan(&s.ID, &s.CreatedDate, &s.VoucherNumber, &amount, &s.TransactionType); err != nil {
		return Sheet{}, err
	}
	var err error
	if s.Amount, err = decimal.NewFromString(amount); err != nil {
		return Sheet{}, err
	}
	return s, nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	var amount string
	if err := row.Scan(&item.ID, &item.SheetID, &item.CreatedDate, &item.Currency, &item.Nos, &amount); err != nil {
		return Item{}, err
	}
	var err error
	if item.Amount, err = decimal.NewFromString(amount); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertSheet(ctx context.Context, s Sheet) (Sheet, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO cash_count_sheets (created_date, voucher_number, amount, transaction_type)
 VALUES ($1,$2,$3,$4) RETURNING id`,
		s.CreatedDate, s.VoucherNumber, s.Amount.StringFixed(2), string(s.TransactionType)).Scan(&s.ID)
	if err != nil {
		return Sheet{}, err
	}
	return s, nil
}

func (r *txRepository) GetSheetForUpdate(ctx context.Context, id int64) (Sheet, error) {
	row := r.tx.QueryRow(ctx, `SELECT id, created_date, voucher_number, amount, transaction_type
 FROM cash_count_sheets WHERE id=$1 FOR UPDATE`, id)
	s, err := scanSheet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sheet{}, ErrSheetNotFound
		}
		return Sheet{}, err
	}
	return s, nil
}

func (r *txRepository) UpdateSheet(ctx context.Context, s Sheet) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE cash_count_sheets SET voucher_number=$2, amount=$3, transaction_type=$4 WHERE id=$1`,
		s.ID, s.VoucherNumber, s.Amount.StringFixed(2), string(s.TransactionType))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSheetNotFound
	}
	return nil
}

func (r *txRepository) InsertItem(ctx context.Context, item Item) (Item, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO cash_count_sheet_items (ref_id, created_date, currency, nos, amount)
 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		item.SheetID, item.CreatedDate, item.Currency, item.Nos, item.Amount.StringFixed(2)).Scan(&item.ID)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *txRepository) FindItemByCurrency(ctx context.Context, sheetID, currency int64) (Item, bool, error) {
	row := r.tx.QueryRow(ctx, `SELECT id, ref_id, created_date, currency, nos, amount
 FROM cash_count_sheet_items WHERE ref_id=$1 AND currency=$2 LIMIT 1`, sheetID, currency)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, false, nil
		}
		return Item{}, false, err
	}
	return item, true, nil
}

func (r *txRepository) UpdateItem(ctx context.Context, item Item) error {
	_, err := r.tx.Exec(ctx, `UPDATE cash_count_sheet_items SET nos=$2, amount=$3 WHERE id=$1`,
		item.ID, item.Nos, item.Amount.StringFixed(2))
	return err
}
