package posting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/ledgers"
	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// Repository encapsulates DB operations for the posting engine.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListByLedger(ctx context.Context, ledgerID int64, from, to *time.Time) ([]Transaction, error)
	ListByNatureGroup(ctx context.Context, natureGroup string, from, to time.Time) ([]Transaction, error)
}

// TxRepository exposes the operations available inside one posting
// transaction. Balance reads for a ledger are only valid after
// LockLedger has serialized access to that ledger's chain.
type TxRepository interface {
	LockLedger(ctx context.Context, ledgerID int64) error
	LatestForLedger(ctx context.Context, ledgerID int64) (Transaction, bool, error)
	NextVoucherNo(ctx context.Context) (int64, error)
	InsertTransaction(ctx context.Context, t Transaction) (Transaction, error)
	FindBundleVoucher(ctx context.Context, key uuid.UUID) (int64, bool, error)
	LinkBundle(ctx context.Context, key uuid.UUID, voucherNo int64) error
	ListByVoucher(ctx context.Context, voucherNo int64) ([]Transaction, error)
	ChainForLedger(ctx context.Context, ledgerID int64) ([]Transaction, error)
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error
}

// ErrBundleConflict indicates an idempotency key was already linked to
// a posted bundle.
var ErrBundleConflict = errors.New("posting: bundle already posted for idempotency key")

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const txnColumns = `t.id, t.ledger_id, t.particulars_id, t.date, t.debit_amount, t.credit_amount,
 t.balance_amount, t.remarks, t.voucher_no, t.ref_no, t.debit_credit, t.created_at,
 l.name, p.name`

const txnJoin = `FROM transactions t
 JOIN ledgers l ON l.id = t.ledger_id
 JOIN ledgers p ON p.id = t.particulars_id`

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) ListByLedger(ctx context.Context, ledgerID int64, from, to *time.Time) ([]Transaction, error) {
	sql := `SELECT ` + txnColumns + ` ` + txnJoin + ` WHERE t.ledger_id=$1`
	args := []any{ledgerID}
	switch {
	case from != nil && to != nil:
		sql += ` AND t.date BETWEEN $2 AND $3`
		args = append(args, *from, *to)
	case from != nil:
		sql += ` AND t.date >= $2`
		args = append(args, *from)
	case to != nil:
		sql += ` AND t.date <= $2`
		args = append(args, *to)
	}
	sql += ` ORDER BY t.date ASC, t.id ASC`
	return queryTransactions(ctx, r.db, sql, args...)
}

func (r *repository) ListByNatureGroup(ctx context.Context, natureGroup string, from, to time.Time) ([]Transaction, error) {
	sql := `SELECT ` + txnColumns + ` ` + txnJoin + `
 JOIN main_groups m ON m.id = l.main_group_id
 JOIN nature_groups n ON n.id = m.nature_group_id
 WHERE LOWER(n.name) = LOWER($1) AND t.date BETWEEN $2 AND $3
 ORDER BY t.date ASC, t.id ASC`
	return queryTransactions(ctx, r.db, sql, natureGroup, from, to)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryTransactions(ctx context.Context, q querier, sql string, args ...any) ([]Transaction, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	var debit, credit, balance string
	var ledgerName, particularsName string
	if err := row.Scan(&t.ID, &t.LedgerID, &t.ParticularsID, &t.Date, &debit, &credit,
		&balance, &t.Remarks, &t.VoucherNo, &t.RefNo, &t.DebitCredit, &t.CreatedAt,
		&ledgerName, &particularsName); err != nil {
		return Transaction{}, err
	}
	var err error
	if t.DebitAmount, err = decimal.NewFromString(debit); err != nil {
		return Transaction{}, err
	}
	if t.CreditAmount, err = decimal.NewFromString(credit); err != nil {
		return Transaction{}, err
	}
	if t.BalanceAmount, err = decimal.NewFromString(balance); err != nil {
		return Transaction{}, err
	}
	t.Ledger = &ledgers.Ledger{ID: t.LedgerID, Name: ledgerName}
	t.Particulars = &ledgers.Ledger{ID: t.ParticularsID, Name: particularsName}
	return t, nil
}

type txRepository struct {
	tx pgx.Tx
}

// LockLedger takes a row lock on the ledger so concurrent inserts to
// the same chain derive balances one at a time.
func (r *txRepository) LockLedger(ctx context.Context, ledgerID int64) error {
	var id int64
	err := r.tx.QueryRow(ctx, `SELECT id FROM ledgers WHERE id=$1 FOR UPDATE`, ledgerID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledgers.ErrLedgerNotFound
		}
		return err
	}
	return nil
}

func (r *txRepository) LatestForLedger(ctx context.Context, ledgerID int64) (Transaction, bool, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+txnColumns+` `+txnJoin+`
 WHERE t.ledger_id=$1 ORDER BY t.date DESC, t.id DESC LIMIT 1`, ledgerID)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, false, nil
		}
		return Transaction{}, false, err
	}
	return t, true, nil
}

// NextVoucherNo bumps the single-row counter. The row lock taken by
// UPDATE linearizes allocation across concurrent bundles.
func (r *txRepository) NextVoucherNo(ctx context.Context) (int64, error) {
	var next int64
	err := r.tx.QueryRow(ctx, `UPDATE voucher_counter SET value = value + 1 WHERE id = 1 RETURNING value`).Scan(&next)
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *txRepository) InsertTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO transactions
 (ledger_id, particulars_id, date, debit_amount, credit_amount, balance_amount, remarks, voucher_no, ref_no, debit_credit)
 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id, created_at`,
		t.LedgerID, t.ParticularsID, t.Date, t.DebitAmount.StringFixed(2), t.CreditAmount.StringFixed(2),
		t.BalanceAmount.StringFixed(2), t.Remarks, t.VoucherNo, t.RefNo, string(t.DebitCredit)).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (r *txRepository) FindBundleVoucher(ctx context.Context, key uuid.UUID) (int64, bool, error) {
	var voucherNo int64
	err := r.tx.QueryRow(ctx, `SELECT voucher_no FROM posting_sources WHERE idempotency_key=$1`, key).Scan(&voucherNo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return voucherNo, true, nil
}

func (r *txRepository) LinkBundle(ctx context.Context, key uuid.UUID, voucherNo int64) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO posting_sources (idempotency_key, voucher_no) VALUES ($1,$2)`, key, voucherNo)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrBundleConflict
		}
		return err
	}
	return nil
}

func (r *txRepository) ListByVoucher(ctx context.Context, voucherNo int64) ([]Transaction, error) {
	return queryTransactions(ctx, r.tx, `SELECT `+txnColumns+` `+txnJoin+`
 WHERE t.voucher_no=$1 ORDER BY t.id ASC`, voucherNo)
}

// ChainForLedger returns the ledger's full history in posting order
// for forward recomputation.
func (r *txRepository) ChainForLedger(ctx context.Context, ledgerID int64) ([]Transaction, error) {
	return queryTransactions(ctx, r.tx, `SELECT `+txnColumns+` `+txnJoin+`
 WHERE t.ledger_id=$1 ORDER BY t.date ASC, t.id ASC`, ledgerID)
}

func (r *txRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE transactions SET balance_amount=$2 WHERE id=$1`, id, balance.StringFixed(2))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}
