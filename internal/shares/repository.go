package shares

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// Repository encapsulates DB operations for share management.
type Repository interface {
	CreateShareUser(ctx context.Context, in ShareUser) (ShareUser, error)
	ListShareUsers(ctx context.Context) ([]ShareUser, error)
	GetShareUser(ctx context.Context, id int64) (ShareUser, error)
	GetDistributionByTransactionNo(ctx context.Context, transactionNo string) (Distribution, error)
	ListDistributions(ctx context.Context) ([]Distribution, error)
	ListAllocationsByShareUser(ctx context.Context, shareUserID int64) ([]Allocation, error)
	ListPayments(ctx context.Context, allocationID int64) ([]Payment, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations available inside one share
// transaction.
type TxRepository interface {
	LatestTransactionNo(ctx context.Context) (string, bool, error)
	InsertDistribution(ctx context.Context, d Distribution) (Distribution, error)
	InsertAllocation(ctx context.Context, a Allocation) (Allocation, error)
	GetAllocationForUpdate(ctx context.Context, id int64) (Allocation, error)
	InsertPayment(ctx context.Context, p Payment) (Payment, error)
	UpdateAllocationBalance(ctx context.Context, id int64, balance decimal.Decimal, isPaid bool) error
}

var (
	// ErrDistributionNotFound indicates a missing distribution.
	ErrDistributionNotFound = errors.New("shares: distribution not found")
	// ErrAllocationNotFound indicates a missing share allocation.
	ErrAllocationNotFound = errors.New("shares: allocation not found")
	// ErrShareUserNotFound indicates a missing shareholder.
	ErrShareUserNotFound = errors.New("shares: share user not found")
	// ErrTransactionNoConflict indicates a duplicate transaction_no
	// under a concurrent allocation race.
	ErrTransactionNoConflict = errors.New("shares: transaction_no already allocated")
)

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) CreateShareUser(ctx context.Context, in ShareUser) (ShareUser, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO share_users (name, mobile_no, category, profitlose_share, address)
 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		in.Name, in.MobileNo, string(in.Category), in.ProfitLoseShare.StringFixed(2), in.Address).Scan(&in.ID)
	if err != nil {
		return ShareUser{}, err
	}
	return in, nil
}

func (r *repository) ListShareUsers(ctx context.Context) ([]ShareUser, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, mobile_no, category, profitlose_share, address
 FROM share_users ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ShareUser
	for rows.Next() {
		u, err := scanShareUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repository) GetShareUser(ctx context.Context, id int64) (ShareUser, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, mobile_no, category, profitlose_share, address
 FROM share_users WHERE id=$1`, id)
	u, err := scanShareUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ShareUser{}, ErrShareUserNotFound
		}
		return ShareUser{}, err
	}
	return u, nil
}

func scanShareUser(row pgx.Row) (ShareUser, error) {
	var u ShareUser
	var share string
	if err := row.Scan(&u.ID, &u.Name, &u.MobileNo, &u.Category, &share, &u.Address); err != nil {
		return ShareUser{}, err
	}
	var err error
	if u.ProfitLoseShare, err = decimal.NewFromString(share); err != nil {
		return ShareUser{}, err
	}
	return u, nil
}

const distributionColumns = `id, created_date, transaction_no, period_from, period_to,
 total_percentage, total_amount, status, profit_amount, loss_amount`

func (r *repository) GetDistributionByTransactionNo(ctx context.Context, transactionNo string) (Distribution, error) {
	row := r.db.QueryRow(ctx, `SELECT `+distributionColumns+` FROM profit_loss_share_transactions
 WHERE transaction_no=$1`, transactionNo)
	d, err := scanDistribution(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Distribution{}, ErrDistributionNotFound
		}
		return Distribution{}, err
	}
	allocations, err := r.allocationsForDistribution(ctx, d.ID)
	if err != nil {
		return Distribution{}, err
	}
	d.Allocations = allocations
	return d, nil
}

func (r *repository) ListDistributions(ctx context.Context) ([]Distribution, error) {
	rows, err := r.db.Query(ctx, `SELECT `+distributionColumns+` FROM profit_loss_share_transactions
 ORDER BY created_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Distribution
	for rows.Next() {
		d, err := scanDistribution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDistribution(row pgx.Row) (Distribution, error) {
	var d Distribution
	var totalPct, totalAmt, profitAmt, lossAmt string
	if err := row.Scan(&d.ID, &d.CreatedDate, &d.TransactionNo, &d.PeriodFrom, &d.PeriodTo,
		&totalPct, &totalAmt, &d.Status, &profitAmt, &lossAmt); err != nil {
		return Distribution{}, err
	}
	var err error
	if d.TotalPercentage, err = decimal.NewFromString(totalPct); err != nil {
		return Distribution{}, err
	}
	if d.TotalAmount, err = decimal.NewFromString(totalAmt); err != nil {
		return Distribution{}, err
	}
	if d.ProfitAmount, err = decimal.NewFromString(profitAmt); err != nil {
		return Distribution{}, err
	}
	if d.LossAmount, err = decimal.NewFromString(lossAmt); err != nil {
		return Distribution{}, err
	}
	return d, nil
}

const allocationColumns = `a.id, a.transaction_id, a.share_user_id, u.name, u.category,
 a.percentage, a.profit_lose, a.amount, a.percentage_amount, a.balance_amount, a.is_paid`

const allocationJoin = `FROM share_user_transactions a JOIN share_users u ON u.id = a.share_user_id`

func (r *repository) allocationsForDistribution(ctx context.Context, distributionID int64) ([]Allocation, error) {
	return queryAllocations(ctx, r.db, `SELECT `+allocationColumns+` `+allocationJoin+`
 WHERE a.transaction_id=$1 ORDER BY a.id ASC`, distributionID)
}

func (r *repository) ListAllocationsByShareUser(ctx context.Context, shareUserID int64) ([]Allocation, error) {
	return queryAllocations(ctx, r.db, `SELECT `+allocationColumns+` `+allocationJoin+`
 WHERE a.share_user_id=$1 ORDER BY a.id ASC`, shareUserID)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryAllocations(ctx context.Context, q querier, sql string, args ...any) ([]Allocation, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAllocation(row pgx.Row) (Allocation, error) {
	var a Allocation
	var u ShareUser
	var pct, amount, pctAmount, balance string
	if err := row.Scan(&a.ID, &a.DistributionID, &a.ShareUserID, &u.Name, &u.Category,
		&pct, &a.ProfitLose, &amount, &pctAmount, &balance, &a.IsPaid); err != nil {
		return Allocation{}, err
	}
	var err error
	if a.Percentage, err = decimal.NewFromString(pct); err != nil {
		return Allocation{}, err
	}
	if a.Amount, err = decimal.NewFromString(amount); err != nil {
		return Allocation{}, err
	}
	if a.PercentageAmount, err = decimal.NewFromString(pctAmount); err != nil {
		return Allocation{}, err
	}
	if a.BalanceAmount, err = decimal.NewFromString(balance); err != nil {
		return Allocation{}, err
	}
	u.ID = a.ShareUserID
	a.ShareUser = &u
	return a, nil
}

func (r *repository) ListPayments(ctx context.Context, allocationID int64) ([]Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, share_user_transaction_id, is_paid, paid_date, paid_amount
 FROM share_payment_histories WHERE share_user_transaction_id=$1 ORDER BY id ASC`, allocationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		var p Payment
		var amount string
		if err := rows.Scan(&p.ID, &p.AllocationID, &p.IsPaid, &p.PaidDate, &amount); err != nil {
			return nil, err
		}
		if p.PaidAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

// LatestTransactionNo locks the most recent distribution row so
// concurrent allocations serialize on the increment.
func (r *txRepository) LatestTransactionNo(ctx context.Context) (string, bool, error) {
	var transactionNo string
	err := r.tx.QueryRow(ctx, `SELECT transaction_no FROM profit_loss_share_transactions
 ORDER BY created_date DESC, id DESC LIMIT 1 FOR UPDATE`).Scan(&transactionNo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return transactionNo, true, nil
}

func (r *txRepository) InsertDistribution(ctx context.Context, d Distribution) (Distribution, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO profit_loss_share_transactions
 (transaction_no, period_from, period_to, total_percentage, total_amount, status, profit_amount, loss_amount)
 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_date`,
		d.TransactionNo, d.PeriodFrom, d.PeriodTo, d.TotalPercentage.StringFixed(2), d.TotalAmount.StringFixed(2),
		string(d.Status), d.ProfitAmount.StringFixed(2), d.LossAmount.StringFixed(2)).
		Scan(&d.ID, &d.CreatedDate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Distribution{}, ErrTransactionNoConflict
		}
		return Distribution{}, err
	}
	return d, nil
}

func (r *txRepository) InsertAllocation(ctx context.Context, a Allocation) (Allocation, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO share_user_transactions
 (transaction_id, share_user_id, percentage, profit_lose, amount, percentage_amount, balance_amount, is_paid)
 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		a.DistributionID, a.ShareUserID, a.Percentage.StringFixed(2), string(a.ProfitLose),
		a.Amount.StringFixed(2), a.PercentageAmount.StringFixed(2), a.BalanceAmount.StringFixed(2), a.IsPaid).
		Scan(&a.ID)
	if err != nil {
		return Allocation{}, err
	}
	return a, nil
}

func (r *txRepository) GetAllocationForUpdate(ctx context.Context, id int64) (Allocation, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+allocationColumns+` `+allocationJoin+`
 WHERE a.id=$1 FOR UPDATE OF a`, id)
	a, err := scanAllocation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Allocation{}, ErrAllocationNotFound
		}
		return Allocation{}, err
	}
	return a, nil
}

func (r *txRepository) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO share_payment_histories
 (share_user_transaction_id, is_paid, paid_date, paid_amount)
 VALUES ($1,$2,$3,$4) RETURNING id`,
		p.AllocationID, p.IsPaid, p.PaidDate, p.PaidAmount.StringFixed(2)).Scan(&p.ID)
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (r *txRepository) UpdateAllocationBalance(ctx context.Context, id int64, balance decimal.Decimal, isPaid bool) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE share_user_transactions SET balance_amount=$2, is_paid=$3 WHERE id=$1`,
		id, balance.StringFixed(2), isPaid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAllocationNotFound
	}
	return nil
}
