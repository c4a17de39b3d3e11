package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/ledgers"
)

// Repository encapsulates DB operations for report aggregates and
// classification snapshots.
type Repository interface {
	SumDebitsByNatureGroup(ctx context.Context, natureGroup string, from, to time.Time) (decimal.Decimal, error)
	SumCreditsByNatureGroup(ctx context.Context, natureGroup string, from, to time.Time) (decimal.Decimal, error)
	CreateIncomeStatement(ctx context.Context, in IncomeStatement) (IncomeStatement, error)
	ListIncomeStatements(ctx context.Context) ([]IncomeStatement, error)
	CreateBalanceSheet(ctx context.Context, in BalanceSheet) (BalanceSheet, error)
	ListBalanceSheets(ctx context.Context) ([]BalanceSheet, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const natureGroupJoin = `FROM transactions t
 JOIN ledgers l ON l.id = t.ledger_id
 JOIN main_groups m ON m.id = l.main_group_id
 JOIN nature_groups n ON n.id = m.nature_group_id
 WHERE LOWER(n.name) = LOWER($1) AND t.date BETWEEN $2 AND $3`

func (r *repository) SumDebitsByNatureGroup(ctx context.Context, natureGroup string, from, to time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(t.debit_amount), 0) `+natureGroupJoin, natureGroup, from, to)
}

func (r *repository) SumCreditsByNatureGroup(ctx context.Context, natureGroup string, from, to time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(t.credit_amount), 0) `+natureGroupJoin, natureGroup, from, to)
}

func (r *repository) sum(ctx context.Context, sql string, args ...any) (decimal.Decimal, error) {
	var raw string
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(raw)
}

func (r *repository) CreateIncomeStatement(ctx context.Context, in IncomeStatement) (IncomeStatement, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO income_statements (ledger_id, income_type, amount)
 VALUES ($1,$2,$3) RETURNING id`, in.LedgerID, string(in.IncomeType), in.Amount.StringFixed(2)).Scan(&in.ID)
	if err != nil {
		return IncomeStatement{}, err
	}
	return in, nil
}

func (r *repository) ListIncomeStatements(ctx context.Context) ([]IncomeStatement, error) {
	rows, err := r.db.Query(ctx, `SELECT s.id, s.ledger_id, l.name, s.income_type, s.amount
 FROM income_statements s JOIN ledgers l ON l.id = s.ledger_id ORDER BY s.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []IncomeStatement
	for rows.Next() {
		var s IncomeStatement
		var ledgerName, amount string
		if err := rows.Scan(&s.ID, &s.LedgerID, &ledgerName, &s.IncomeType, &amount); err != nil {
			return nil, err
		}
		if s.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		s.Ledger = &ledgers.Ledger{ID: s.LedgerID, Name: ledgerName}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) CreateBalanceSheet(ctx context.Context, in BalanceSheet) (BalanceSheet, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO balance_sheets (ledger_id, balance_type, amount)
 VALUES ($1,$2,$3) RETURNING id`, in.LedgerID, string(in.BalanceType), in.Amount.StringFixed(2)).Scan(&in.ID)
	if err != nil {
		return BalanceSheet{}, err
	}
	return in, nil
}

func (r *repository) ListBalanceSheets(ctx context.Context) ([]BalanceSheet, error) {
	rows, err := r.db.Query(ctx, `SELECT s.id, s.ledger_id, l.name, s.balance_type, s.amount
 FROM balance_sheets s JOIN ledgers l ON l.id = s.ledger_id ORDER BY s.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BalanceSheet
	for rows.Next() {
		var s BalanceSheet
		var ledgerName, amount string
		if err := rows.Scan(&s.ID, &s.LedgerID, &ledgerName, &s.BalanceType, &amount); err != nil {
			return nil, err
		}
		if s.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		s.Ledger = &ledgers.Ledger{ID: s.LedgerID, Name: ledgerName}
		out = append(out, s)
	}
	return out, rows.Err()
}
