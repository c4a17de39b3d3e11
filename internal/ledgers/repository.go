package ledgers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	CreateNatureGroup(ctx context.Context, name string) (NatureGroup, error)
	ListNatureGroups(ctx context.Context) ([]NatureGroup, error)
	CreateMainGroup(ctx context.Context, name string, natureGroupID int64) (MainGroup, error)
	ListMainGroups(ctx context.Context) ([]MainGroup, error)
	CreateLedger(ctx context.Context, in Ledger) (Ledger, error)
	GetLedger(ctx context.Context, id int64) (Ledger, error)
	FindLedgerByName(ctx context.Context, name string) (Ledger, error)
	ListLedgers(ctx context.Context) ([]Ledger, error)
	ListLedgersByGroupName(ctx context.Context, groupName string) ([]Ledger, error)
	SearchLedgersByName(ctx context.Context, fragment string) ([]Ledger, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const ledgerColumns = `l.id, l.name, l.mobile_no, l.opening_balance, l.date, l.main_group_id, l.debit_credit,
 m.id, m.name, m.nature_group_id, n.id, n.name`

const ledgerJoin = `FROM ledgers l
 JOIN main_groups m ON m.id = l.main_group_id
 JOIN nature_groups n ON n.id = m.nature_group_id`

func (r *repository) CreateNatureGroup(ctx context.Context, name string) (NatureGroup, error) {
	var g NatureGroup
	g.Name = name
	err := r.db.QueryRow(ctx, `INSERT INTO nature_groups (name) VALUES ($1) RETURNING id`, name).Scan(&g.ID)
	if err != nil {
		return NatureGroup{}, mapUniqueViolation(err, ErrGroupExists)
	}
	return g, nil
}

func (r *repository) ListNatureGroups(ctx context.Context) ([]NatureGroup, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM nature_groups ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []NatureGroup
	for rows.Next() {
		var g NatureGroup
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *repository) CreateMainGroup(ctx context.Context, name string, natureGroupID int64) (MainGroup, error) {
	var g MainGroup
	g.Name = name
	g.NatureGroupID = natureGroupID
	err := r.db.QueryRow(ctx, `INSERT INTO main_groups (name, nature_group_id) VALUES ($1,$2) RETURNING id`, name, natureGroupID).Scan(&g.ID)
	if err != nil {
		return MainGroup{}, mapUniqueViolation(err, ErrGroupExists)
	}
	return g, nil
}

func (r *repository) ListMainGroups(ctx context.Context) ([]MainGroup, error) {
	rows, err := r.db.Query(ctx, `SELECT m.id, m.name, m.nature_group_id, n.id, n.name
FROM main_groups m JOIN nature_groups n ON n.id = m.nature_group_id ORDER BY m.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []MainGroup
	for rows.Next() {
		var g MainGroup
		var n NatureGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.NatureGroupID, &n.ID, &n.Name); err != nil {
			return nil, err
		}
		g.NatureGroup = &n
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *repository) CreateLedger(ctx context.Context, in Ledger) (Ledger, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO ledgers (name, mobile_no, opening_balance, date, main_group_id, debit_credit)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		in.Name, in.MobileNo, in.OpeningBalance.StringFixed(2), in.Date, in.MainGroupID, string(in.DebitCredit)).Scan(&in.ID)
	if err != nil {
		return Ledger{}, err
	}
	return r.GetLedger(ctx, in.ID)
}

func (r *repository) GetLedger(ctx context.Context, id int64) (Ledger, error) {
	row := r.db.QueryRow(ctx, `SELECT `+ledgerColumns+` `+ledgerJoin+` WHERE l.id=$1`, id)
	l, err := scanLedger(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ledger{}, ErrLedgerNotFound
		}
		return Ledger{}, err
	}
	return l, nil
}

// FindLedgerByName matches the ledger name case-insensitively.
func (r *repository) FindLedgerByName(ctx context.Context, name string) (Ledger, error) {
	row := r.db.QueryRow(ctx, `SELECT `+ledgerColumns+` `+ledgerJoin+` WHERE LOWER(l.name)=LOWER($1) LIMIT 1`, name)
	l, err := scanLedger(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ledger{}, ErrLedgerNotFound
		}
		return Ledger{}, err
	}
	return l, nil
}

func (r *repository) ListLedgers(ctx context.Context) ([]Ledger, error) {
	return r.queryLedgers(ctx, `SELECT `+ledgerColumns+` `+ledgerJoin+` ORDER BY l.name ASC`)
}

func (r *repository) ListLedgersByGroupName(ctx context.Context, groupName string) ([]Ledger, error) {
	return r.queryLedgers(ctx, `SELECT `+ledgerColumns+` `+ledgerJoin+` WHERE m.name=$1 ORDER BY l.name ASC`, groupName)
}

func (r *repository) SearchLedgersByName(ctx context.Context, fragment string) ([]Ledger, error) {
	return r.queryLedgers(ctx, `SELECT `+ledgerColumns+` `+ledgerJoin+` WHERE l.name ILIKE '%'||$1||'%' ORDER BY l.name ASC`, fragment)
}

func (r *repository) queryLedgers(ctx context.Context, sql string, args ...any) ([]Ledger, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ledger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLedger(row pgx.Row) (Ledger, error) {
	var l Ledger
	var m MainGroup
	var n NatureGroup
	var opening string
	if err := row.Scan(&l.ID, &l.Name, &l.MobileNo, &opening, &l.Date, &l.MainGroupID, &l.DebitCredit,
		&m.ID, &m.Name, &m.NatureGroupID, &n.ID, &n.Name); err != nil {
		return Ledger{}, err
	}
	bal, err := decimal.NewFromString(opening)
	if err != nil {
		return Ledger{}, err
	}
	l.OpeningBalance = bal
	m.NatureGroup = &n
	l.MainGroup = &m
	return l, nil
}

func mapUniqueViolation(err error, sentinel error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return sentinel
	}
	return err
}
