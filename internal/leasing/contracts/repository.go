package contracts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pcpedia/leasing-api/internal/platform/db"
	"github.com/pcpedia/leasing-api/internal/shared"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// Repository persists contracts. A partial unique index on (quote_id) for
// ACTIVE rows backs the one-contract-per-quote guarantee race-free; renewal
// flips the predecessor to RENEWED before inserting the successor.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Contract, error)
	GetByQuoteID(ctx context.Context, quoteID int64) (*Contract, error)
	GetByNumber(ctx context.Context, number string) (*Contract, error)
	List(ctx context.Context, req ListContractsRequest) ([]Contract, int, error)
	ListActiveByClient(ctx context.Context, clientID int64) ([]Contract, error)
	Create(ctx context.Context, contract Contract) (int64, error)
	InsertItem(ctx context.Context, item ContractItem) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status ContractStatus) error
	NextContractNumber(ctx context.Context, year int) (string, error)
	ExpireOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed contract repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const contractColumns = `id, quote_id, client_id, contract_number, start_date, end_date,
	monthly_amount::text, status, terms, created_at`

func (r *repository) Get(ctx context.Context, id int64) (*Contract, error) {
	contract, err := scanContract(r.db.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, contract)
}

func (r *repository) GetByQuoteID(ctx context.Context, quoteID int64) (*Contract, error) {
	contract, err := scanContract(r.db.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE quote_id = $1 ORDER BY id LIMIT 1`, quoteID))
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, contract)
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Contract, error) {
	contract, err := scanContract(r.db.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE contract_number = $1`, number))
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, contract)
}

func (r *repository) List(ctx context.Context, req ListContractsRequest) ([]Contract, int, error) {
	where := "WHERE 1=1"
	var args []any
	argPos := 1

	if req.ClientID != nil {
		where += fmt.Sprintf(" AND client_id = $%d", argPos)
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *req.Status)
		argPos++
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM contracts "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("contracts: count: %w", err)
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`
		SELECT %s
		FROM contracts
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, contractColumns, where, argPos, argPos+1)
	args = append(args, page.PerPage, page.Offset())

	records, err := r.queryContracts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *repository) ListActiveByClient(ctx context.Context, clientID int64) ([]Contract, error) {
	return r.queryContracts(ctx, `
		SELECT `+contractColumns+`
		FROM contracts
		WHERE client_id = $1 AND status = 'ACTIVE'
		ORDER BY start_date, id
	`, clientID)
}

func (r *repository) Create(ctx context.Context, contract Contract) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO contracts (quote_id, client_id, contract_number, start_date, end_date, monthly_amount, status, terms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, contract.QuoteID, contract.ClientID, contract.ContractNumber, contract.StartDate,
		contract.EndDate, contract.MonthlyAmount.String(), contract.Status, contract.Terms).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, fmt.Errorf("%w: a contract already exists for quote %d", shared.ErrConflict, contract.QuoteID)
		}
		return 0, fmt.Errorf("contracts: create: %w", err)
	}
	return id, nil
}

func (r *repository) InsertItem(ctx context.Context, item ContractItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO contract_items (contract_id, equipment_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, item.ContractID, item.EquipmentID, item.Quantity, item.UnitPrice.String()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("contracts: insert item: %w", err)
	}
	return id, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status ContractStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE contracts SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("contracts: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// NextContractNumber draws from a per-year sequence; the upsert is atomic so
// concurrent creations never share a suffix.
func (r *repository) NextContractNumber(ctx context.Context, year int) (string, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO contract_sequences (year, seq)
		VALUES ($1, 1)
		ON CONFLICT (year)
		DO UPDATE SET seq = contract_sequences.seq + 1
		RETURNING seq
	`, year).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("contracts: next number: %w", err)
	}
	return FormatNumber(year, seq), nil
}

func (r *repository) ExpireOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE contracts SET status = 'EXPIRED'
		WHERE status = 'ACTIVE' AND end_date < $1
	`, asOf)
	if err != nil {
		return 0, fmt.Errorf("contracts: expire overdue: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *repository) queryContracts(ctx context.Context, query string, args ...any) ([]Contract, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("contracts: query: %w", err)
	}
	defer rows.Close()

	var result []Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *contract)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		items, err := r.loadItems(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

func (r *repository) attachItems(ctx context.Context, contract *Contract) (*Contract, error) {
	items, err := r.loadItems(ctx, contract.ID)
	if err != nil {
		return nil, err
	}
	contract.Items = items
	return contract, nil
}

func (r *repository) loadItems(ctx context.Context, contractID int64) ([]ContractItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, contract_id, equipment_id, quantity, unit_price::text
		FROM contract_items
		WHERE contract_id = $1
		ORDER BY id
	`, contractID)
	if err != nil {
		return nil, fmt.Errorf("contracts: load items: %w", err)
	}
	defer rows.Close()

	var items []ContractItem
	for rows.Next() {
		var item ContractItem
		var price string
		if err := rows.Scan(&item.ID, &item.ContractID, &item.EquipmentID, &item.Quantity, &price); err != nil {
			return nil, err
		}
		item.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("contracts: parse unit price: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanContract(row pgx.Row) (*Contract, error) {
	var c Contract
	var amount string
	err := row.Scan(&c.ID, &c.QuoteID, &c.ClientID, &c.ContractNumber, &c.StartDate,
		&c.EndDate, &amount, &c.Status, &c.Terms, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("contracts: scan: %w", err)
	}
	c.MonthlyAmount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("contracts: parse amount: %w", err)
	}
	return &c, nil
}
