package quotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pcpedia/leasing-api/internal/platform/db"
	"github.com/pcpedia/leasing-api/internal/shared"
)

// Repository persists quotes. MarkRequestQuoted flips the source request's
// status inside the same transaction as quote creation; both aggregates live
// in one database, so the unit of work stays atomic.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Quote, error)
	List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error)
	Create(ctx context.Context, quote Quote) (int64, error)
	UpdateHeader(ctx context.Context, quote *Quote) error
	InsertItem(ctx context.Context, item QuoteItem) (int64, error)
	DeleteItems(ctx context.Context, quoteID int64) error
	UpdateStatus(ctx context.Context, quote *Quote) error
	MarkRequestQuoted(ctx context.Context, requestID int64) error
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

// NewRepository constructs the PostgreSQL-backed quote repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) Get(ctx context.Context, id int64) (*Quote, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, request_id, client_id, status, total_monthly::text, duration_months,
		       valid_until, terms, sent_at, created_at
		FROM quotes
		WHERE id = $1
	`, id)

	quote, err := scanQuote(row)
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	quote.Items = items
	return quote, nil
}

func (r *repository) List(ctx context.Context, req ListQuotesRequest) ([]Quote, int, error) {
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
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM quotes "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("quotes: count: %w", err)
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`
		SELECT id, request_id, client_id, status, total_monthly::text, duration_months,
		       valid_until, terms, sent_at, created_at
		FROM quotes
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("quotes: list: %w", err)
	}
	defer rows.Close()

	var result []Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *quote)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range result {
		items, err := r.loadItems(ctx, result[i].ID)
		if err != nil {
			return nil, 0, err
		}
		result[i].Items = items
	}
	return result, total, nil
}

func (r *repository) Create(ctx context.Context, quote Quote) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotes (request_id, client_id, status, total_monthly, duration_months, valid_until, terms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, quote.RequestID, quote.ClientID, quote.Status, quote.TotalMonthly.String(),
		quote.DurationMonths, quote.ValidUntil, quote.Terms).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("quotes: create: %w", err)
	}
	return id, nil
}

func (r *repository) UpdateHeader(ctx context.Context, quote *Quote) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotes
		SET total_monthly = $1, duration_months = $2, valid_until = $3, terms = $4
		WHERE id = $5
	`, quote.TotalMonthly.String(), quote.DurationMonths, quote.ValidUntil, quote.Terms, quote.ID)
	if err != nil {
		return fmt.Errorf("quotes: update header: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) InsertItem(ctx context.Context, item QuoteItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quote_items (quote_id, equipment_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, item.QuoteID, item.EquipmentID, item.Quantity, item.UnitPrice.String()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("quotes: insert item: %w", err)
	}
	return id, nil
}

func (r *repository) DeleteItems(ctx context.Context, quoteID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM quote_items WHERE quote_id = $1`, quoteID)
	if err != nil {
		return fmt.Errorf("quotes: delete items: %w", err)
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, quote *Quote) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotes SET status = $1, sent_at = $2 WHERE id = $3
	`, quote.Status, quote.SentAt, quote.ID)
	if err != nil {
		return fmt.Errorf("quotes: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) MarkRequestQuoted(ctx context.Context, requestID int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE requests SET status = 'QUOTED' WHERE id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("quotes: mark request quoted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) loadItems(ctx context.Context, quoteID int64) ([]QuoteItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quote_id, equipment_id, quantity, unit_price::text
		FROM quote_items
		WHERE quote_id = $1
		ORDER BY id
	`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("quotes: load items: %w", err)
	}
	defer rows.Close()

	var items []QuoteItem
	for rows.Next() {
		var item QuoteItem
		var price string
		if err := rows.Scan(&item.ID, &item.QuoteID, &item.EquipmentID, &item.Quantity, &price); err != nil {
			return nil, err
		}
		item.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("quotes: parse unit price: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanQuote(row pgx.Row) (*Quote, error) {
	var q Quote
	var total string
	err := row.Scan(&q.ID, &q.RequestID, &q.ClientID, &q.Status, &total,
		&q.DurationMonths, &q.ValidUntil, &q.Terms, &q.SentAt, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("quotes: scan: %w", err)
	}
	q.TotalMonthly, err = decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("quotes: parse total: %w", err)
	}
	return &q, nil
}
