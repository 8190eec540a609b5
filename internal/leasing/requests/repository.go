package requests

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pcpedia/leasing-api/internal/platform/db"
	"github.com/pcpedia/leasing-api/internal/shared"
)

// Repository persists leasing requests.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Request, error)
	List(ctx context.Context, req ListRequestsRequest) ([]Request, int, error)
	Create(ctx context.Context, request Request) (int64, error)
	InsertItem(ctx context.Context, item RequestItem) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status RequestStatus) error
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

// NewRepository constructs the PostgreSQL-backed request repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) Get(ctx context.Context, id int64) (*Request, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, client_id, status, duration_months, notes, created_at
		FROM requests
		WHERE id = $1
	`, id)

	var req Request
	err := row.Scan(&req.ID, &req.ClientID, &req.Status, &req.DurationMonths, &req.Notes, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("requests: get: %w", err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Items = items
	return &req, nil
}

func (r *repository) List(ctx context.Context, req ListRequestsRequest) ([]Request, int, error) {
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
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM requests "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("requests: count: %w", err)
	}

	page := shared.NewPagination(req.Page, req.PerPage, total)
	query := fmt.Sprintf(`
		SELECT id, client_id, status, duration_months, notes, created_at
		FROM requests
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)
	args = append(args, page.PerPage, page.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("requests: list: %w", err)
	}
	defer rows.Close()

	var result []Request
	for rows.Next() {
		var rec Request
		err := rows.Scan(&rec.ID, &rec.ClientID, &rec.Status, &rec.DurationMonths, &rec.Notes, &rec.CreatedAt)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, rec)
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

func (r *repository) Create(ctx context.Context, request Request) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO requests (client_id, status, duration_months, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, request.ClientID, request.Status, request.DurationMonths, request.Notes).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("requests: create: %w", err)
	}
	return id, nil
}

func (r *repository) InsertItem(ctx context.Context, item RequestItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO request_items (request_id, product_model_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id
	`, item.RequestID, item.ProductModelID, item.Quantity).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("requests: insert item: %w", err)
	}
	return id, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status RequestStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE requests SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("requests: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) loadItems(ctx context.Context, requestID int64) ([]RequestItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, request_id, product_model_id, quantity
		FROM request_items
		WHERE request_id = $1
		ORDER BY id
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("requests: load items: %w", err)
	}
	defer rows.Close()

	var items []RequestItem
	for rows.Next() {
		var item RequestItem
		if err := rows.Scan(&item.ID, &item.RequestID, &item.ProductModelID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
