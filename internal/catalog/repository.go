package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pcpedia/leasing-api/internal/shared"
)

// Repository exposes the catalog operations the lifecycle services consume:
// attribute lookups for response enrichment, an existence predicate for
// request validation, and the reservation gateway.
type Repository interface {
	GetEquipment(ctx context.Context, id int64) (*Equipment, error)
	GetEquipmentByIDs(ctx context.Context, ids []int64) (map[int64]Equipment, error)
	ProductModelExists(ctx context.Context, id int64) (bool, error)
	GetProductModelsByIDs(ctx context.Context, ids []int64) (map[int64]ProductModel, error)
	MarkLeased(ctx context.Context, equipmentID int64) (ToggleOutcome, error)
	MarkAvailable(ctx context.Context, equipmentID int64) (ToggleOutcome, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed catalog repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetEquipment(ctx context.Context, id int64) (*Equipment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, product_model_id, name, brand, model, serial_number, category, status, created_at, updated_at
		FROM equipment
		WHERE id = $1
	`, id)

	var e Equipment
	err := row.Scan(&e.ID, &e.ProductModelID, &e.Name, &e.Brand, &e.Model,
		&e.SerialNumber, &e.Category, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("catalog: get equipment: %w", err)
	}
	return &e, nil
}

func (r *repository) GetEquipmentByIDs(ctx context.Context, ids []int64) (map[int64]Equipment, error) {
	result := make(map[int64]Equipment, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, product_model_id, name, brand, model, serial_number, category, status, created_at, updated_at
		FROM equipment
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog: get equipment by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Equipment
		err := rows.Scan(&e.ID, &e.ProductModelID, &e.Name, &e.Brand, &e.Model,
			&e.SerialNumber, &e.Category, &e.Status, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, err
		}
		result[e.ID] = e
	}
	return result, rows.Err()
}

func (r *repository) ProductModelExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM product_models WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("catalog: product model exists: %w", err)
	}
	return exists, nil
}

func (r *repository) GetProductModelsByIDs(ctx context.Context, ids []int64) (map[int64]ProductModel, error) {
	result := make(map[int64]ProductModel, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, brand, model, created_at
		FROM product_models
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog: get product models by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pm ProductModel
		if err := rows.Scan(&pm.ID, &pm.Name, &pm.Brand, &pm.Model, &pm.CreatedAt); err != nil {
			return nil, err
		}
		result[pm.ID] = pm
	}
	return result, rows.Err()
}

// MarkLeased reserves a unit with a conditional update. The WHERE clause is
// the exclusivity guard: two concurrent reservations of the same unit cannot
// both see rows affected.
func (r *repository) MarkLeased(ctx context.Context, equipmentID int64) (ToggleOutcome, error) {
	return r.toggle(ctx, equipmentID, EquipmentStatusAvailable, EquipmentStatusLeased)
}

// MarkAvailable releases a unit, transitioning it back from LEASED.
func (r *repository) MarkAvailable(ctx context.Context, equipmentID int64) (ToggleOutcome, error) {
	return r.toggle(ctx, equipmentID, EquipmentStatusLeased, EquipmentStatusAvailable)
}

func (r *repository) toggle(ctx context.Context, id int64, from, to EquipmentStatus) (ToggleOutcome, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE equipment SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return ToggleUnchanged, fmt.Errorf("catalog: toggle equipment %d to %s: %w", id, to, err)
	}
	if tag.RowsAffected() > 0 {
		return ToggleApplied, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM equipment WHERE id = $1)`, id).Scan(&exists); err != nil {
		return ToggleUnchanged, fmt.Errorf("catalog: toggle existence check: %w", err)
	}
	if !exists {
		return ToggleNotFound, nil
	}
	return ToggleUnchanged, nil
}
