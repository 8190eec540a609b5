package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pcpedia/leasing-api/internal/shared"
)

// Repository reads user accounts.
type Repository interface {
	Get(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]User, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed user repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const userColumns = `id, email, name, company_name, role, password_hash, is_active, created_at`

func (r *repository) Get(ctx context.Context, id int64) (*User, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *repository) GetByIDs(ctx context.Context, ids []int64) (map[int64]User, error) {
	result := make(map[int64]User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("users: get by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u User
		err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.CompanyName, &u.Role,
			&u.PasswordHash, &u.IsActive, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		result[u.ID] = u
	}
	return result, rows.Err()
}

func (r *repository) scanOne(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.CompanyName, &u.Role,
		&u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("users: scan: %w", err)
	}
	return &u, nil
}
