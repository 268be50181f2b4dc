package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/contractvault/pkg/pg"
)

// Repository persists users in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, totp_enabled, totp_secret, created_at, updated_at
		FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.TwoFactorEnabled, &u.TOTPSecret, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, totp_enabled, totp_secret, created_at, updated_at
		FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.TwoFactorEnabled, &u.TOTPSecret, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Create(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email) VALUES ($1)
		RETURNING id, email, totp_enabled, totp_secret, created_at, updated_at`, email,
	).Scan(&u.ID, &u.Email, &u.TwoFactorEnabled, &u.TOTPSecret, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, errors.Join(ErrEmailTaken, err)
		}
		return nil, err
	}
	return &u, nil
}
