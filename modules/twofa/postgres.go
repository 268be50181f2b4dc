package twofa

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/contractvault/pkg/pg"
	"github.com/dmitrymomot/contractvault/svc/auth"
)

// PostgresStorage implements Storage on a pgx connection pool.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (s *PostgresStorage) GetUser(ctx context.Context, userID uuid.UUID) (*auth.User, error) {
	var u auth.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, totp_enabled, totp_secret, created_at, updated_at
		FROM users WHERE id = $1`, userID,
	).Scan(&u.ID, &u.Email, &u.TwoFactorEnabled, &u.TOTPSecret, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, errors.Join(ErrStorageFailure, err)
	}
	return &u, nil
}

func (s *PostgresStorage) EnableTwoFactor(ctx context.Context, userID uuid.UUID, encryptedSecret string) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users
			SET totp_enabled = TRUE, totp_secret = $2, updated_at = now()
			WHERE id = $1`, userID, encryptedSecret)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return auth.ErrUserNotFound
		}

		_, err = tx.Exec(ctx, `DELETE FROM totp_pending_secrets WHERE user_id = $1`, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return auth.ErrUserNotFound
		}
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}

func (s *PostgresStorage) UpsertPendingSecret(ctx context.Context, userID uuid.UUID, encryptedSecret string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO totp_pending_secrets (user_id, secret, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET secret = EXCLUDED.secret,
		              expires_at = EXCLUDED.expires_at,
		              created_at = now()`, userID, encryptedSecret, expiresAt)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return auth.ErrUserNotFound
		}
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}

func (s *PostgresStorage) PendingSecret(ctx context.Context, userID uuid.UUID) (*PendingSecret, error) {
	var p PendingSecret
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, secret, created_at, expires_at
		FROM totp_pending_secrets WHERE user_id = $1`, userID,
	).Scan(&p.ID, &p.UserID, &p.Secret, &p.CreatedAt, &p.ExpiresAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNoPendingSetup
		}
		return nil, errors.Join(ErrStorageFailure, err)
	}
	return &p, nil
}
