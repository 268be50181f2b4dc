package vault

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/contractvault/pkg/pg"
)

// PostgresDocumentStore implements DocumentStore on a pgx pool.
type PostgresDocumentStore struct {
	pool *pgxpool.Pool
}

func NewPostgresDocumentStore(pool *pgxpool.Pool) *PostgresDocumentStore {
	return &PostgresDocumentStore{pool: pool}
}

func (s *PostgresDocumentStore) Create(ctx context.Context, doc *Document) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO vault_documents (id, user_id, filename, content_type, size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		doc.ID, doc.UserID, doc.Filename, doc.ContentType, doc.Size,
	).Scan(&doc.CreatedAt)
}

func (s *PostgresDocumentStore) Get(ctx context.Context, userID, docID uuid.UUID) (*Document, error) {
	var d Document
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, filename, content_type, size, created_at
		FROM vault_documents WHERE id = $1 AND user_id = $2`, docID, userID,
	).Scan(&d.ID, &d.UserID, &d.Filename, &d.ContentType, &d.Size, &d.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *PostgresDocumentStore) List(ctx context.Context, userID uuid.UUID) ([]Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, filename, content_type, size, created_at
		FROM vault_documents WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.UserID, &d.Filename, &d.ContentType, &d.Size, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *PostgresDocumentStore) Delete(ctx context.Context, userID, docID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM vault_documents WHERE id = $1 AND user_id = $2`, docID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
