package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is the metadata of a stored contract file. Bytes live in the
// blob store under blobKey; only metadata is queryable.
type Document struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"-"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BlobKey returns the storage key for the document's bytes.
func (d Document) BlobKey() string {
	return fmt.Sprintf("users/%s/documents/%s", d.UserID, d.ID)
}

// DocumentStore persists document metadata. All reads and deletes are
// scoped by user ID; one user can never address another's documents.
type DocumentStore interface {
	Create(ctx context.Context, doc *Document) error
	Get(ctx context.Context, userID, docID uuid.UUID) (*Document, error)
	List(ctx context.Context, userID uuid.UUID) ([]Document, error)
	Delete(ctx context.Context, userID, docID uuid.UUID) error
}
