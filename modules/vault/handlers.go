package vault

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/contractvault/pkg/blobstore"
	"github.com/dmitrymomot/contractvault/pkg/httpx"
	"github.com/dmitrymomot/contractvault/svc/auth"
)

// Handler exposes the vault document surface.
type Handler struct {
	docs      DocumentStore
	blobs     blobstore.Storage
	log       *slog.Logger
	maxUpload int64
}

func NewHandler(docs DocumentStore, blobs blobstore.Storage, maxUpload int64, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{docs: docs, blobs: blobs, log: log, maxUpload: maxUpload}
}

// Router returns the document routes. Callers mount it behind the session,
// RequireUser, and Guard middleware.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleList)
	r.Post("/", h.handleUpload)
	r.Get("/{documentID}", h.handleDownload)
	r.Delete("/{documentID}", h.handleDelete)
	return r
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	docs, err := h.docs.List(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, ErrInvalidUpload.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, ErrInvalidUpload.Error())
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc := &Document{
		ID:          uuid.New(),
		UserID:      user.ID,
		Filename:    sanitizeFilename(header.Filename),
		ContentType: contentType,
		Size:        header.Size,
	}

	if err := h.blobs.Put(r.Context(), doc.BlobKey(), file, contentType); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.docs.Create(r.Context(), doc); err != nil {
		// Keep metadata and bytes consistent: an orphaned blob is garbage,
		// a metadata row without bytes is a broken download.
		if delErr := h.blobs.Delete(r.Context(), doc.BlobKey()); delErr != nil {
			h.log.ErrorContext(r.Context(), "failed to clean up orphaned blob",
				slog.String("key", doc.BlobKey()), slog.Any("error", delErr))
		}
		h.writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"document": doc})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	docID, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound, ErrDocumentNotFound.Error())
		return
	}

	doc, err := h.docs.Get(r.Context(), user.ID, docID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rc, err := h.blobs.Get(r.Context(), doc.BlobKey())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	_, _ = io.Copy(w, rc)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	docID, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound, ErrDocumentNotFound.Error())
		return
	}

	doc, err := h.docs.Get(r.Context(), user.ID, docID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.docs.Delete(r.Context(), user.ID, docID); err != nil {
		h.writeError(w, r, err)
		return
	}

	// Metadata is gone; a leftover blob is unreachable and only costs
	// storage, so a delete failure is logged, not surfaced.
	if err := h.blobs.Delete(r.Context(), doc.BlobKey()); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		h.log.ErrorContext(r.Context(), "failed to delete document blob",
			slog.String("key", doc.BlobKey()), slog.Any("error", err))
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrDocumentNotFound), errors.Is(err, blobstore.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, ErrDocumentNotFound.Error())
	case errors.Is(err, ErrInvalidUpload):
		httpx.WriteError(w, http.StatusBadRequest, ErrInvalidUpload.Error())
	default:
		h.log.ErrorContext(r.Context(), "vault operation failed",
			slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.WriteError(w, http.StatusInternalServerError, "something went wrong")
	}
}

// sanitizeFilename strips path components so a crafted filename cannot
// smuggle traversal into headers or logs.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\x00", "")
	if name == "." || name == ".." || name == "" || name == "/" {
		name = "unnamed"
	}
	return name
}
