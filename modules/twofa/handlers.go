package twofa

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/contractvault/pkg/httpx"
	"github.com/dmitrymomot/contractvault/pkg/session"
	"github.com/dmitrymomot/contractvault/svc/auth"
)

// VerificationIssuer marks the current session as two-factor verified,
// typically by setting a signed short-lived cookie. Implemented by the
// vault guard so this module stays ignorant of how the proof is carried.
type VerificationIssuer interface {
	Issue(w http.ResponseWriter, sessionID uuid.UUID)
}

// Handler exposes the two-factor HTTP surface.
type Handler struct {
	svc    *Service
	issuer VerificationIssuer
	log    *slog.Logger
}

func NewHandler(svc *Service, issuer VerificationIssuer, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, issuer: issuer, log: log}
}

// Router returns the routes to mount under /vault/2fa. Callers wrap it in
// the session and RequireUser middleware.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/setup", h.handleSetup)
	r.Post("/verify", h.handleVerify)
	return r
}

type setupResponse struct {
	Success   bool   `json:"success"`
	QRCodeURI string `json:"qrCodeUri"`
	Secret    string `json:"secret"`
}

func (h *Handler) handleSetup(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.svc.BeginSetup(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, setupResponse{
		Success:   true,
		QRCodeURI: result.QRCodeDataURI,
		Secret:    result.Secret,
	})
}

type verifyRequest struct {
	Token   string `json:"token"`
	IsSetup bool   `json:"isSetup"`
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req verifyRequest
	if err := httpx.Decode(r, &req); err != nil || req.Token == "" {
		httpx.WriteError(w, http.StatusBadRequest, ErrInvalidCode.Error())
		return
	}

	if err := h.svc.Verify(r.Context(), user.ID, req.Token, req.IsSetup); err != nil {
		h.writeError(w, r, err)
		return
	}

	message := "Two-factor authentication verified."
	if req.IsSetup {
		message = "Two-factor authentication enabled."
	} else if h.issuer != nil {
		// Non-setup verification unlocks the vault for this session only.
		if sess := session.FromContext(r.Context()); sess != nil {
			h.issuer.Issue(w, sess.ID)
		}
	}

	httpx.WriteJSON(w, http.StatusOK, verifyResponse{Success: true, Message: message})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrAlreadyEnabled),
		errors.Is(err, ErrNotEnabled),
		errors.Is(err, ErrNoPendingSetup),
		errors.Is(err, ErrInvalidCode):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, auth.ErrUserNotFound.Error())
	default:
		h.log.ErrorContext(r.Context(), "two-factor operation failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		httpx.WriteError(w, http.StatusInternalServerError, "something went wrong")
	}
}
