package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/contractvault/pkg/httpx"
	"github.com/dmitrymomot/contractvault/pkg/logger"
	"github.com/dmitrymomot/contractvault/pkg/session"
)

// UserLoader resolves a user by ID. Satisfied by *Repository.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// RequireUser rejects requests without an authenticated session and loads
// the user record into the context. The user is reloaded on every request
// so state changes, such as enabling two-factor, take effect immediately.
func RequireUser(users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromContext(r.Context())
			if !sess.IsAuthenticated() {
				httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			user, err := users.GetByID(r.Context(), *sess.UserID)
			if errors.Is(err, ErrUserNotFound) {
				// The session outlived the user record. Re-login cannot
				// fix that, so this is not a 401.
				httpx.WriteError(w, http.StatusNotFound, ErrUserNotFound.Error())
				return
			}
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to load user for session",
					logger.UserID(sess.UserID.String()),
					logger.Error(err),
				)
				httpx.WriteError(w, http.StatusInternalServerError, "something went wrong")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
