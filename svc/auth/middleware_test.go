package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contractvault/pkg/session"
	"github.com/dmitrymomot/contractvault/svc/auth"
)

type fakeUserLoader struct {
	users   map[uuid.UUID]*auth.User
	failErr error
}

func (f *fakeUserLoader) GetByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, auth.ErrUserNotFound
}

func TestRequireUser(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	loader := &fakeUserLoader{users: map[uuid.UUID]*auth.User{
		userID: {ID: userID, Email: "user@example.com"},
	}}

	var captured *auth.User
	handler := auth.RequireUser(loader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vault", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())
	})

	t.Run("anonymous session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/vault", nil)
		sess := session.NewSession("tok", nil, time.Hour)
		req = req.WithContext(session.WithSession(req.Context(), sess))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("user record missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/vault", nil)
		missing := uuid.New()
		sess := session.NewSession("tok", &missing, time.Hour)
		req = req.WithContext(session.WithSession(req.Context(), sess))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"user not found"}`, rec.Body.String())
	})

	t.Run("storage failure is a generic 500", func(t *testing.T) {
		broken := &fakeUserLoader{failErr: errors.New("connection refused")}
		brokenHandler := auth.RequireUser(broken)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/vault", nil)
		sess := session.NewSession("tok", &userID, time.Hour)
		req = req.WithContext(session.WithSession(req.Context(), sess))

		rec := httptest.NewRecorder()
		brokenHandler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"something went wrong"}`, rec.Body.String())
	})

	t.Run("authenticated user is loaded into context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/vault", nil)
		sess := session.NewSession("tok", &userID, time.Hour)
		req = req.WithContext(session.WithSession(req.Context(), sess))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		assert.Equal(t, "user@example.com", captured.Email)
	})
}
