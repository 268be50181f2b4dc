package vault

import (
	"net/http"

	"github.com/dmitrymomot/contractvault/pkg/httpx"
	"github.com/dmitrymomot/contractvault/pkg/session"
	"github.com/dmitrymomot/contractvault/svc/auth"
)

// Guard blocks vault routes for sessions that have not passed a
// two-factor check. It runs after RequireUser and re-evaluates on every
// request, so enabling two-factor locks the vault immediately.
func (v *Verifier) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFromContext(r.Context())
		if user == nil {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		verified := false
		if sess := session.FromContext(r.Context()); sess != nil {
			verified = v.Verified(r, sess.ID)
		}

		if Authorize(user.TwoFactorEnabled, verified) == RequiresVerification {
			httpx.WriteJSON(w, http.StatusForbidden, map[string]any{
				"error":                "two-factor verification required",
				"requiresVerification": true,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
