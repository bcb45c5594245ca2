package auth

import (
	"net/http"

	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/shared"
)

// RequireAuth guards the admin routes. Without stored tokens the operator
// is sent to the login screen; with them, the request context carries
// session-backed credentials for the API client so any handler can call
// the remote API with single-refresh-on-401 semantics.
func RequireAuth(vault *shared.TokenVault) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			creds := NewSessionCredentials(sess, vault)
			if creds.AccessToken() == "" && creds.RefreshToken() == "" {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}
			ctx := flora.ContextWithCredentials(r.Context(), creds)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
