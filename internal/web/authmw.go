// internal/web/authmw.go
//
// Bearer-token middleware.  Verified account IDs travel in the request
// context via internal/auth, so handlers stay free of token mechanics.
package web

import (
	"net/http"
	"strings"

	"github.com/sriox/platform/internal/account"
	"github.com/sriox/platform/internal/auth"
)

// TokenVerifier validates a bearer token and returns the account ID it
// was issued for.  *account.Service satisfies it.
type TokenVerifier interface {
	VerifyToken(raw string) (int64, error)
}

// requireAuth rejects requests without a valid Authorization: Bearer
// header and stores the account ID in the context for handlers.
func requireAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Missing bearer token."})
				return
			}
			id, err := v.VerifyToken(raw)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: account.ErrBadToken.Error()})
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
