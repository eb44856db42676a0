package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/SRAS2024/About-Me/internal/apperror"
)

type ctxKey string

const adminKey ctxKey = "admin"

// AdminAuth enforces HTTP basic authentication against the single admin
// identity. On success the username is stored in the request context.
func AdminAuth(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !credentialsMatch(user, pass, username, password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
				apperror.Write(w, apperror.Unauthorized("admin credentials required"))
				return
			}
			ctx := context.WithValue(r.Context(), adminKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdminFromContext returns the authenticated admin username, or "".
func GetAdminFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(adminKey).(string); ok {
		return s
	}
	return ""
}

func credentialsMatch(user, pass, wantUser, wantPass string) bool {
	if wantUser == "" || wantPass == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass)) == 1
	return userOK && passOK
}
