package middleware

import (
	"context"
	"net/http"

	"github.com/SRAS2024/About-Me/internal/apperror"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RequireDatabase answers 503 PersistenceFailure when the database does not
// respond, before the wrapped handler runs.
func RequireDatabase(db Pinger, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := db.Ping(r.Context()); err != nil {
				log.Warn("database unavailable", zap.String("uri", r.RequestURI), zap.Error(err))
				apperror.Write(w, apperror.Persistence(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
