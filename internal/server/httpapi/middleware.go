package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/schooladmin/internal/common"
	"github.com/dmitrijs2005/schooladmin/internal/logging"
)

const realm = `Basic realm="school"`

type userKey struct{}

// UserFromContext returns the username accepted by basicAuth.
func UserFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(userKey{}).(string)
	return u, ok
}

// basicAuth rejects requests whose Basic credentials do not match an active
// account.
func basicAuth(auth Authenticator, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, secret, ok := r.BasicAuth()
			if !ok {
				unauthorized(w, "credentials required")
				return
			}

			u, err := auth.Authenticate(r.Context(), user, secret)
			if err != nil {
				if errors.Is(err, common.ErrorUnauthorized) {
					log.Info(r.Context(), "credentials rejected", "user", user, "request_id", middleware.GetReqID(r.Context()))
					unauthorized(w, "invalid credentials")
					return
				}
				log.Error(r.Context(), "authentication failed", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, u.Usuario)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", realm)
	writeError(w, http.StatusUnauthorized, msg)
}

// requestLogger writes one structured line per request.
func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&structuredLogger{log: log})
}

type structuredLogger struct {
	log logging.Logger
}

func (l *structuredLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &logEntry{
		ctx: r.Context(),
		log: l.log.With(
			"method", r.Method,
			"uri", r.RequestURI,
			"request_id", middleware.GetReqID(r.Context()),
		),
	}
}

type logEntry struct {
	ctx context.Context
	log logging.Logger
}

func (e *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	e.log.Info(e.ctx, "request", "status", status, "bytes", bytes, "elapsed", elapsed)
}

func (e *logEntry) Panic(v any, stack []byte) {
	e.log.Error(e.ctx, "panic", "value", v, "stack", string(stack))
}
