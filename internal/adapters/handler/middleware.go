package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wiroon/shortlink/internal/core/domain"
	"github.com/wiroon/shortlink/internal/ports"
)

type ctxKey int

const ctxKeyUser ctxKey = iota

// UserFromContext returns the authenticated caller, or nil outside of
// RequireAuth-wrapped handlers.
func UserFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(ctxKeyUser).(*domain.User)
	return u
}

type Middleware struct {
	auth ports.AuthService
}

func NewMiddleware(auth ports.AuthService) *Middleware {
	return &Middleware{auth: auth}
}

// RequireAuth resolves the caller's token (auth_token cookie or bearer
// header) to a user and stores it on the request context. The token is
// resolved against the user store on every request, so revoked accounts
// lose access before their token expires.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if cookie, err := r.Cookie("auth_token"); err == nil {
				token = cookie.Value
			}
		}
		if token == "" {
			writeError(w, r, domain.ErrUnauthorized)
			return
		}

		user, err := m.auth.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run inside RequireAuth.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil {
			writeError(w, r, domain.ErrUnauthorized)
			return
		}
		if !user.IsAdmin {
			writeError(w, r, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs one line per request with method, path, status and
// latency.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"ip", r.RemoteAddr,
			"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
	})
}
