package handler

import (
	"net/http"

	"github.com/wiroon/shortlink/internal/config"
	"github.com/wiroon/shortlink/internal/ports"
)

// NewRouter wires the public, owner-scoped and admin surfaces. The
// redirect route is the catch-all single-segment pattern; literal
// routes like /healthz and /auth/... take precedence over it.
func NewRouter(cfg *config.Config, links ports.LinkService, stats ports.StatsService, auth ports.AuthService) http.Handler {
	lh := NewLinkHandler(links, stats)
	ah := NewAdminHandler(links, stats, auth)
	authHandler := NewAuthHandler(cfg, auth)
	mw := NewMiddleware(auth)

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /{key}", lh.Redirect)

	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.Handle("GET /auth/me", mw.RequireAuth(http.HandlerFunc(authHandler.Me)))
	mux.HandleFunc("GET /auth/google/login", authHandler.GoogleLogin)
	mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Owner-scoped routes
	urls := http.NewServeMux()
	urls.HandleFunc("GET /urls", lh.List)
	urls.HandleFunc("POST /urls", lh.Create)
	urls.HandleFunc("GET /urls/{key}", lh.Get)
	urls.HandleFunc("GET /urls/{key}/status", lh.Status)
	urls.HandleFunc("PUT /urls/{key}/status", lh.UpdateStatus)
	urls.HandleFunc("GET /urls/{key}/stats", lh.Stats)
	urls.HandleFunc("DELETE /urls/{key}", lh.Delete)

	// The bare /urls mounts carry the method so they stay strictly more
	// specific than the GET /{key} catch-all; a method-less mount would
	// conflict with it and panic at registration.
	mux.Handle("GET /urls", mw.RequireAuth(urls))
	mux.Handle("POST /urls", mw.RequireAuth(urls))
	mux.Handle("/urls/", mw.RequireAuth(urls))

	// Admin mirrors, without owner scoping
	admin := http.NewServeMux()
	admin.HandleFunc("GET /admin/urls", ah.ListLinks)
	admin.HandleFunc("GET /admin/urls/status", ah.ListStatuses)
	admin.HandleFunc("GET /admin/urls/stats", ah.ListStats)
	admin.HandleFunc("GET /admin/urls/{key}", lh.Get)
	admin.HandleFunc("GET /admin/urls/{key}/status", lh.Status)
	admin.HandleFunc("PUT /admin/urls/{key}/status", lh.UpdateStatus)
	admin.HandleFunc("GET /admin/urls/{key}/stats", lh.Stats)
	admin.HandleFunc("DELETE /admin/urls/{key}", lh.Delete)
	admin.HandleFunc("GET /admin/users/{id}", ah.GetUser)
	admin.HandleFunc("GET /admin/users/{id}/urls", ah.ListUserLinks)
	admin.HandleFunc("GET /admin/users/{id}/urls/status", ah.ListUserStatuses)
	admin.HandleFunc("GET /admin/users/{id}/urls/stats", ah.ListUserStats)
	admin.HandleFunc("DELETE /admin/users/{id}/urls", ah.DeleteUserLinks)
	admin.HandleFunc("DELETE /admin/users/{id}", ah.DeleteUser)

	mux.Handle("/admin/", mw.RequireAuth(mw.RequireAdmin(admin)))

	return RequestLogger(mux)
}
