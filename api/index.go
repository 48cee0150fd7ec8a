package handler

import (
	"net/http"
	"time"

	"github.com/wiroon/shortlink/internal/adapters/handler"
	"github.com/wiroon/shortlink/internal/adapters/repository/sqlite"
	"github.com/wiroon/shortlink/internal/config"
	"github.com/wiroon/shortlink/internal/core/services"
	"github.com/wiroon/shortlink/internal/logger"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logger.InitFromEnv()

	// Note: On Vercel, db.sqlite is ephemeral unless DATABASE_URL points
	// at a remote libsql/Turso database.
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	linkService := services.NewLinkService(repo, repo, nil)
	statsService := services.NewStatsService(repo, repo)
	authService := services.NewAuthService(repo, cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	mux = handler.NewRouter(cfg, linkService, statsService, authService)
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
