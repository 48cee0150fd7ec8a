package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/wiroon/shortlink/internal/adapters/cache"
	"github.com/wiroon/shortlink/internal/adapters/handler"
	"github.com/wiroon/shortlink/internal/adapters/repository/sqlite"
	"github.com/wiroon/shortlink/internal/config"
	"github.com/wiroon/shortlink/internal/core/services"
	"github.com/wiroon/shortlink/internal/logger"
	"github.com/wiroon/shortlink/internal/ports"
)

func main() {
	cfg := config.Load()
	logger.InitFromEnv()

	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var linkCache ports.LinkCache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisLinkCache(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			// Redis is an accelerator for the redirect path, not a dependency.
			slog.Warn("redis unavailable, continuing without cache", "addr", cfg.RedisAddr, "error", err)
		} else {
			linkCache = rc
		}
	}

	linkService := services.NewLinkService(repo, repo, linkCache)
	statsService := services.NewStatsService(repo, repo)
	authService := services.NewAuthService(repo, cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)

	mux := handler.NewRouter(cfg, linkService, statsService, authService)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	slog.Info("server starting", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
