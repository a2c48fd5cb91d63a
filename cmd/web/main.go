package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"example.com/notes-web-pz16/internal/auth"
	"example.com/notes-web-pz16/internal/config"
	"example.com/notes-web-pz16/internal/db"
	"example.com/notes-web-pz16/internal/notes"
	"example.com/notes-web-pz16/internal/session"
	"example.com/notes-web-pz16/internal/users"
)

func main() {
	cfg := config.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		log.Error("SESSION_SECRET is required")
		os.Exit(1)
	}

	ctx := context.Background()

	dbConn, err := db.Open(ctx, cfg.DatabaseURL, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime)
	if err != nil {
		log.Error("open database", "err", err)
		os.Exit(1)
	}
	defer dbConn.SQL.Close()

	noteRepo, err := notes.NewRepository(ctx, dbConn.SQL)
	if err != nil {
		log.Error("prepare note statements", "err", err)
		os.Exit(1)
	}
	defer noteRepo.Close()

	userRepo := users.NewRepository(dbConn.SQL)

	codec := session.NewCodec(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies())
	resolver := auth.NewResolver(codec, userRepo)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	auth.NewHandlers(users.NewService(userRepo), codec, resolver).Register(r)
	notes.NewHandlers(notes.NewService(noteRepo, log), resolver).Register(r)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("notes web listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
