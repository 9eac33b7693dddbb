package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/chatledger/internal/app"
	"github.com/MrJamesThe3rd/chatledger/internal/config"
	chathttp "github.com/MrJamesThe3rd/chatledger/internal/http"
	trackerHandler "github.com/MrJamesThe3rd/chatledger/internal/http/tracker"
	"github.com/MrJamesThe3rd/chatledger/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, os.Stdout)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if cfg.API.JWTSecret == "" {
		slog.Warn("API_JWT_SECRET is empty, the API is unauthenticated")
	}

	router := chathttp.New(trackerHandler.NewHandler(a.Service, a.Trackers), chathttp.Options{
		JWTSecret:      []byte(cfg.API.JWTSecret),
		AllowedOrigins: cfg.API.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
