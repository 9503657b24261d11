// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/thinkshare/thinkshare/account"
	"github.com/thinkshare/thinkshare/articles"
	"github.com/thinkshare/thinkshare/assistant"
	"github.com/thinkshare/thinkshare/auth"
	"github.com/thinkshare/thinkshare/cliparse"
	"github.com/thinkshare/thinkshare/db"
	"github.com/thinkshare/thinkshare/logging"
	"github.com/thinkshare/thinkshare/media"
	"github.com/thinkshare/thinkshare/metrics"
	"github.com/thinkshare/thinkshare/router"
	"github.com/thinkshare/thinkshare/store"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	var err error

	// A missing .env is fine; real environments set variables directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger := logging.SetDefault("thinkshare", version, cfg.LogFormat)

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		logger.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Database schema ready", "type", cfg.DatabaseType)

	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshTTL:    cfg.RefreshTokenExpiry,
	})
	if err != nil {
		logger.Error("token issuer setup failed", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	st := store.New(dbConn)

	cloudinary, err := media.NewCloudinary(media.CloudinaryConfig{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	})
	if err != nil {
		logger.Error("image host setup failed", "error", err)
		os.Exit(1)
	}
	if !cloudinary.Configured() {
		logger.Warn("image host not configured; uploads will be rejected")
	}
	uploader := media.Observed(cloudinary, m.Upload)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := router.Deps{
		DB:       dbConn,
		Config:   cfg,
		Issuer:   issuer,
		Users:    st,
		Accounts: account.NewService(st, issuer, auth.NewArgon2idHasher(), uploader),
		Articles: articles.NewService(st, uploader),
		Metrics:  m,
	}

	// Assistant providers are optional
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiClient(ctx, assistant.GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			logging.Error(ctx, logger, "gemini client setup failed", err)
		} else {
			deps.Gemini = gemini
		}
	}
	if cfg.OpenAIAPIKey != "" {
		openai, err := assistant.NewOpenAIClient(assistant.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel})
		if err != nil {
			logging.Error(ctx, logger, "openai client setup failed", err)
		} else {
			deps.OpenAI = openai
		}
	}

	// Create server
	server := http.Server{
		Handler:           router.NewRouter(deps),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	logger.Info("Listening", "port", cfg.Port, "production", cfg.Production)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("Server closed", "error", err)
	} else {
		logger.Info("Server closed", "error", err)
	}
}
