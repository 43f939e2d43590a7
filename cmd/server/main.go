package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/superlists/superlists/internal/auth"
	"github.com/superlists/superlists/internal/config"
	"github.com/superlists/superlists/internal/server"
	"github.com/superlists/superlists/internal/service"
	"github.com/superlists/superlists/internal/storage/sqlite"
	"github.com/superlists/superlists/pkg/logging"
)

func main() {
	logging.Setup()
	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	backend := auth.NewPersonaBackend(cfg.PersonaVerifyURL, cfg.PersonaAudience, store, logger)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)

	srv := server.New(
		service.NewListService(store, logger),
		service.NewAuthService(backend, jwtManager, logger),
		backend,
		jwtManager,
		logger,
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Server starting", "address", addr, "audience", cfg.PersonaAudience)
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
