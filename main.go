package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
)

const (
	envLocal = "local"
	envProd  = "prod"
)

func main() {
	cfg := MustLoadConfig()
	logger := setupLogger(cfg.Env)

	db, err := openDB(cfg, logger)
	if err != nil {
		log.Fatalf("failed to connect postgres database: %v", err)
	}

	// `./botapi migrate` runs migration and seeding then exits. Useful for CI
	// or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		logger.Info("migration and seeding completed")
		return
	}

	if cfg.Env == envProd {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := NewServer(cfg, db, logger)

	logger.Info("starting bot API", "address", cfg.Address, "env", cfg.Env)
	if err := srv.Router().Run(cfg.Address); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func setupLogger(env string) *slog.Logger {
	if env == envLocal {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
