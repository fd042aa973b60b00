package main

import (
	"fmt"
	"log/slog"

	"botapi/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openDB connects to Postgres, migrates the schema (unless disabled) and
// makes sure the bootstrap admin credential exists. The returned handle owns
// a connection pool and is shared by all request handlers.
func openDB(cfg *Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if cfg.AutoMigrate {
		// Migrate models individually so a failure on one doesn't block others.
		if err := db.AutoMigrate(&models.APIUser{}); err != nil {
			logger.Warn("migration warning (api_users)", "err", err)
		}
		if err := db.AutoMigrate(&models.BotUser{}); err != nil {
			logger.Warn("migration warning (bot_users)", "err", err)
		}
		if err := db.AutoMigrate(&models.ChatHistory{}); err != nil {
			logger.Warn("migration warning (n8n_chat_histories)", "err", err)
		}
	}

	if err := seedAdmin(db, cfg, logger); err != nil {
		return nil, err
	}
	return db, nil
}

// seedAdmin creates the configured admin credential if it is missing so a
// fresh deployment can log in and register further accounts.
func seedAdmin(db *gorm.DB, cfg *Config, logger *slog.Logger) error {
	var count int64
	if err := db.Model(&models.APIUser{}).Where("username = ?", cfg.AdminUsername).Count(&count).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.APIUser{Username: cfg.AdminUsername, PasswordHash: hash, IsActive: true}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	logger.Info("seeded admin user", "username", cfg.AdminUsername)
	return nil
}
