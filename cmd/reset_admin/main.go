// Command reset_admin resets an API user's password directly in the
// database, for when the admin credential is lost and the register endpoint
// is unreachable.
package main

import (
	"flag"
	"fmt"
	"log"

	"botapi/models"

	"github.com/ilyakaznacheev/cleanenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type config struct {
	DatabaseDSN string `env:"DB_DSN" env-required:"true"`
}

func main() {
	username := flag.String("username", "admin", "username to reset")
	password := flag.String("password", "", "new plaintext password (min 6 chars)")
	flag.Parse()
	if *password == "" {
		log.Fatal("--password is required")
	}
	if len(*password) < 6 {
		log.Fatal("password too short (min 6)")
	}

	var cfg config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	var user models.APIUser
	if err := db.Where("username = ?", *username).First(&user).Error; err != nil {
		log.Fatalf("user not found: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt: %v", err)
	}
	updates := map[string]any{"password_hash": hash, "is_active": true}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		log.Fatalf("update failed: %v", err)
	}
	fmt.Printf("Password reset for user %s\n", user.Username)
}
