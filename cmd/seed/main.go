// Command seed creates (or resets) a superuser and a small item catalog.
// Usage: go run ./cmd/seed -email root@example.com -password change-me
package main

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/config"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/infra"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var catalog = []struct{ name, price string }{
	{"Ballpoint pen", "1.20"},
	{"A4 paper ream", "5.75"},
	{"Stapler", "8.90"},
	{"Desk lamp", "24.00"},
	{"USB-C cable", "9.99"},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	email := flag.String("email", "root@example.com", "superuser email")
	password := flag.String("password", "", "superuser password (required)")
	name := flag.String("name", "Root", "superuser full name")
	flag.Parse()

	if len(*password) < 8 {
		log.Fatal().Msg("-password must be at least 8 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	// NewDatabase migrates and seeds the roles.
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		root := model.User{FullName: *name, Email: strings.ToLower(strings.TrimSpace(*email)), PasswordHash: string(hash), RoleID: model.RoleIDSuperuser}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "password_hash", "role_id"}),
		}).Create(&root).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Item{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		items := make([]model.Item, len(catalog))
		for i, c := range catalog {
			items[i] = model.Item{Name: c.name, Price: decimal.RequireFromString(c.price)}
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Str("email", *email).Msg("superuser created/updated")
}
