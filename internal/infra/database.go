package infra

import (
	"fmt"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and migrates the
// schema. TranslateError is on so repositories can match gorm.ErrDuplicatedKey
// instead of driver-specific error codes.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// GormConfig is shared by the server and by tests that open other dialects.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
}

// RunMigrations creates or updates all tables, applies the indexes GORM tags
// cannot express and seeds the role reference data. Every step is idempotent.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Item{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.History{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	if err := seedRoles(db); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	return nil
}

// applySchemaPatches runs DDL that GORM tags cannot express. The statements
// are valid on both PostgreSQL and SQLite.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one active line-level record per (invoice, item).
		{"history active item unique", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_history_active_item
    ON history (invoice_id, item_id)
    WHERE status = 1 AND type = 'Item'`},
		// Superseding an invoice scans its active rows.
		{"history invoice status", `
CREATE INDEX IF NOT EXISTS idx_history_invoice_status
    ON history (invoice_id, status)`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}

func seedRoles(db *gorm.DB) error {
	roles := []model.Role{
		{ID: model.RoleIDSuperuser, Name: model.RoleSuperuser},
		{ID: model.RoleIDAuditor, Name: model.RoleAuditor},
		{ID: model.RoleIDUser, Name: model.RoleUser},
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error
}
