// Package testutil opens throwaway databases and seeds fixtures for package
// tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/infra"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB returns a migrated in-memory SQLite database private to the test.
// A single connection is used so every query sees the same memory database;
// code under test must therefore do all work of a transaction through tx.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), infra.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.RunMigrations(db))
	return db
}

// CreateUser inserts a user with the given role. The password hash is a
// placeholder; use the auth service when a real login is needed.
func CreateUser(t *testing.T, db *gorm.DB, fullName, email string, roleID uint) *model.User {
	t.Helper()
	u := &model.User{FullName: fullName, Email: email, PasswordHash: "x", RoleID: roleID}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Preload("Role").First(u, u.ID).Error)
	return u
}

func CreateItem(t *testing.T, db *gorm.DB, name, price string) *model.Item {
	t.Helper()
	it := &model.Item{Name: name, Price: decimal.RequireFromString(price)}
	require.NoError(t, db.Create(it).Error)
	return it
}
