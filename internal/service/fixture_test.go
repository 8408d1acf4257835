package service

import (
	"testing"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/policy"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/repository"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixture wires the engine over a fresh SQLite database with one user per
// role and two catalog items.
type fixture struct {
	db       *gorm.DB
	invoices InvoiceService
	history  HistoryService
	items    ItemService
	users    UserService

	invoiceRepo repository.InvoiceRepository
	historyRepo repository.HistoryRepository

	super   policy.Identity
	auditor policy.Identity
	ada     policy.Identity
	alan    policy.Identity

	pen *model.Item // 10.00
	pad *model.Item // 2.50
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	userRepo := repository.NewUserRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	itemRepo := repository.NewItemRepository(db)
	history := NewHistoryService(historyRepo)

	f := &fixture{
		db:          db,
		invoices:    NewInvoiceService(invoiceRepo, repository.NewInvoiceItemRepository(db), itemRepo, userRepo, history),
		history:     history,
		items:       NewItemService(itemRepo, invoiceRepo, userRepo),
		users:       NewUserService(userRepo, repository.NewRoleRepository(db)),
		invoiceRepo: invoiceRepo,
		historyRepo: historyRepo,
	}

	identity := func(name, email string, roleID uint) policy.Identity {
		u := testutil.CreateUser(t, db, name, email, roleID)
		return policy.Identity{Email: u.Email, Role: u.Role.Name}
	}
	f.super = identity("Root", "root@example.com", model.RoleIDSuperuser)
	f.auditor = identity("Audrey Auditor", "audit@example.com", model.RoleIDAuditor)
	f.ada = identity("Ada Lovelace", "ada@example.com", model.RoleIDUser)
	f.alan = identity("Alan Turing", "alan@example.com", model.RoleIDUser)

	f.pen = testutil.CreateItem(t, db, "Pen", "10.00")
	f.pad = testutil.CreateItem(t, db, "Pad", "2.50")
	return f
}

func (f *fixture) countRows(t *testing.T, m any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(m)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func (f *fixture) itemHistory(t *testing.T, invoiceID, itemID uint) []model.History {
	t.Helper()
	var rows []model.History
	require.NoError(t, f.db.
		Where("invoice_id = ? AND item_id = ?", invoiceID, itemID).
		Order("id ASC").
		Find(&rows).Error)
	return rows
}
