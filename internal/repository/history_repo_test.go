package repository

import (
	"context"
	"testing"
	"time"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/apierror"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItemEvent(userID, invoiceID, itemID uint, action model.HistoryAction) *model.History {
	return &model.History{
		UserID:      userID,
		InvoiceID:   invoiceID,
		ItemID:      &itemID,
		Quantity:    1,
		Price:       decimal.RequireFromString("2.00"),
		Action:      action,
		Type:        model.HistoryTypeItem,
		Description: string(action),
		Status:      model.HistoryActive,
	}
}

func TestHistoryRepo_ActiveRecordLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Ada", "ada@example.com", model.RoleIDUser)
	it := testutil.CreateItem(t, db, "Pen", "2.00")
	inv := &model.Invoice{UserID: u.ID}
	require.NoError(t, NewInvoiceRepository(db).Create(ctx, nil, inv))
	repo := NewHistoryRepository(db)

	_, err := repo.FindActiveItem(ctx, nil, inv.ID, it.ID)
	assert.ErrorIs(t, err, apierror.ErrNotFound)

	added := newItemEvent(u.ID, inv.ID, it.ID, model.ActionAdded)
	require.NoError(t, repo.Create(ctx, nil, added))

	active, err := repo.FindActiveItem(ctx, nil, inv.ID, it.ID)
	require.NoError(t, err)
	assert.Equal(t, added.ID, active.ID)

	// A second active row for the same pair is rejected by the partial index.
	err = repo.Create(ctx, nil, newItemEvent(u.ID, inv.ID, it.ID, model.ActionEdited))
	assert.ErrorIs(t, err, apierror.ErrConflict)

	require.NoError(t, repo.Deactivate(ctx, nil, added.ID))
	assert.ErrorIs(t, repo.Deactivate(ctx, nil, added.ID), apierror.ErrNotFound)
	require.NoError(t, repo.Create(ctx, nil, newItemEvent(u.ID, inv.ID, it.ID, model.ActionEdited)))

	all, err := repo.ListByInvoice(ctx, nil, inv.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.ActionEdited, all[0].Action)
	assert.True(t, all[0].IsActive())
	assert.False(t, all[1].IsActive())
	assert.Equal(t, "ada@example.com", all[0].User.Email)
}

func TestHistoryRepo_DeactivateInvoice(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Ada", "ada@example.com", model.RoleIDUser)
	pen := testutil.CreateItem(t, db, "Pen", "2.00")
	pad := testutil.CreateItem(t, db, "Pad", "3.00")
	inv := &model.Invoice{UserID: u.ID}
	require.NoError(t, NewInvoiceRepository(db).Create(ctx, nil, inv))
	repo := NewHistoryRepository(db)

	require.NoError(t, repo.Create(ctx, nil, &model.History{
		UserID: u.ID, InvoiceID: inv.ID, Action: model.ActionCreated, Type: model.HistoryTypeInvoice,
		Description: "created", Status: model.HistoryActive, Timestamp: time.Now(),
	}))
	require.NoError(t, repo.Create(ctx, nil, newItemEvent(u.ID, inv.ID, pen.ID, model.ActionAdded)))
	require.NoError(t, repo.Create(ctx, nil, newItemEvent(u.ID, inv.ID, pad.ID, model.ActionAdded)))

	n, err := repo.DeactivateInvoice(ctx, nil, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	active, err := repo.ListActiveByInvoice(ctx, nil, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}
