package repository

import (
	"context"
	"testing"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/apierror"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemRepo_ListNotInInvoice(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "Ada", "ada@example.com", model.RoleIDUser)
	pen := testutil.CreateItem(t, db, "Pen", "1.00")
	pad := testutil.CreateItem(t, db, "Pad", "2.00")
	ink := testutil.CreateItem(t, db, "Ink", "3.00")

	inv := &model.Invoice{UserID: u.ID}
	require.NoError(t, NewInvoiceRepository(db).Create(ctx, nil, inv))
	require.NoError(t, NewInvoiceItemRepository(db).Create(ctx, nil, &model.InvoiceItem{InvoiceID: inv.ID, ItemID: pad.ID, Quantity: 1}))

	repo := NewItemRepository(db)
	items, err := repo.ListNotInInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, pen.ID, items[0].ID)
	assert.Equal(t, ink.ID, items[1].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = repo.FindByID(ctx, nil, 404)
	assert.ErrorIs(t, err, apierror.ErrNotFound)
}

func TestNewCachedItemRepository_NilRedisIsPassthrough(t *testing.T) {
	inner := NewItemRepository(testutil.NewDB(t))
	assert.Same(t, inner, NewCachedItemRepository(inner, nil, 0))
}

func TestUserRepo_EmailIsCaseInsensitiveAndUnique(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	u := &model.User{FullName: "Ada", Email: "Ada@Example.com", PasswordHash: "x", RoleID: model.RoleIDUser}
	require.NoError(t, repo.Create(ctx, nil, u))

	got, err := repo.FindByEmail(ctx, nil, "ADA@example.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, model.RoleUser, got.Role.Name)

	dup := &model.User{FullName: "Other", Email: "ada@example.com", PasswordHash: "x", RoleID: model.RoleIDUser}
	assert.ErrorIs(t, repo.Create(ctx, nil, dup), apierror.ErrConflict)

	require.NoError(t, repo.UpdateRole(ctx, nil, u.ID, model.RoleIDAuditor))
	got, err = repo.FindByID(ctx, nil, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAuditor, got.Role.Name)
}

func TestRoleRepo_SeededRoles(t *testing.T) {
	roles, err := NewRoleRepository(testutil.NewDB(t)).List(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, model.RoleSuperuser, roles[0].Name)
}
