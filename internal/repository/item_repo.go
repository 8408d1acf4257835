package repository

import (
	"context"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"

	"gorm.io/gorm"
)

// ItemRepository is read-only: the catalog is maintained by the seeder.
type ItemRepository interface {
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
	ListNotInInvoice(ctx context.Context, invoiceID uint) ([]model.Item, error)
}

type itemRepo struct{ db *gorm.DB }

func NewItemRepository(db *gorm.DB) ItemRepository { return &itemRepo{db: db} }

func (r *itemRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Item, error) {
	var it model.Item
	if err := conn(ctx, r.db, tx).First(&it, id).Error; err != nil {
		return nil, translate(err, "item")
	}
	return &it, nil
}

func (r *itemRepo) List(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).Order("id ASC").Find(&items).Error
	return items, translate(err, "item")
}

func (r *itemRepo) ListNotInInvoice(ctx context.Context, invoiceID uint) ([]model.Item, error) {
	var items []model.Item
	sub := r.db.Model(&model.InvoiceItem{}).Select("item_id").Where("invoice_id = ?", invoiceID)
	err := r.db.WithContext(ctx).
		Where("id NOT IN (?)", sub).
		Order("id ASC").
		Find(&items).Error
	return items, translate(err, "item")
}
