package repository

import (
	"context"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"

	"gorm.io/gorm"
)

type InvoiceItemRepository interface {
	Create(ctx context.Context, tx *gorm.DB, line *model.InvoiceItem) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.InvoiceItem, error)
	UpdateQuantity(ctx context.Context, tx *gorm.DB, id uint, quantity int) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type invoiceItemRepo struct{ db *gorm.DB }

func NewInvoiceItemRepository(db *gorm.DB) InvoiceItemRepository { return &invoiceItemRepo{db: db} }

// Create fails with a Conflict when the item is already on the invoice.
func (r *invoiceItemRepo) Create(ctx context.Context, tx *gorm.DB, line *model.InvoiceItem) error {
	return translate(conn(ctx, r.db, tx).Omit("Item").Create(line).Error, "invoice item")
}

func (r *invoiceItemRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.InvoiceItem, error) {
	var line model.InvoiceItem
	if err := conn(ctx, r.db, tx).Preload("Item").First(&line, id).Error; err != nil {
		return nil, translate(err, "invoice item")
	}
	return &line, nil
}

func (r *invoiceItemRepo) UpdateQuantity(ctx context.Context, tx *gorm.DB, id uint, quantity int) error {
	res := conn(ctx, r.db, tx).Model(&model.InvoiceItem{}).Where("id = ?", id).Update("quantity", quantity)
	if res.Error != nil {
		return translate(res.Error, "invoice item")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "invoice item")
	}
	return nil
}

func (r *invoiceItemRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := conn(ctx, r.db, tx).Delete(&model.InvoiceItem{}, id)
	if res.Error != nil {
		return translate(res.Error, "invoice item")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "invoice item")
	}
	return nil
}
