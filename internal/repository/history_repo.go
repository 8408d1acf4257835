package repository

import (
	"context"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoryRepository is append-only apart from Deactivate, which is the one
// permitted mutation (status 1 → 0).
type HistoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, h *model.History) error
	FindActiveItem(ctx context.Context, tx *gorm.DB, invoiceID, itemID uint) (*model.History, error)
	ListActiveByInvoice(ctx context.Context, tx *gorm.DB, invoiceID uint) ([]model.History, error)
	ListByInvoice(ctx context.Context, tx *gorm.DB, invoiceID uint) ([]model.History, error)
	Deactivate(ctx context.Context, tx *gorm.DB, id uint) error
	DeactivateInvoice(ctx context.Context, tx *gorm.DB, invoiceID uint) (int64, error)
}

type historyRepo struct{ db *gorm.DB }

func NewHistoryRepository(db *gorm.DB) HistoryRepository { return &historyRepo{db: db} }

func (r *historyRepo) Create(ctx context.Context, tx *gorm.DB, h *model.History) error {
	return translate(conn(ctx, r.db, tx).Omit("User", "Item").Create(h).Error, "history record")
}

// FindActiveItem returns the active line-level record for (invoice, item).
func (r *historyRepo) FindActiveItem(ctx context.Context, tx *gorm.DB, invoiceID, itemID uint) (*model.History, error) {
	var h model.History
	err := conn(ctx, r.db, tx).
		Where("invoice_id = ? AND item_id = ? AND type = ? AND status = ?",
			invoiceID, itemID, model.HistoryTypeItem, model.HistoryActive).
		First(&h).Error
	if err != nil {
		return nil, translate(err, "active history record")
	}
	return &h, nil
}

func (r *historyRepo) ListActiveByInvoice(ctx context.Context, tx *gorm.DB, invoiceID uint) ([]model.History, error) {
	var rows []model.History
	err := conn(ctx, r.db, tx).
		Where("invoice_id = ? AND status = ?", invoiceID, model.HistoryActive).
		Order("id ASC").
		Find(&rows).Error
	return rows, translate(err, "history record")
}

// ListByInvoice returns every record of the invoice, newest first.
func (r *historyRepo) ListByInvoice(ctx context.Context, tx *gorm.DB, invoiceID uint) ([]model.History, error) {
	var rows []model.History
	err := conn(ctx, r.db, tx).
		Preload("User").
		Where("invoice_id = ?", invoiceID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order("id DESC").
		Find(&rows).Error
	return rows, translate(err, "history record")
}

func (r *historyRepo) Deactivate(ctx context.Context, tx *gorm.DB, id uint) error {
	res := conn(ctx, r.db, tx).Model(&model.History{}).
		Where("id = ? AND status = ?", id, model.HistoryActive).
		Update("status", model.HistoryInactive)
	if res.Error != nil {
		return translate(res.Error, "history record")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "active history record")
	}
	return nil
}

// DeactivateInvoice sets status 0 on every active record of the invoice and
// reports how many were superseded.
func (r *historyRepo) DeactivateInvoice(ctx context.Context, tx *gorm.DB, invoiceID uint) (int64, error) {
	res := conn(ctx, r.db, tx).Model(&model.History{}).
		Where("invoice_id = ? AND status = ?", invoiceID, model.HistoryActive).
		Update("status", model.HistoryInactive)
	return res.RowsAffected, translate(res.Error, "history record")
}
