package repository

import (
	"context"
	"strings"
	"time"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/dto"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"

	"gorm.io/gorm"
)

// InvoiceSearch narrows a search. Term matches the owner's full name
// (case-insensitive substring), InvoiceID matches exactly; when both are set
// either may match. OwnerID, when set, restricts results to that owner.
type InvoiceSearch struct {
	Term      string
	InvoiceID *uint
	OwnerID   *uint
}

type InvoiceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Invoice, error)
	MarkDeleted(ctx context.Context, tx *gorm.DB, id uint) error
	Touch(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, q dto.PageQuery) ([]model.Invoice, int64, error)
	ListByOwner(ctx context.Context, userID uint, q dto.PageQuery) ([]model.Invoice, int64, error)
	Search(ctx context.Context, s InvoiceSearch, q dto.PageQuery) ([]model.Invoice, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) DB() *gorm.DB { return r.db }

func (r *invoiceRepo) Create(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	return translate(conn(ctx, r.db, tx).Omit("Items", "User").Create(inv).Error, "invoice")
}

// FindByID loads the invoice with its owner and its lines (each with its
// catalog item), lines in insertion order.
func (r *invoiceRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Invoice, error) {
	var inv model.Invoice
	err := conn(ctx, r.db, tx).
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("invoice_items.id ASC") }).
		Preload("Items.Item").
		First(&inv, id).Error
	if err != nil {
		return nil, translate(err, "invoice")
	}
	return &inv, nil
}

func (r *invoiceRepo) MarkDeleted(ctx context.Context, tx *gorm.DB, id uint) error {
	res := conn(ctx, r.db, tx).Model(&model.Invoice{}).Where("id = ?", id).Update("deleted", true)
	if res.Error != nil {
		return translate(res.Error, "invoice")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "invoice")
	}
	return nil
}

// Touch bumps updated_at after a line changes.
func (r *invoiceRepo) Touch(ctx context.Context, tx *gorm.DB, id uint) error {
	err := conn(ctx, r.db, tx).Model(&model.Invoice{}).Where("id = ?", id).UpdateColumn("updated_at", time.Now()).Error
	return translate(err, "invoice")
}

func (r *invoiceRepo) List(ctx context.Context, q dto.PageQuery) ([]model.Invoice, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&model.Invoice{}), q)
}

func (r *invoiceRepo) ListByOwner(ctx context.Context, userID uint, q dto.PageQuery) ([]model.Invoice, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&model.Invoice{}).Where("invoices.user_id = ?", userID), q)
}

func (r *invoiceRepo) Search(ctx context.Context, s InvoiceSearch, q dto.PageQuery) ([]model.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Joins("JOIN users ON users.id = invoices.user_id")

	term := strings.TrimSpace(s.Term)
	switch {
	case term != "" && s.InvoiceID != nil:
		query = query.Where(`(LOWER(users.full_name) LIKE ? ESCAPE '\') OR invoices.id = ?`, likePattern(term), *s.InvoiceID)
	case term != "":
		query = query.Where(`LOWER(users.full_name) LIKE ? ESCAPE '\'`, likePattern(term))
	case s.InvoiceID != nil:
		query = query.Where("invoices.id = ?", *s.InvoiceID)
	}
	if s.OwnerID != nil {
		query = query.Where("invoices.user_id = ?", *s.OwnerID)
	}
	return r.page(query, q)
}

func (r *invoiceRepo) page(query *gorm.DB, q dto.PageQuery) ([]model.Invoice, int64, error) {
	order, err := orderBy("invoices", q.Sort)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "invoice")
	}

	var invoices []model.Invoice
	err = query.
		Preload("User").
		Order(order).
		Offset(q.Offset()).Limit(q.Limit).
		Find(&invoices).Error
	return invoices, total, translate(err, "invoice")
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return "%" + strings.ToLower(r.Replace(term)) + "%"
}
