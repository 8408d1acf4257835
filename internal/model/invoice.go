package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the aggregate root. It owns its lines; a line only carries the
// invoice id, never a pointer back to the invoice.
// Once Deleted is true the invoice is read-only.
type Invoice struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;index"`
	Deleted   bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User  *User         `gorm:"foreignKey:UserID"`
	Items []InvoiceItem `gorm:"foreignKey:InvoiceID"`
}

func (Invoice) TableName() string { return "invoices" }

// HasItem reports whether a line for the catalog item is already present.
func (inv *Invoice) HasItem(itemID uint) bool {
	for _, line := range inv.Items {
		if line.ItemID == itemID {
			return true
		}
	}
	return false
}

// Total sums price × quantity over the current lines. Lines without a loaded
// Item contribute nothing.
func (inv *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range inv.Items {
		total = total.Add(inv.Items[i].Subtotal())
	}
	return total
}

// InvoiceItem is one line of an invoice. (InvoiceID, ItemID) is unique.
type InvoiceItem struct {
	ID        uint `gorm:"primaryKey"`
	InvoiceID uint `gorm:"not null;uniqueIndex:idx_invoice_items_invoice_item"`
	ItemID    uint `gorm:"not null;uniqueIndex:idx_invoice_items_invoice_item"`
	Quantity  int  `gorm:"not null"`

	Item *Item `gorm:"foreignKey:ItemID"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// Subtotal is the line's price × quantity, zero when Item is not loaded.
func (l *InvoiceItem) Subtotal() decimal.Decimal {
	if l.Item == nil {
		return decimal.Zero
	}
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
