package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryAction is what happened to the invoice or line.
type HistoryAction string

const (
	ActionCreated HistoryAction = "Created"
	ActionAdded   HistoryAction = "Added"
	ActionEdited  HistoryAction = "Edited"
	ActionDeleted HistoryAction = "Deleted"
)

// HistoryType distinguishes invoice-level from line-level events.
type HistoryType string

const (
	HistoryTypeInvoice HistoryType = "Invoice"
	HistoryTypeItem    HistoryType = "Item"
)

// History status values. Exactly one record per (invoice, item) is active.
const (
	HistoryInactive = 0
	HistoryActive   = 1
)

// History is an append-only audit record. Quantity and Price are frozen at
// event time; the only mutation ever applied is Status 1 → 0.
type History struct {
	ID          uint            `gorm:"primaryKey"`
	UserID      uint            `gorm:"not null;index"`
	ItemID      *uint           `gorm:"index"`
	InvoiceID   uint            `gorm:"not null;index"`
	Quantity    int             `gorm:"not null;default:0"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Action      HistoryAction   `gorm:"type:varchar(20);not null"`
	Description string          `gorm:"not null"`
	Type        HistoryType     `gorm:"type:varchar(20);not null"`
	Status      int             `gorm:"not null;default:1"`
	Timestamp   time.Time       `gorm:"autoCreateTime"`

	User *User `gorm:"foreignKey:UserID"`
	Item *Item `gorm:"foreignKey:ItemID"`
}

func (History) TableName() string { return "history" }

// IsActive reports whether this is the current record for its key.
func (h *History) IsActive() bool { return h.Status == HistoryActive }
