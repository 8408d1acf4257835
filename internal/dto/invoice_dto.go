package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type InvoiceLineRequest struct {
	ItemID   uint `json:"item_id"  validate:"required,min=1"`
	Quantity int  `json:"quantity" validate:"required,gt=0"`
}

// CreateInvoiceRequest creates an invoice for the caller, or for OwnerEmail
// when a superuser creates it on someone else's behalf.
type CreateInvoiceRequest struct {
	OwnerEmail string               `json:"email" validate:"omitempty,email"`
	Items      []InvoiceLineRequest `json:"items" validate:"dive"`
}

type AddItemRequest struct {
	ItemID   uint `json:"item_id"  validate:"required,min=1"`
	Quantity int  `json:"quantity" validate:"required,gt=0"`
}

type EditQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InvoiceLineResponse struct {
	ID       uint            `json:"id"`
	ItemID   uint            `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type InvoiceResponse struct {
	ID        uint                  `json:"id"`
	UserID    uint                  `json:"user_id"`
	OwnerName string                `json:"owner_name,omitempty"`
	Deleted   bool                  `json:"deleted"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	Items     []InvoiceLineResponse `json:"items"`
}

// InvoiceSummary is the list view; lines are omitted.
type InvoiceSummary struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	OwnerName string    `json:"owner_name,omitempty"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InvoiceTotalResponse struct {
	InvoiceID uint            `json:"invoice_id"`
	Total     decimal.Decimal `json:"total"`
}

type ReceiptQueuedResponse struct {
	JobID     string `json:"job_id"`
	InvoiceID uint   `json:"invoice_id"`
	SendTo    string `json:"send_to"`
}
