package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type HistoryResponse struct {
	ID          uint            `json:"id"`
	InvoiceID   uint            `json:"invoice_id"`
	ItemID      *uint           `json:"item_id"`
	UserID      uint            `json:"user_id"`
	UserEmail   string          `json:"user_email,omitempty"`
	Action      string          `json:"action"`
	Type        string          `json:"type"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Status      int             `json:"status"`
	Timestamp   time.Time       `json:"timestamp"`
}
