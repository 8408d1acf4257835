package dto

import "github.com/shopspring/decimal"

type ItemResponse struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
