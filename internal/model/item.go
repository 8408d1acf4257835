package model

import "github.com/shopspring/decimal"

// Item is a catalog entry. The invoice core only ever reads it.
type Item struct {
	ID    uint            `gorm:"primaryKey"`
	Name  string          `gorm:"not null"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (Item) TableName() string { return "items" }
