package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is the latest known price for a symbol.
type PriceQuote struct {
	Symbol    string          `gorm:"type:varchar(32);primaryKey" json:"symbol"`
	PriceUSD  decimal.Decimal `gorm:"column:price_usd;type:numeric(30,12);not null" json:"price_usd"`
	Source    string          `gorm:"type:varchar(32)" json:"source"`
	UpdatedAt time.Time       `gorm:"index" json:"updated_at"`
}

func (PriceQuote) TableName() string {
	return "price_quotes"
}
