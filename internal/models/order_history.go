package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	EventLimitCreate  = "limit_create"
	EventLimitCancel  = "limit_cancel"
	EventLimitExecute = "limit_execute"
	EventLimitTrigger = "limit_trigger"
	EventMarketTrade  = "market_trade"
)

const (
	SourceDB    = "DB"
	SourceJUP   = "JUP"
	SourceLocal = "LOCAL"
)

// OrderHistoryEntry is append-only. Nothing in the repository updates or deletes it.
type OrderHistoryEntry struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserAddress string  `gorm:"type:varchar(128);not null;index" json:"user_address"`
	Chain       string  `gorm:"type:varchar(8)" json:"chain"`
	Symbol      string  `gorm:"type:varchar(32);index" json:"symbol"`
	BaseMint    *string `gorm:"type:varchar(64)" json:"base_mint,omitempty"`
	QuoteMint   *string `gorm:"type:varchar(64)" json:"quote_mint,omitempty"`
	Side        *string `gorm:"type:varchar(8)" json:"side,omitempty"`
	EventType   string  `gorm:"type:varchar(32);not null;index" json:"event_type"`
	Source      string  `gorm:"type:varchar(64)" json:"source"`

	BaseAmount  decimal.NullDecimal `gorm:"type:numeric(38,12)" json:"base_amount"`
	QuoteAmount decimal.NullDecimal `gorm:"type:numeric(38,12)" json:"quote_amount"`
	PriceQuote  decimal.NullDecimal `gorm:"type:numeric(30,12)" json:"price_quote"`
	PriceUSD    decimal.NullDecimal `gorm:"column:price_usd;type:numeric(30,12)" json:"price_usd"`
	FeeQuote    decimal.NullDecimal `gorm:"type:numeric(30,12)" json:"fee_quote"`

	TxHash *string        `gorm:"type:varchar(128)" json:"tx_hash,omitempty"`
	Meta   datatypes.JSON `json:"meta,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (OrderHistoryEntry) TableName() string {
	return "order_history"
}
