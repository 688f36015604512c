package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ChainSOL = "SOL"
	ChainEVM = "EVM"

	SideBuy  = "buy"
	SideSell = "sell"

	OrderStatusOpen      = "open"
	OrderStatusTriggered = "triggered"
	OrderStatusCanceled  = "canceled"
	// OrderStatusFilled is reserved; no path in this service produces it.
	OrderStatusFilled = "filled"
)

type LimitOrder struct {
	ID     string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Chain  string `gorm:"type:varchar(8);not null" json:"chain"`
	Symbol string `gorm:"type:varchar(32);not null;index" json:"symbol"`
	Side   string `gorm:"type:varchar(8);not null" json:"side"`

	LimitPrice decimal.Decimal `gorm:"type:numeric(30,12);not null" json:"limit_price"`
	Amount     decimal.Decimal `gorm:"type:numeric(30,12);not null" json:"amount"`

	UserAddress string `gorm:"type:varchar(128);not null;index" json:"user_address"`
	Status      string `gorm:"type:varchar(16);not null;default:'open';index" json:"status"`

	TxHash       *string `gorm:"type:varchar(128)" json:"tx_hash,omitempty"`
	SolMint      *string `gorm:"type:varchar(64)" json:"sol_mint,omitempty"`
	EVMFromToken *string `gorm:"column:evm_from_token;type:varchar(64)" json:"evm_from_token,omitempty"`
	EVMToToken   *string `gorm:"column:evm_to_token;type:varchar(64)" json:"evm_to_token,omitempty"`

	TriggeredPrice decimal.NullDecimal `gorm:"type:numeric(30,12)" json:"triggered_price,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LimitOrder) TableName() string {
	return "limit_orders"
}

// IsTerminal reports whether the order can no longer transition.
func (o LimitOrder) IsTerminal() bool {
	return o.Status != OrderStatusOpen
}
