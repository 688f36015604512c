package models

import "time"

type UserWallet struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_wallet" json:"user_id"`
	Address   string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_user_wallet;index" json:"address"`
	Chain     string    `gorm:"type:varchar(8)" json:"chain"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserWallet) TableName() string {
	return "user_wallets"
}
