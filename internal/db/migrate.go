package db

import (
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.LimitOrder{},
		&models.OrderHistoryEntry{},
		&models.PriceQuote{},
		&models.UserWallet{},
	)
}
