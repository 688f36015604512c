package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
)

// OrderRepository owns limit_orders. Status transitions are conditional updates
// guarded by status = 'open'; the bool result reports whether this caller won.
type OrderRepository interface {
	InsertLimitOrder(ctx context.Context, item *models.LimitOrder) error
	GetLimitOrder(ctx context.Context, id string) (*models.LimitOrder, error)
	ListLimitOrders(ctx context.Context, params ListLimitOrdersParams) ([]models.LimitOrder, error)
	ListOpenLimitOrders(ctx context.Context, limit int) ([]models.LimitOrder, error)
	ListOpenOrderSymbols(ctx context.Context) ([]string, error)
	CancelOpenLimitOrder(ctx context.Context, id, userAddress string) (bool, error)
	TriggerOpenLimitOrder(ctx context.Context, id string, price decimal.Decimal) (bool, error)
}

// HistoryRepository is append-only: there is no update or delete.
type HistoryRepository interface {
	InsertOrderHistory(ctx context.Context, items []models.OrderHistoryEntry) error
	ListOrderHistory(ctx context.Context, params ListOrderHistoryParams) ([]models.OrderHistoryEntry, error)
}

type PriceRepository interface {
	GetLatestPrices(ctx context.Context, symbols []string) (map[string]models.PriceQuote, error)
	UpsertPriceQuotes(ctx context.Context, items []models.PriceQuote) error
}

type WalletRepository interface {
	IsWalletOwnedBy(ctx context.Context, userID, address string) (bool, error)
	// LinkWallet is idempotent for an existing (userID, address) pair.
	LinkWallet(ctx context.Context, item *models.UserWallet) error
	ListUserWallets(ctx context.Context, userID string) ([]models.UserWallet, error)
}

type Repository interface {
	OrderRepository
	HistoryRepository
	PriceRepository
	WalletRepository

	Ping(ctx context.Context) error
}

type ListLimitOrdersParams struct {
	Limit       int
	Offset      int
	UserAddress *string
	Symbol      *string
	Statuses    []string
	OrderBy     string
	Asc         *bool
}

type ListOrderHistoryParams struct {
	Limit       int
	Offset      int
	UserAddress *string
	EventType   *string
}
