package gormrepository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
)

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database shared across goroutines
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(
		&models.LimitOrder{},
		&models.OrderHistoryEntry{},
		&models.PriceQuote{},
		&models.UserWallet{},
	))
	return New(gdb), gdb
}

func seedOrder(t *testing.T, s *Store, symbol, side, user string, limit int64) *models.LimitOrder {
	t.Helper()
	o := &models.LimitOrder{
		ID:          uuid.NewString(),
		Chain:       models.ChainSOL,
		Symbol:      symbol,
		Side:        side,
		LimitPrice:  decimal.NewFromInt(limit),
		Amount:      decimal.NewFromInt(1),
		UserAddress: user,
		Status:      models.OrderStatusOpen,
	}
	require.NoError(t, s.InsertLimitOrder(context.Background(), o))
	return o
}

func TestCancelOpenLimitOrder_ConditionalOnOwnerAndStatus(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	o := seedOrder(t, s, "SOL", models.SideBuy, "abc", 100)

	ok, err := s.CancelOpenLimitOrder(ctx, o.ID, "someone-else")
	require.NoError(t, err)
	assert.False(t, ok, "foreign owner must not cancel")

	ok, err = s.CancelOpenLimitOrder(ctx, o.ID, "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CancelOpenLimitOrder(ctx, o.ID, "abc")
	require.NoError(t, err)
	assert.False(t, ok, "second cancel is a no-op")

	got, err := s.GetLimitOrder(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.OrderStatusCanceled, got.Status)
}

func TestTriggerAfterCancel_StaysCanceled(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	o := seedOrder(t, s, "SOL", models.SideBuy, "abc", 100)

	ok, err := s.CancelOpenLimitOrder(ctx, o.ID, "abc")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.TriggerOpenLimitOrder(ctx, o.ID, decimal.NewFromInt(90))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.GetLimitOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCanceled, got.Status)
	assert.False(t, got.TriggeredPrice.Valid)
}

func TestCancelAfterTrigger_StaysTriggered(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	o := seedOrder(t, s, "SOL", models.SideSell, "abc", 100)

	ok, err := s.TriggerOpenLimitOrder(ctx, o.ID, decimal.NewFromInt(101))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.CancelOpenLimitOrder(ctx, o.ID, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.GetLimitOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusTriggered, got.Status)
	assert.True(t, got.TriggeredPrice.Decimal.Equal(decimal.NewFromInt(101)))
}

func TestConcurrentCancelAndTrigger_ExactlyOneWins(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		o := seedOrder(t, s, "SOL", models.SideBuy, "abc", 100)
		var wg sync.WaitGroup
		var canceled, triggered bool
		wg.Add(2)
		go func() {
			defer wg.Done()
			ok, err := s.CancelOpenLimitOrder(ctx, o.ID, "abc")
			assert.NoError(t, err)
			canceled = ok
		}()
		go func() {
			defer wg.Done()
			ok, err := s.TriggerOpenLimitOrder(ctx, o.ID, decimal.NewFromInt(95))
			assert.NoError(t, err)
			triggered = ok
		}()
		wg.Wait()

		require.True(t, canceled != triggered, "exactly one transition must win (canceled=%v triggered=%v)", canceled, triggered)
		got, err := s.GetLimitOrder(ctx, o.ID)
		require.NoError(t, err)
		if canceled {
			assert.Equal(t, models.OrderStatusCanceled, got.Status)
		} else {
			assert.Equal(t, models.OrderStatusTriggered, got.Status)
		}
	}
}

func TestListOpenLimitOrdersAndSymbols(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	a := seedOrder(t, s, "SOL", models.SideBuy, "abc", 100)
	seedOrder(t, s, "BTC", models.SideSell, "abc", 70000)
	c := seedOrder(t, s, "SOL", models.SideSell, "def", 150)
	_, err := s.CancelOpenLimitOrder(ctx, c.ID, "def")
	require.NoError(t, err)

	open, err := s.ListOpenLimitOrders(ctx, 500)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	symbols, err := s.ListOpenOrderSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "SOL"}, symbols)

	user := "abc"
	sym := "sol"
	items, err := s.ListLimitOrders(ctx, repository.ListLimitOrdersParams{
		UserAddress: &user,
		Symbol:      &sym,
		Statuses:    []string{models.OrderStatusOpen, models.OrderStatusTriggered},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)
}

func TestInsertOrderHistory_BatchAssignsIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	items := []models.OrderHistoryEntry{
		{UserAddress: "x", EventType: models.EventLimitCreate},
		{UserAddress: "y", EventType: models.EventLimitCancel},
	}
	require.NoError(t, s.InsertOrderHistory(ctx, items))
	require.NotZero(t, items[0].ID)
	require.NotZero(t, items[1].ID)
	assert.NotEqual(t, items[0].ID, items[1].ID)
	assert.False(t, items[0].CreatedAt.IsZero())

	user := "y"
	rows, err := s.ListOrderHistory(ctx, repository.ListOrderHistoryParams{UserAddress: &user})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.EventLimitCancel, rows[0].EventType)
}

func TestPriceQuotes_UpsertAndBatchLookup(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, s.UpsertPriceQuotes(ctx, []models.PriceQuote{
		{Symbol: "SOL", PriceUSD: decimal.NewFromInt(100), Source: "binance", UpdatedAt: now},
		{Symbol: "BTC", PriceUSD: decimal.NewFromInt(70000), Source: "binance", UpdatedAt: now},
	}))
	require.NoError(t, s.UpsertPriceQuotes(ctx, []models.PriceQuote{
		{Symbol: "SOL", PriceUSD: decimal.NewFromInt(95), Source: "stream", UpdatedAt: now.Add(time.Second)},
	}))

	prices, err := s.GetLatestPrices(ctx, []string{"sol", "BTC", "DOGE"})
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.True(t, prices["SOL"].PriceUSD.Equal(decimal.NewFromInt(95)))
	assert.Equal(t, "stream", prices["SOL"].Source)
	_, ok := prices["DOGE"]
	assert.False(t, ok)
}

func TestIsWalletOwnedBy(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.LinkWallet(ctx, &models.UserWallet{UserID: "u1", Address: " maker-1 ", Chain: models.ChainSOL}))
	// linking twice is a no-op
	require.NoError(t, s.LinkWallet(ctx, &models.UserWallet{UserID: "u1", Address: "maker-1", Chain: models.ChainSOL}))

	wallets, err := s.ListUserWallets(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, "maker-1", wallets[0].Address)

	ok, err := s.IsWalletOwnedBy(ctx, "u1", "maker-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsWalletOwnedBy(ctx, "u2", "maker-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.IsWalletOwnedBy(ctx, "", "maker-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
