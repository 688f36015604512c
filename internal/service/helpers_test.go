package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
	gormrepository "github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository/gorm"
)

func newTestStore(t *testing.T) *gormrepository.Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(
		&models.LimitOrder{},
		&models.OrderHistoryEntry{},
		&models.PriceQuote{},
		&models.UserWallet{},
	))
	return gormrepository.New(gdb)
}

// countingHistory counts audit inserts and can be told to fail them.
type countingHistory struct {
	repository.HistoryRepository

	mu    sync.Mutex
	calls int
	fail  error
}

func (c *countingHistory) InsertOrderHistory(ctx context.Context, items []models.OrderHistoryEntry) error {
	c.mu.Lock()
	c.calls++
	fail := c.fail
	c.mu.Unlock()
	if fail != nil {
		return fail
	}
	return c.HistoryRepository.InsertOrderHistory(ctx, items)
}

func (c *countingHistory) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fixture struct {
	store   *gormrepository.Store
	history *countingHistory
	audit   *AuditRecorder
	events  *OrderEvents
	orders  *LimitOrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newTestStore(t)
	history := &countingHistory{HistoryRepository: store}
	log := zaptest.NewLogger(t)
	audit, err := NewAuditRecorder(history, log, nil, 2, 0)
	require.NoError(t, err)
	t.Cleanup(audit.Close)
	events := NewOrderEvents()
	return &fixture{
		store:   store,
		history: history,
		audit:   audit,
		events:  events,
		orders: &LimitOrderService{
			Repo:   store,
			Audit:  audit,
			Events: events,
			Logger: log,
		},
	}
}

func (f *fixture) executor() *TriggerExecutor {
	return &TriggerExecutor{
		Orders: f.store,
		Prices: f.store,
		Audit:  f.audit,
		Events: f.events,
		Logger: f.orders.Logger,
	}
}
