package service

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/metrics"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
)

// AuditRecorder writes order_history rows off the request path. Record never blocks
// on storage and never reports failure to the caller; failures are logged and counted.
type AuditRecorder struct {
	Repo    repository.HistoryRepository
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Timeout time.Duration

	pool *ants.Pool
	wg   sync.WaitGroup
}

func NewAuditRecorder(repo repository.HistoryRepository, logger *zap.Logger, m *metrics.Metrics, workers int, timeout time.Duration) (*AuditRecorder, error) {
	if workers <= 0 {
		workers = 8
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &AuditRecorder{
		Repo:    repo,
		Logger:  logger,
		Metrics: m,
		Timeout: timeout,
		pool:    pool,
	}, nil
}

func (a *AuditRecorder) Record(entry models.OrderHistoryEntry) {
	if a == nil || a.Repo == nil {
		return
	}
	a.wg.Add(1)
	task := func() {
		defer a.wg.Done()
		a.write(entry)
	}
	if a.pool == nil {
		go task()
		return
	}
	if err := a.pool.Submit(task); err != nil {
		// pool saturated or released
		go task()
	}
}

// Flush blocks until every recorded entry has been attempted.
func (a *AuditRecorder) Flush() {
	if a == nil {
		return
	}
	a.wg.Wait()
}

func (a *AuditRecorder) Close() {
	if a == nil {
		return
	}
	a.Flush()
	if a.pool != nil {
		a.pool.Release()
	}
}

func (a *AuditRecorder) write(entry models.OrderHistoryEntry) {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.Repo.InsertOrderHistory(ctx, []models.OrderHistoryEntry{entry}); err != nil {
		a.Metrics.AuditFailed()
		if a.Logger != nil {
			a.Logger.Warn("order history audit failed",
				zap.String("event_type", entry.EventType),
				zap.String("user_address", entry.UserAddress),
				zap.String("symbol", entry.Symbol),
				zap.Error(err),
			)
		}
	}
}
