package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/metrics"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
)

const defaultExecutorBatch = 500

type PassResult struct {
	Scanned   int `json:"scanned"`
	Symbols   int `json:"symbols"`
	Triggered int `json:"triggered"`
	Skipped   int `json:"skipped"`
}

// TriggerExecutor runs single passes over open orders. It holds no state between
// passes; cron or an HTTP call drives it.
type TriggerExecutor struct {
	Orders  repository.OrderRepository
	Prices  repository.PriceRepository
	Audit   *AuditRecorder
	Events  *OrderEvents
	Metrics *metrics.Metrics
	Logger  *zap.Logger

	BatchSize   int
	MaxPriceAge time.Duration

	now func() time.Time
}

// ShouldTrigger reports whether current satisfies the limit for side. Equality
// triggers both sides.
func ShouldTrigger(side string, limit, current decimal.Decimal) bool {
	switch side {
	case models.SideBuy:
		return current.LessThanOrEqual(limit)
	case models.SideSell:
		return current.GreaterThanOrEqual(limit)
	default:
		return false
	}
}

func (e *TriggerExecutor) RunOnce(ctx context.Context) (PassResult, error) {
	var res PassResult
	if e == nil || e.Orders == nil || e.Prices == nil {
		return res, errRepoUnavailable
	}
	start := time.Now()
	defer func() { e.Metrics.ObserveExecutorPass(time.Since(start)) }()

	batch := e.BatchSize
	if batch <= 0 {
		batch = defaultExecutorBatch
	}
	orders, err := e.Orders.ListOpenLimitOrders(ctx, batch)
	if err != nil {
		return res, err
	}
	res.Scanned = len(orders)
	if len(orders) == 0 {
		return res, nil
	}

	seen := map[string]struct{}{}
	symbols := make([]string, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.Symbol]; ok {
			continue
		}
		seen[o.Symbol] = struct{}{}
		symbols = append(symbols, o.Symbol)
	}
	res.Symbols = len(symbols)

	quotes, err := e.Prices.GetLatestPrices(ctx, symbols)
	if err != nil {
		e.warn("executor price lookup failed", zap.Int("symbols", len(symbols)), zap.Error(err))
		res.Skipped = len(orders)
		return res, nil
	}

	now := e.clock()
	for i := range orders {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		o := orders[i]
		q, ok := quotes[o.Symbol]
		if !ok || !q.PriceUSD.IsPositive() {
			res.Skipped++
			continue
		}
		if e.MaxPriceAge > 0 && !q.UpdatedAt.IsZero() && now.Sub(q.UpdatedAt) > e.MaxPriceAge {
			res.Skipped++
			continue
		}
		if !ShouldTrigger(o.Side, o.LimitPrice, q.PriceUSD) {
			continue
		}
		won, err := e.Orders.TriggerOpenLimitOrder(ctx, o.ID, q.PriceUSD)
		if err != nil {
			e.warn("executor trigger failed", zap.String("order_id", o.ID), zap.Error(err))
			continue
		}
		if !won {
			// canceled (or triggered elsewhere) since the batch was read
			continue
		}
		res.Triggered++
		o.Status = models.OrderStatusTriggered
		o.TriggeredPrice = decimal.NewNullDecimal(q.PriceUSD)
		e.Events.Publish(orderEvent(EventTriggered, &o))
		e.Audit.Record(limitAuditEntry(models.EventLimitTrigger, &o, o.TriggeredPrice))
	}
	e.Metrics.OrdersTriggered(res.Triggered)
	return res, nil
}

func (e *TriggerExecutor) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now().UTC()
}

func (e *TriggerExecutor) warn(msg string, fields ...zap.Field) {
	if e.Logger != nil {
		e.Logger.Warn(msg, fields...)
	}
}
