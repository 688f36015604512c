package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
)

func TestShouldTrigger(t *testing.T) {
	d := decimal.NewFromInt
	cases := []struct {
		side    string
		limit   int64
		current int64
		want    bool
	}{
		{models.SideBuy, 100, 95, true},
		{models.SideBuy, 100, 100, true},
		{models.SideBuy, 100, 101, false},
		{models.SideSell, 100, 105, true},
		{models.SideSell, 100, 100, true},
		{models.SideSell, 100, 99, false},
		{"hold", 100, 100, false},
	}
	for _, tc := range cases {
		got := ShouldTrigger(tc.side, d(tc.limit), d(tc.current))
		if got != tc.want {
			t.Fatalf("ShouldTrigger(%s, %d, %d)=%v want=%v", tc.side, tc.limit, tc.current, got, tc.want)
		}
	}
}

func setPrice(t *testing.T, f *fixture, symbol string, price int64, at time.Time) {
	t.Helper()
	require.NoError(t, f.store.UpsertPriceQuotes(context.Background(), []models.PriceQuote{
		{Symbol: symbol, PriceUSD: decimal.NewFromInt(price), Source: "test", UpdatedAt: at},
	}))
}

func TestRunOnce_TriggerThenCancelFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.orders.Create(ctx, CreateLimitOrderInput{
		Chain:       "SOL",
		Symbol:      "SOL",
		Side:        "buy",
		LimitPrice:  decimal.NewFromInt(100),
		Amount:      decimal.NewFromInt(2),
		UserAddress: "abc",
	})
	require.NoError(t, err)
	setPrice(t, f, "SOL", 95, time.Now().UTC())

	res, err := f.executor().RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Triggered)
	assert.Equal(t, 1, res.Scanned)
	assert.Equal(t, 1, res.Symbols)

	got, err := f.store.GetLimitOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusTriggered, got.Status)
	assert.True(t, got.TriggeredPrice.Valid)

	_, err = f.orders.Cancel(ctx, CancelLimitOrderInput{ID: order.ID, UserAddress: "abc"})
	require.ErrorIs(t, err, ErrNotFoundOrNotOpen)

	// a second pass finds nothing open
	res, err = f.executor().RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Triggered)

	f.audit.Flush()
	rows, err := f.store.ListOrderHistory(ctx, repository.ListOrderHistoryParams{})
	require.NoError(t, err)
	var kinds []string
	for _, r := range rows {
		kinds = append(kinds, r.EventType)
	}
	assert.ElementsMatch(t, []string{models.EventLimitCreate, models.EventLimitTrigger}, kinds)
}

func TestRunOnce_SidesAndMissingQuotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mk := func(symbol, side string, limit int64) {
		_, err := f.orders.Create(ctx, CreateLimitOrderInput{
			Chain: "SOL", Symbol: symbol, Side: side,
			LimitPrice: decimal.NewFromInt(limit), Amount: decimal.NewFromInt(1), UserAddress: "u",
		})
		require.NoError(t, err)
	}
	mk("SOL", "sell", 100) // 105 >= 100
	mk("SOL", "buy", 90)   // 105 > 90, stays open
	mk("JUP", "buy", 1)    // no quote
	setPrice(t, f, "SOL", 105, time.Now().UTC())

	res, err := f.executor().RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, PassResult{Scanned: 3, Symbols: 2, Triggered: 1, Skipped: 1}, res)
}

func TestRunOnce_StaleQuoteSkipped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.orders.Create(ctx, validCreateInput())
	require.NoError(t, err)
	setPrice(t, f, "SOL", 50, time.Now().UTC().Add(-time.Hour))

	ex := f.executor()
	ex.MaxPriceAge = 5 * time.Minute
	res, err := ex.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Triggered)
	assert.Equal(t, 1, res.Skipped)

	ex.MaxPriceAge = 0
	res, err = ex.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Triggered)
}

type failingPrices struct{ repository.PriceRepository }

func (failingPrices) GetLatestPrices(context.Context, []string) (map[string]models.PriceQuote, error) {
	return nil, errors.New("price store down")
}

func TestRunOnce_PriceLookupFailureTriggersNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.orders.Create(ctx, validCreateInput())
	require.NoError(t, err)

	ex := f.executor()
	ex.Prices = failingPrices{}
	res, err := ex.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Triggered)
	assert.Equal(t, 1, res.Skipped)
}

func TestRunOnce_LostRaceIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.orders.Create(ctx, validCreateInput())
	require.NoError(t, err)
	setPrice(t, f, "SOL", 95, time.Now().UTC())

	ex := f.executor()
	ex.Orders = &cancelBeforeTrigger{OrderRepository: f.store, cancel: func() {
		ok, err := f.store.CancelOpenLimitOrder(ctx, order.ID, "abc")
		require.NoError(t, err)
		require.True(t, ok)
	}}
	res, err := ex.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Triggered)

	got, err := f.store.GetLimitOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCanceled, got.Status)
}

// cancelBeforeTrigger cancels the order between the batch read and the trigger update.
type cancelBeforeTrigger struct {
	repository.OrderRepository
	cancel func()
}

func (c *cancelBeforeTrigger) TriggerOpenLimitOrder(ctx context.Context, id string, price decimal.Decimal) (bool, error) {
	c.cancel()
	return c.OrderRepository.TriggerOpenLimitOrder(ctx, id, price)
}

func TestRunOnce_PublishesTriggerEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub, unsubscribe := f.events.Subscribe("abc", 4)
	defer unsubscribe()

	_, err := f.orders.Create(ctx, validCreateInput())
	require.NoError(t, err)
	setPrice(t, f, "SOL", 100, time.Now().UTC())
	_, err = f.executor().RunOnce(ctx)
	require.NoError(t, err)

	var kinds []string
	for len(sub) > 0 {
		kinds = append(kinds, (<-sub).Kind)
	}
	assert.Equal(t, []string{EventCreated, EventTriggered}, kinds)
}
