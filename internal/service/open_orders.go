package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/client/jupiter"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
)

const (
	ReloadLocal    = "local"
	ReloadExternal = "external"
)

// OpenOrder is either a LocalOpenOrder or an ExternalOpenOrder.
type OpenOrder interface {
	Source() string
	isOpenOrder()
}

type LocalOpenOrder struct {
	models.LimitOrder
}

func (LocalOpenOrder) Source() string { return models.SourceDB }
func (LocalOpenOrder) isOpenOrder()   {}

type ExternalOpenOrder struct {
	jupiter.Order
	Maker string `json:"maker"`
}

func (ExternalOpenOrder) Source() string { return models.SourceJUP }
func (ExternalOpenOrder) isOpenOrder()   {}

// OpenOrders keeps the two origins apart. The same economic order may appear in both
// lists; they are never merged by key.
type OpenOrders struct {
	Local         []LocalOpenOrder    `json:"local"`
	External      []ExternalOpenOrder `json:"external"`
	LocalError    string              `json:"local_error,omitempty"`
	ExternalError string              `json:"external_error,omitempty"`
}

type TaggedOpenOrder struct {
	Source string    `json:"source"`
	Order  OpenOrder `json:"order"`
}

// Items concatenates local then external orders, each tagged with its origin.
func (o OpenOrders) Items() []TaggedOpenOrder {
	out := make([]TaggedOpenOrder, 0, len(o.Local)+len(o.External))
	for _, l := range o.Local {
		out = append(out, TaggedOpenOrder{Source: l.Source(), Order: l})
	}
	for _, e := range o.External {
		out = append(out, TaggedOpenOrder{Source: e.Source(), Order: e})
	}
	return out
}

type OpenOrdersQuery struct {
	User       string
	Symbol     string
	OutputMint string
}

type OpenOrdersView struct {
	Orders  *LimitOrderService
	Jupiter *JupiterOrderService
	Logger  *zap.Logger
}

func (v *OpenOrdersView) Local(ctx context.Context, q OpenOrdersQuery) ([]LocalOpenOrder, error) {
	if v == nil || v.Orders == nil {
		return nil, nil
	}
	items, err := v.Orders.List(ctx, ListLimitOrdersInput{
		UserAddress: q.User,
		Symbol:      q.Symbol,
		Statuses:    []string{models.OrderStatusOpen, models.OrderStatusTriggered},
	})
	if err != nil {
		return nil, err
	}
	out := make([]LocalOpenOrder, 0, len(items))
	for _, it := range items {
		out = append(out, LocalOpenOrder{LimitOrder: it})
	}
	return out, nil
}

func (v *OpenOrdersView) External(ctx context.Context, q OpenOrdersQuery) ([]ExternalOpenOrder, error) {
	if v == nil || v.Jupiter == nil || v.Jupiter.API == nil {
		return nil, nil
	}
	items, err := v.Jupiter.OpenOrders(ctx, q.User, q.OutputMint)
	if err != nil {
		return nil, err
	}
	out := make([]ExternalOpenOrder, 0, len(items))
	for _, it := range items {
		out = append(out, ExternalOpenOrder{Order: it, Maker: q.User})
	}
	return out, nil
}

// Load fetches both lists. A failed fetch leaves that list empty and sets its error
// field; only a bad query is returned as an error.
func (v *OpenOrdersView) Load(ctx context.Context, q OpenOrdersQuery) (OpenOrders, error) {
	q.User = strings.TrimSpace(q.User)
	if q.User == "" {
		return OpenOrders{}, invalid("user is required")
	}
	var (
		out OpenOrders
		wg  sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		items, err := v.Local(ctx, q)
		if err != nil {
			out.LocalError = err.Error()
			v.warn("open orders local fetch failed", q.User, err)
			return
		}
		out.Local = items
	}()
	go func() {
		defer wg.Done()
		items, err := v.External(ctx, q)
		if err != nil {
			out.ExternalError = err.Error()
			v.warn("open orders external fetch failed", q.User, err)
			return
		}
		out.External = items
	}()
	wg.Wait()
	return out, nil
}

// Cancel routes the cancel to the store that owns the order and reports which list
// must be reloaded.
func (v *OpenOrdersView) Cancel(ctx context.Context, item OpenOrder, user string) (string, error) {
	switch o := item.(type) {
	case LocalOpenOrder:
		if v.Orders == nil {
			return "", errRepoUnavailable
		}
		_, err := v.Orders.Cancel(ctx, CancelLimitOrderInput{ID: o.ID, UserAddress: user})
		return ReloadLocal, err
	case ExternalOpenOrder:
		if v.Jupiter == nil {
			return "", errUpstreamUnavailable
		}
		maker := o.Maker
		if maker == "" {
			maker = user
		}
		_, err := v.Jupiter.Cancel(ctx, CancelTriggerOrderInput{Maker: maker, Order: o.Order.Order})
		return ReloadExternal, err
	default:
		return "", invalid("unknown order source")
	}
}

func (v *OpenOrdersView) warn(msg, user string, err error) {
	if v != nil && v.Logger != nil {
		v.Logger.Warn(msg, zap.String("user", user), zap.Error(err))
	}
}

// OpenOrdersWatcher keeps a live OpenOrders for one user: the local list reloads on
// every order event for that user, the external list on a fixed interval. A failed
// reload keeps the previous list.
type OpenOrdersWatcher struct {
	View         *OpenOrdersView
	Events       *OrderEvents
	Query        OpenOrdersQuery
	PollInterval time.Duration

	mu    sync.RWMutex
	state OpenOrders
}

func (w *OpenOrdersWatcher) Snapshot() OpenOrders {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return OpenOrders{
		Local:    append([]LocalOpenOrder(nil), w.state.Local...),
		External: append([]ExternalOpenOrder(nil), w.state.External...),
	}
}

// Run blocks until ctx is done. onChange, if set, receives a snapshot after every
// successful reload.
func (w *OpenOrdersWatcher) Run(ctx context.Context, onChange func(OpenOrders)) error {
	if w == nil || w.View == nil {
		return errRepoUnavailable
	}
	w.Query.User = strings.TrimSpace(w.Query.User)
	if w.Query.User == "" {
		return invalid("user is required")
	}
	interval := w.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	events, unsubscribe := w.Events.Subscribe(w.Query.User, 32)
	defer unsubscribe()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	notify := func() {
		if onChange != nil {
			onChange(w.Snapshot())
		}
	}

	w.reloadLocal(ctx)
	w.reloadExternal(ctx)
	notify()

	symbol := strings.ToUpper(strings.TrimSpace(w.Query.Symbol))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if symbol != "" && ev.Symbol != symbol {
				continue
			}
			if w.reloadLocal(ctx) {
				notify()
			}
		case <-ticker.C:
			if w.reloadExternal(ctx) {
				notify()
			}
		}
	}
}

func (w *OpenOrdersWatcher) reloadLocal(ctx context.Context) bool {
	items, err := w.View.Local(ctx, w.Query)
	if err != nil {
		w.View.warn("open orders local reload failed", w.Query.User, err)
		return false
	}
	w.mu.Lock()
	w.state.Local = items
	w.mu.Unlock()
	return true
}

func (w *OpenOrdersWatcher) reloadExternal(ctx context.Context) bool {
	items, err := w.View.External(ctx, w.Query)
	if err != nil {
		w.View.warn("open orders external reload failed", w.Query.User, err)
		return false
	}
	w.mu.Lock()
	w.state.External = items
	w.mu.Unlock()
	return true
}
