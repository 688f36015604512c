package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/client/jupiter"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/service"
)

// ViewHandler serves the aggregated reads the trading pages render: open orders from
// both origins and the merged trade history.
type ViewHandler struct {
	OpenOrders   *service.OpenOrdersView
	Events       *service.OrderEvents
	Trades       *service.TradeHistoryView
	PollInterval time.Duration
	HistoryLimit int
}

func (h *ViewHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/views")
	g.GET("/open-orders", h.openOrders)
	g.GET("/open-orders/stream", h.streamOpenOrders)
	g.POST("/open-orders/cancel", h.cancelOpenOrder)
	g.GET("/trade-history", h.tradeHistory)
	r.POST("/api/v1/trades", h.recordTrade)
}

type openOrdersBody struct {
	OK       bool                        `json:"ok"`
	Local    []service.LocalOpenOrder    `json:"local"`
	External []service.ExternalOpenOrder `json:"external"`
	Errors   map[string]string           `json:"errors,omitempty"`
}

func openOrdersPayload(o service.OpenOrders) openOrdersBody {
	body := openOrdersBody{OK: true, Local: o.Local, External: o.External}
	if body.Local == nil {
		body.Local = []service.LocalOpenOrder{}
	}
	if body.External == nil {
		body.External = []service.ExternalOpenOrder{}
	}
	if o.LocalError != "" || o.ExternalError != "" {
		body.Errors = map[string]string{}
		if o.LocalError != "" {
			body.Errors[service.ReloadLocal] = o.LocalError
		}
		if o.ExternalError != "" {
			body.Errors[service.ReloadExternal] = o.ExternalError
		}
	}
	return body
}

func openOrdersQuery(c *gin.Context) service.OpenOrdersQuery {
	return service.OpenOrdersQuery{
		User:       c.Query("user"),
		Symbol:     c.Query("symbol"),
		OutputMint: c.Query("output_mint"),
	}
}

// @Summary Open orders from the local store and Jupiter
// @Description Returns both lists side by side. A failing source yields an empty list and an entry under errors.
// @Tags views
// @Param user query string true "wallet"
// @Param symbol query string false "local symbol filter"
// @Param output_mint query string false "Jupiter output mint filter"
// @Success 200 {object} openOrdersBody
// @Failure 400 {object} errorResponse
// @Router /api/v1/views/open-orders [get]
func (h *ViewHandler) openOrders(c *gin.Context) {
	orders, err := h.OpenOrders.Load(c.Request.Context(), openOrdersQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, openOrdersPayload(orders))
}

// @Summary Stream open orders
// @Description Server-sent events; one "orders" event per change. Local orders refresh on order events, Jupiter orders on a fixed interval.
// @Tags views
// @Produce text/event-stream
// @Param user query string true "wallet"
// @Param symbol query string false "local symbol filter"
// @Param output_mint query string false "Jupiter output mint filter"
// @Router /api/v1/views/open-orders/stream [get]
func (h *ViewHandler) streamOpenOrders(c *gin.Context) {
	q := openOrdersQuery(c)
	if strings.TrimSpace(q.User) == "" {
		Error(c, http.StatusBadRequest, "user is required", nil)
		return
	}
	watcher := &service.OpenOrdersWatcher{
		View:         h.OpenOrders,
		Events:       h.Events,
		Query:        q,
		PollInterval: h.PollInterval,
	}

	ctx := c.Request.Context()
	// a slow client only ever sees the most recent snapshot
	updates := make(chan service.OpenOrders, 1)
	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx, func(o service.OpenOrders) {
			select {
			case <-updates:
			default:
			}
			updates <- o
		})
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-done:
			return false
		case o := <-updates:
			c.SSEvent("orders", openOrdersPayload(o))
			return true
		}
	})
}

type cancelOpenOrderRequest struct {
	Source      string `json:"source" binding:"required"`
	ID          string `json:"id" binding:"required"`
	UserAddress string `json:"user_address" binding:"required"`
}

// @Summary Cancel an order from the open orders view
// @Description Routes DB orders to the local store and JUP orders to Jupiter. reload names the list to refresh.
// @Tags views
// @Accept json
// @Param body body cancelOpenOrderRequest true "order reference"
// @Success 200 {object} okResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/views/open-orders/cancel [post]
func (h *ViewHandler) cancelOpenOrder(c *gin.Context) {
	var req cancelOpenOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	var item service.OpenOrder
	switch strings.ToUpper(strings.TrimSpace(req.Source)) {
	case models.SourceDB:
		item = service.LocalOpenOrder{LimitOrder: models.LimitOrder{ID: req.ID}}
	case models.SourceJUP:
		item = service.ExternalOpenOrder{Order: jupiter.Order{Order: req.ID}, Maker: req.UserAddress}
	default:
		Error(c, http.StatusBadRequest, "source must be one of: DB, JUP", nil)
		return
	}
	reload, err := h.OpenOrders.Cancel(c.Request.Context(), item, req.UserAddress)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"reload": reload})
}

// @Summary Merged trade history
// @Description Server audit rows and the wallet's local trade log, newest first. Duplicates across sources are kept. partial is set when server rows were unavailable.
// @Tags views
// @Param wallet query string true "wallet"
// @Param limit query string false "max items, or all"
// @Success 200 {object} okResponse
// @Failure 400 {object} errorResponse
// @Router /api/v1/views/trade-history [get]
func (h *ViewHandler) tradeHistory(c *gin.Context) {
	limit := h.HistoryLimit
	if raw := strings.TrimSpace(c.Query("limit")); strings.EqualFold(raw, "all") {
		limit = 0
	} else {
		limit = intQuery(c, "limit", limit)
	}
	history, err := h.Trades.Merged(c.Request.Context(), c.Query("wallet"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	items := history.Items
	if items == nil {
		items = []service.HistoryItem{}
	}
	Ok(c, gin.H{"items": items, "partial": history.Partial})
}

// @Summary Record a completed market trade
// @Tags views
// @Accept json
// @Param body body service.RecordTradeInput true "trade"
// @Success 200 {object} okResponse
// @Failure 400 {object} errorResponse
// @Router /api/v1/trades [post]
func (h *ViewHandler) recordTrade(c *gin.Context) {
	var in service.RecordTradeInput
	if !bindJSON(c, &in) {
		return
	}
	entry, err := h.Trades.RecordTrade(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"entry": entry})
}
