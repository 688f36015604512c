package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/service"
)

type LimitOrderHandler struct {
	Orders   *service.LimitOrderService
	Executor *service.TriggerExecutor
}

func (h *LimitOrderHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/limit-orders")
	g.POST("", h.create)
	g.GET("", h.list)
	g.POST("/cancel", h.cancel)
	g.POST("/executor", h.runExecutor)
	g.GET("/executor", h.runExecutor)
}

// @Summary Create limit order
// @Tags limit-orders
// @Accept json
// @Param body body service.CreateLimitOrderInput true "order"
// @Success 200 {object} okResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/v1/limit-orders [post]
func (h *LimitOrderHandler) create(c *gin.Context) {
	var in service.CreateLimitOrderInput
	if !bindJSON(c, &in) {
		return
	}
	order, err := h.Orders.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"order": order})
}

// @Summary Cancel limit order
// @Tags limit-orders
// @Accept json
// @Param body body service.CancelLimitOrderInput true "id and owner"
// @Success 200 {object} okResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /api/v1/limit-orders/cancel [post]
func (h *LimitOrderHandler) cancel(c *gin.Context) {
	var in service.CancelLimitOrderInput
	if !bindJSON(c, &in) {
		return
	}
	order, err := h.Orders.Cancel(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"order": order})
}

// @Summary List limit orders
// @Tags limit-orders
// @Param user_address query string true "owner wallet"
// @Param symbol query string false "symbol"
// @Param status query string false "comma separated statuses"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Success 200 {object} okResponse
// @Router /api/v1/limit-orders [get]
func (h *LimitOrderHandler) list(c *gin.Context) {
	items, err := h.Orders.List(c.Request.Context(), service.ListLimitOrdersInput{
		UserAddress: c.Query("user_address"),
		Symbol:      c.Query("symbol"),
		Statuses:    listQuery(c, "status"),
		Limit:       intQuery(c, "limit", 50),
		Offset:      intQuery(c, "offset", 0),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"orders": items})
}

// @Summary Run one executor pass
// @Tags limit-orders
// @Success 200 {object} okResponse
// @Failure 500 {object} errorResponse
// @Router /api/v1/limit-orders/executor [post]
func (h *LimitOrderHandler) runExecutor(c *gin.Context) {
	res, err := h.Executor.RunOnce(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{
		"triggered": res.Triggered,
		"scanned":   res.Scanned,
		"symbols":   res.Symbols,
		"skipped":   res.Skipped,
	})
}
