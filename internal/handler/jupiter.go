package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/auth"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/service"
)

type JupiterHandler struct {
	Service *service.JupiterOrderService
}

func (h *JupiterHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/jupiter/orders")
	g.POST("", h.create)
	g.POST("/cancel", h.cancel)
	g.GET("/open", h.open)
	g.POST("/open", h.open)
	g.POST("/execute", h.execute)
}

// @Summary Create Jupiter trigger order
// @Description Forwards to the Jupiter trigger API. Audit is written only when the bearer user owns the maker wallet.
// @Tags jupiter
// @Accept json
// @Param body body service.CreateTriggerOrderInput true "order"
// @Success 200 {object} okResponse
// @Failure 400 {object} errorResponse
// @Router /api/v1/jupiter/orders [post]
func (h *JupiterHandler) create(c *gin.Context) {
	var in service.CreateTriggerOrderInput
	if !bindJSON(c, &in) {
		return
	}
	resp, err := h.Service.Create(c.Request.Context(), auth.UserID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, spreadUpstream(resp.Status, resp.Body))
}

// @Summary Cancel Jupiter trigger order
// @Tags jupiter
// @Accept json
// @Param body body service.CancelTriggerOrderInput true "maker and order"
// @Success 200 {object} okResponse
// @Failure 400 {object} errorResponse
// @Router /api/v1/jupiter/orders/cancel [post]
func (h *JupiterHandler) cancel(c *gin.Context) {
	var in service.CancelTriggerOrderInput
	if !bindJSON(c, &in) {
		return
	}
	resp, err := h.Service.Cancel(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, spreadUpstream(resp.Status, resp.Body))
}

// @Summary List Jupiter trigger orders
// @Tags jupiter
// @Param user query string true "wallet"
// @Param orderStatus query string false "active|history"
// @Param inputMint query string false "input mint"
// @Param outputMint query string false "output mint"
// @Param page query int false "page"
// @Success 200 {object} okResponse
// @Router /api/v1/jupiter/orders/open [get]
func (h *JupiterHandler) open(c *gin.Context) {
	var in service.OpenTriggerOrdersInput
	if c.Request.Method == http.MethodPost && c.Request.ContentLength != 0 {
		if !bindJSON(c, &in) {
			return
		}
	} else if err := c.ShouldBindQuery(&in); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	resp, err := h.Service.Open(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"status": resp.Status, "data": resp.Body})
}

// @Summary Execute signed Jupiter transaction
// @Tags jupiter
// @Accept json
// @Param body body service.ExecuteTriggerOrderInput true "signed transaction"
// @Success 200 {object} okResponse
// @Failure 400 {object} errorResponse
// @Router /api/v1/jupiter/orders/execute [post]
func (h *JupiterHandler) execute(c *gin.Context) {
	var in service.ExecuteTriggerOrderInput
	if !bindJSON(c, &in) {
		return
	}
	resp, err := h.Service.Execute(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, spreadUpstream(resp.Status, resp.Body))
}
