package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/auth"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/service"
)

type WalletHandler struct {
	Service *service.WalletService
}

func (h *WalletHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/wallets")
	g.POST("", h.link)
	g.GET("", h.list)
}

// @Summary Link a wallet to the caller
// @Tags wallets
// @Security BearerAuth
// @Accept json
// @Param body body service.LinkWalletInput true "wallet"
// @Success 200 {object} okResponse
// @Failure 401 {object} errorResponse
// @Router /api/v1/wallets [post]
func (h *WalletHandler) link(c *gin.Context) {
	var in service.LinkWalletInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := h.Service.Link(c.Request.Context(), auth.UserID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"wallet": item})
}

// @Summary List the caller's wallets
// @Tags wallets
// @Security BearerAuth
// @Success 200 {object} okResponse
// @Failure 401 {object} errorResponse
// @Router /api/v1/wallets [get]
func (h *WalletHandler) list(c *gin.Context) {
	items, err := h.Service.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"wallets": items})
}
