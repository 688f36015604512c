package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Krypto Hub order service

Limit orders, Jupiter trigger orders, order history and market prices.

## Auth

Send "Authorization: Bearer <jwt>" to identify yourself. Anonymous callers are
accepted everywhere except /api/v1/wallets; Jupiter orders created anonymously
are forwarded but not recorded in order history.

## Routes

- GET /healthz
- GET /readyz
- GET /metrics
- GET /swagger/index.html
- POST /api/v1/limit-orders
- GET /api/v1/limit-orders?user_address=
- POST /api/v1/limit-orders/cancel
- POST /api/v1/limit-orders/executor
- POST /api/v1/order-history
- GET /api/v1/order-history?user_address=
- POST /api/v1/jupiter/orders
- POST /api/v1/jupiter/orders/cancel
- GET /api/v1/jupiter/orders/open?user=
- POST /api/v1/jupiter/orders/execute
- GET /api/v1/views/open-orders?user=
- GET /api/v1/views/open-orders/stream?user=
- POST /api/v1/views/open-orders/cancel
- GET /api/v1/views/trade-history?wallet=
- POST /api/v1/trades
- GET /api/v1/market/prices?symbols=
- GET /api/v1/market/feed
- POST /api/v1/wallets
- GET /api/v1/wallets

## Envelope

Success: {"ok": true, ...}
Failure: {"ok": false, "error": "..."}; upstream Jupiter failures add status and details.
`)
	})
}
