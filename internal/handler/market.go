package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/pricefeed"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/service"
)

type MarketHandler struct {
	Prices *service.MarketPriceService
	// Feed is nil when the ticker stream is disabled.
	Feed *pricefeed.Stream
}

func (h *MarketHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/market/prices", h.prices)
	r.GET("/api/v1/market/feed", h.feed)
}

// @Summary Latest prices
// @Description Cached for a short TTL. When the store is unreachable the last cached answer is served with stale=true.
// @Tags market
// @Param symbols query string true "comma separated symbols"
// @Success 200 {object} service.MarketPrices
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /api/v1/market/prices [get]
func (h *MarketHandler) prices(c *gin.Context) {
	res, err := h.Prices.Get(c.Request.Context(), c.QueryArray("symbols"))
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			Error(c, http.StatusBadRequest, verr.Message, nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	fields := gin.H{"prices": res.Prices, "stale": res.Stale}
	if res.Age != "" {
		fields["age"] = res.Age
	}
	Ok(c, fields)
}

// @Summary Ticker stream status
// @Tags market
// @Success 200 {object} okResponse
// @Router /api/v1/market/feed [get]
func (h *MarketHandler) feed(c *gin.Context) {
	if h.Feed == nil {
		Ok(c, gin.H{"enabled": false})
		return
	}
	Ok(c, gin.H{"enabled": true, "feed": h.Feed.Health()})
}
