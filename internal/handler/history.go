package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/service"
)

type OrderHistoryHandler struct {
	Service *service.OrderHistoryService
}

func (h *OrderHistoryHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/order-history")
	g.POST("", h.log)
	g.GET("", h.list)
}

// @Summary Log order history events
// @Description Accepts a single event object, an array, or {"events":[...]}.
// @Tags order-history
// @Accept json
// @Param body body service.HistoryEventInput true "event"
// @Success 200 {object} okResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/v1/order-history [post]
func (h *OrderHistoryHandler) log(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil || !gjson.ValidBytes(raw) {
		Error(c, http.StatusBadRequest, "invalid json body", nil)
		return
	}
	events, err := decodeEvents(raw)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid json body: "+err.Error(), nil)
		return
	}
	inserted, err := h.Service.Log(c.Request.Context(), events)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"inserted": inserted})
}

func decodeEvents(raw []byte) ([]service.HistoryEventInput, error) {
	root := gjson.ParseBytes(raw)
	var events []service.HistoryEventInput
	switch {
	case root.IsArray():
		err := json.Unmarshal(raw, &events)
		return events, err
	case root.Get("events").IsArray():
		err := json.Unmarshal([]byte(root.Get("events").Raw), &events)
		return events, err
	default:
		var one service.HistoryEventInput
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, err
		}
		return []service.HistoryEventInput{one}, nil
	}
}

// @Summary List order history
// @Tags order-history
// @Param user_address query string true "wallet"
// @Param event_type query string false "event type"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Success 200 {object} okResponse
// @Router /api/v1/order-history [get]
func (h *OrderHistoryHandler) list(c *gin.Context) {
	items, err := h.Service.List(c.Request.Context(), c.Query("user_address"), c.Query("event_type"), intQuery(c, "limit", 50), intQuery(c, "offset", 0))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"items": items})
}
