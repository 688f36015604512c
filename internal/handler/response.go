package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/client/jupiter"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/service"
)

// okResponse and errorResponse document the envelopes for swagger; handlers build
// them as gin.H so that extra fields sit at the top level.
type okResponse struct {
	OK bool `json:"ok" example:"true"`
}

type errorResponse struct {
	OK      bool   `json:"ok" example:"false"`
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Details any    `json:"details,omitempty"`
}

func Ok(c *gin.Context, fields gin.H) {
	out := gin.H{"ok": true}
	for k, v := range fields {
		out[k] = v
	}
	c.JSON(http.StatusOK, out)
}

func Error(c *gin.Context, status int, message string, extra gin.H) {
	out := gin.H{"ok": false, "error": message}
	for k, v := range extra {
		out[k] = v
	}
	c.JSON(status, out)
}

// writeError maps service errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	var apiErr *jupiter.APIError
	switch {
	case errors.As(err, &verr):
		Error(c, http.StatusBadRequest, verr.Message, nil)
	case errors.Is(err, service.ErrNotFoundOrNotOpen):
		Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrUnauthenticated):
		Error(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.As(err, &apiErr):
		Error(c, apiErr.Status, apiErr.Error(), gin.H{
			"status":  apiErr.Status,
			"details": upstreamDetails(apiErr.Body),
		})
	default:
		Error(c, http.StatusInternalServerError, err.Error(), nil)
	}
}

func upstreamDetails(body string) any {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	return body
}

// spreadUpstream places the upstream JSON object's fields next to ok/status. Non-object
// replies are returned under data.
func spreadUpstream(status int, body []byte) gin.H {
	out := gin.H{}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		for k, v := range obj {
			out[k] = v
		}
	} else if len(body) > 0 {
		out["data"] = json.RawMessage(body)
	}
	out["status"] = status
	return out
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Error(c, http.StatusBadRequest, "invalid json body: "+err.Error(), nil)
		return false
	}
	return true
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func listQuery(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
