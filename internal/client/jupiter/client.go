package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const DefaultHost = "https://lite-api.jup.ag/trigger/v1"

type Client struct {
	host       string
	apiKey     string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if msg := gjson.Get(e.Body, "error").String(); msg != "" {
		return fmt.Sprintf("jupiter error (%d): %s", e.Status, msg)
	}
	return fmt.Sprintf("jupiter error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host, apiKey string) *Client {
	if host == "" {
		host = DefaultHost
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		host:       strings.TrimRight(host, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: httpClient,
	}
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Response, error) {
	if req.ComputeUnitPrice == "" {
		req.ComputeUnitPrice = "auto"
	}
	return c.do(ctx, http.MethodPost, "/createOrder", nil, req)
}

func (c *Client) CancelOrder(ctx context.Context, req CancelOrderRequest) (*Response, error) {
	if strings.TrimSpace(req.Order) == "" {
		return nil, fmt.Errorf("order is required")
	}
	if req.ComputeUnitPrice == "" {
		req.ComputeUnitPrice = "auto"
	}
	return c.do(ctx, http.MethodPost, "/cancelOrder", nil, req)
}

func (c *Client) Execute(ctx context.Context, req ExecuteRequest) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/execute", nil, req)
}

func (c *Client) GetTriggerOrders(ctx context.Context, q GetOrdersQuery) (*Response, error) {
	if strings.TrimSpace(q.User) == "" {
		return nil, fmt.Errorf("user is required")
	}
	query := url.Values{}
	query.Set("user", strings.TrimSpace(q.User))
	status := strings.TrimSpace(q.OrderStatus)
	if status == "" {
		status = "active"
	}
	query.Set("orderStatus", status)
	if q.InputMint != "" {
		query.Set("inputMint", q.InputMint)
	}
	if q.OutputMint != "" {
		query.Set("outputMint", q.OutputMint)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	return c.do(ctx, http.MethodGet, "/getTriggerOrders", query, nil)
}

// DecodeOrders reads the orders array out of a getTriggerOrders reply.
func DecodeOrders(body []byte) ([]Order, error) {
	raw := gjson.GetBytes(body, "orders")
	if !raw.Exists() {
		return nil, nil
	}
	var out []Order
	if err := json.Unmarshal([]byte(raw.Raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) (*Response, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("client is nil")
	}
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if len(b) == 0 || !json.Valid(b) {
		b = []byte("{}")
	}
	return &Response{Status: resp.StatusCode, Body: b}, nil
}
