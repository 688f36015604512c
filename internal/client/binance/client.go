// Package binance reads spot ticker prices from the public Binance REST API.
package binance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

const DefaultHost = "https://api.binance.com"

type Client struct {
	host       string
	httpClient *http.Client
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = DefaultHost
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{host: strings.TrimRight(host, "/"), httpClient: httpClient}
}

// TickerPrices returns every spot pair price keyed by pair symbol (e.g. SOLUSDT).
func (c *Client) TickerPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/v3/ticker/price", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("binance http %d", resp.StatusCode)
	}
	parsed := gjson.ParseBytes(b)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("binance: unexpected payload")
	}
	out := make(map[string]decimal.Decimal, len(parsed.Array()))
	parsed.ForEach(func(_, item gjson.Result) bool {
		sym := strings.ToUpper(item.Get("symbol").String())
		if sym == "" {
			return true
		}
		price, err := decimal.NewFromString(cast.ToString(item.Get("price").Value()))
		if err != nil || !price.IsPositive() {
			return true
		}
		out[sym] = price
		return true
	})
	return out, nil
}

// PairSymbol joins a base asset and quote asset into a Binance pair symbol.
func PairSymbol(base, quote string) string {
	return strings.ToUpper(strings.TrimSpace(base)) + strings.ToUpper(strings.TrimSpace(quote))
}
