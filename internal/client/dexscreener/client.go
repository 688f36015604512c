package dexscreener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

const DefaultHost = "https://api.dexscreener.com"

var ErrNoPrice = errors.New("dexscreener: no priced pair")

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// TokenPriceUSD returns priceUsd of the most liquid pair quoting the token.
func (d Client) TokenPriceUSD(ctx context.Context, mint string) (decimal.Decimal, error) {
	mint = strings.TrimSpace(mint)
	if mint == "" {
		return decimal.Zero, errors.New("mint required")
	}
	base := strings.TrimRight(strings.TrimSpace(d.BaseURL), "/")
	if base == "" {
		base = DefaultHost
	}
	u := fmt.Sprintf("%s/latest/dex/tokens/%s", base, url.PathEscape(mint))

	client := d.HTTP
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return decimal.Zero, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decimal.Zero, fmt.Errorf("dexscreener http %d", resp.StatusCode)
	}

	var (
		best    decimal.Decimal
		bestLiq float64 = -1
	)
	gjson.GetBytes(b, "pairs").ForEach(func(_, pair gjson.Result) bool {
		price, err := decimal.NewFromString(cast.ToString(pair.Get("priceUsd").Value()))
		if err != nil || !price.IsPositive() {
			return true
		}
		liq := cast.ToFloat64(pair.Get("liquidity.usd").Value())
		if liq > bestLiq {
			best, bestLiq = price, liq
		}
		return true
	})
	if bestLiq < 0 {
		return decimal.Zero, ErrNoPrice
	}
	return best, nil
}
