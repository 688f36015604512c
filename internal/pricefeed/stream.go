// Package pricefeed keeps price_quotes current from the Binance mini-ticker stream.
package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
)

type QuoteWriter interface {
	UpsertPriceQuotes(ctx context.Context, items []models.PriceQuote) error
}

// Stream reads !miniTicker@arr frames and upserts quotes for pairs ending in QuoteAsset.
// Writes are flushed at most once per FlushEvery.
type Stream struct {
	Logger *zap.Logger
	Repo   QuoteWriter

	URL        string
	QuoteAsset string
	FlushEvery time.Duration
	// Symbols restricts which base assets are stored. Empty stores all.
	Symbols func() map[string]struct{}

	mu        sync.Mutex
	status    string
	lastError string
	lastFrame time.Time
}

type Health struct {
	Status    string    `json:"status"`
	LastFrame time.Time `json:"last_frame,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Run connects and reads until ctx is canceled, reconnecting with backoff.
func (s *Stream) Run(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return errors.New("stream not configured")
	}
	url := strings.TrimSpace(s.URL)
	if url == "" {
		return errors.New("missing url")
	}
	backoff := time.Second
	for {
		err := s.runOnce(ctx, url)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.setHealth("down", err)
		if s.Logger != nil {
			s.Logger.Warn("price stream disconnected", zap.Error(err), zap.Duration("retry_in", backoff))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (s *Stream) runOnce(ctx context.Context, url string) error {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "shutdown")
	}()
	conn.SetReadLimit(4 << 20)

	flushEvery := s.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 2 * time.Second
	}
	pending := map[string]models.PriceQuote{}
	lastFlush := time.Now()
	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		s.setHealth("healthy", nil)
		s.mu.Lock()
		s.lastFrame = now
		s.mu.Unlock()

		for _, q := range ParseMiniTickers(msg, s.QuoteAsset, now) {
			if s.wanted(q.Symbol) {
				pending[q.Symbol] = q
			}
		}
		if len(pending) == 0 || now.Sub(lastFlush) < flushEvery {
			continue
		}
		items := make([]models.PriceQuote, 0, len(pending))
		for _, q := range pending {
			items = append(items, q)
		}
		if err := s.Repo.UpsertPriceQuotes(ctx, items); err != nil && s.Logger != nil {
			s.Logger.Warn("price stream upsert failed", zap.Error(err), zap.Int("quotes", len(items)))
		}
		pending = map[string]models.PriceQuote{}
		lastFlush = now
	}
}

func (s *Stream) wanted(symbol string) bool {
	if s.Symbols == nil {
		return true
	}
	set := s.Symbols()
	if len(set) == 0 {
		return true
	}
	_, ok := set[symbol]
	return ok
}

func (s *Stream) Health() Health {
	if s == nil {
		return Health{Status: "unknown"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.status
	if status == "" {
		status = "unknown"
	}
	return Health{Status: status, LastFrame: s.lastFrame, LastError: s.lastError}
}

func (s *Stream) setHealth(status string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
}

// ParseMiniTickers extracts quotes from a mini-ticker array frame. Pairs that do not
// end in quoteAsset are ignored; the stored symbol is the base asset.
func ParseMiniTickers(msg []byte, quoteAsset string, ts time.Time) []models.PriceQuote {
	quote := strings.ToUpper(strings.TrimSpace(quoteAsset))
	if quote == "" {
		quote = "USDT"
	}
	parsed := gjson.ParseBytes(msg)
	if !parsed.IsArray() {
		// Combined-stream envelope.
		parsed = parsed.Get("data")
		if !parsed.IsArray() {
			return nil
		}
	}
	var out []models.PriceQuote
	parsed.ForEach(func(_, item gjson.Result) bool {
		pair := strings.ToUpper(item.Get("s").String())
		if !strings.HasSuffix(pair, quote) || len(pair) == len(quote) {
			return true
		}
		price, err := decimal.NewFromString(cast.ToString(item.Get("c").Value()))
		if err != nil || !price.IsPositive() {
			return true
		}
		out = append(out, models.PriceQuote{
			Symbol:    strings.TrimSuffix(pair, quote),
			PriceUSD:  price,
			Source:    fmt.Sprintf("binance_ws:%s", pair),
			UpdatedAt: ts,
		})
		return true
	})
	return out
}
