package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/client/binance"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/metrics"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
)

type TickerSource interface {
	TickerPrices(ctx context.Context) (map[string]decimal.Decimal, error)
}

type TokenPriceSource interface {
	TokenPriceUSD(ctx context.Context, mint string) (decimal.Decimal, error)
}

type SyncResult struct {
	Symbols int      `json:"symbols"`
	Binance int      `json:"binance"`
	Dex     int      `json:"dex"`
	Missing []string `json:"missing,omitempty"`
}

// PriceSyncService refreshes price_quotes for every symbol that has an open order.
type PriceSyncService struct {
	Orders  repository.OrderRepository
	Prices  repository.PriceRepository
	Ticker  TickerSource
	Dex     TokenPriceSource
	Metrics *metrics.Metrics
	Logger  *zap.Logger

	QuoteAsset string

	mu      sync.RWMutex
	watched map[string]struct{}
}

func (s *PriceSyncService) SyncOnce(ctx context.Context) (SyncResult, error) {
	var res SyncResult
	if s == nil || s.Orders == nil || s.Prices == nil {
		return res, errRepoUnavailable
	}
	symbols, err := s.Orders.ListOpenOrderSymbols(ctx)
	if err != nil {
		return res, err
	}
	s.setWatched(symbols)
	res.Symbols = len(symbols)
	if len(symbols) == 0 {
		return res, nil
	}

	quote := strings.ToUpper(strings.TrimSpace(s.QuoteAsset))
	if quote == "" {
		quote = "USDT"
	}
	now := time.Now().UTC()
	var (
		quotes  []models.PriceQuote
		missing []string
	)

	var tickers map[string]decimal.Decimal
	if s.Ticker != nil {
		tickers, err = s.Ticker.TickerPrices(ctx)
		s.Metrics.Upstream("binance", err)
		if err != nil {
			s.warn("binance ticker fetch failed", zap.Error(err))
		}
	}
	for _, sym := range symbols {
		if strings.EqualFold(sym, quote) {
			quotes = append(quotes, models.PriceQuote{Symbol: sym, PriceUSD: decimal.NewFromInt(1), Source: "peg", UpdatedAt: now})
			continue
		}
		if p, ok := tickers[binance.PairSymbol(sym, quote)]; ok {
			quotes = append(quotes, models.PriceQuote{Symbol: sym, PriceUSD: p, Source: "binance", UpdatedAt: now})
			res.Binance++
			continue
		}
		missing = append(missing, sym)
	}

	if s.Dex != nil {
		still := missing[:0]
		for _, sym := range missing {
			mint, err := s.mintFor(ctx, sym)
			if err != nil || mint == "" {
				still = append(still, sym)
				continue
			}
			p, err := s.Dex.TokenPriceUSD(ctx, mint)
			s.Metrics.Upstream("dexscreener", err)
			if err != nil {
				s.warn("dexscreener price fetch failed", zap.String("symbol", sym), zap.Error(err))
				still = append(still, sym)
				continue
			}
			quotes = append(quotes, models.PriceQuote{Symbol: sym, PriceUSD: p, Source: "dexscreener", UpdatedAt: now})
			res.Dex++
		}
		missing = still
	}
	res.Missing = missing

	if len(quotes) == 0 {
		return res, nil
	}
	return res, s.Prices.UpsertPriceQuotes(ctx, quotes)
}

// WatchedSymbols is the symbol set seen on the last sync.
func (s *PriceSyncService) WatchedSymbols() map[string]struct{} {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watched
}

func (s *PriceSyncService) setWatched(symbols []string) {
	set := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		set[sym] = struct{}{}
	}
	s.mu.Lock()
	s.watched = set
	s.mu.Unlock()
}

func (s *PriceSyncService) mintFor(ctx context.Context, symbol string) (string, error) {
	sym := symbol
	orders, err := s.Orders.ListLimitOrders(ctx, repository.ListLimitOrdersParams{
		Symbol:   &sym,
		Statuses: []string{models.OrderStatusOpen},
		Limit:    20,
	})
	if err != nil {
		return "", err
	}
	for _, o := range orders {
		if o.SolMint != nil && *o.SolMint != "" {
			return *o.SolMint, nil
		}
	}
	return "", nil
}

func (s *PriceSyncService) warn(msg string, fields ...zap.Field) {
	if s.Logger != nil {
		s.Logger.Warn(msg, fields...)
	}
}

type MarketPrices struct {
	Prices map[string]models.PriceQuote `json:"prices"`
	Stale  bool                         `json:"stale"`
	Age    string                       `json:"age,omitempty"`
}

// MarketPriceService serves latest quotes through a TTL cache. When the store cannot
// be read it falls back to whatever the cache still retains.
type MarketPriceService struct {
	Prices repository.PriceRepository
	Cache  PriceCache
	Logger *zap.Logger
}

type PriceCache interface {
	Put(ctx context.Context, key string, v any) error
	GetFresh(ctx context.Context, key string, dst any) (bool, error)
	GetStale(ctx context.Context, key string, dst any) (time.Duration, bool, error)
}

func (s *MarketPriceService) Get(ctx context.Context, symbols []string) (MarketPrices, error) {
	set := map[string]struct{}{}
	for _, sym := range symbols {
		for _, part := range strings.Split(sym, ",") {
			if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
				set[p] = struct{}{}
			}
		}
	}
	if len(set) == 0 {
		return MarketPrices{}, invalid("symbols is required")
	}
	list := make([]string, 0, len(set))
	for sym := range set {
		list = append(list, sym)
	}
	sort.Strings(list)
	key := "market_prices:" + strings.Join(list, ",")

	var cached map[string]models.PriceQuote
	if s.Cache != nil {
		if ok, err := s.Cache.GetFresh(ctx, key, &cached); err == nil && ok {
			return MarketPrices{Prices: cached}, nil
		}
	}

	if s.Prices == nil {
		return MarketPrices{}, errRepoUnavailable
	}
	prices, err := s.Prices.GetLatestPrices(ctx, list)
	if err == nil {
		if s.Cache != nil {
			if perr := s.Cache.Put(ctx, key, prices); perr != nil && s.Logger != nil {
				s.Logger.Warn("market price cache write failed", zap.Error(perr))
			}
		}
		return MarketPrices{Prices: prices}, nil
	}

	if s.Logger != nil {
		s.Logger.Warn("market price lookup failed", zap.Strings("symbols", list), zap.Error(err))
	}
	if s.Cache != nil {
		var stale map[string]models.PriceQuote
		if age, ok, serr := s.Cache.GetStale(ctx, key, &stale); serr == nil && ok {
			return MarketPrices{Prices: stale, Stale: true, Age: age.Round(time.Second).String()}, nil
		}
	}
	return MarketPrices{}, err
}
