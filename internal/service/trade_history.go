package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/tradelog"
)

// HistoryItem is the shape shared by server audit rows and local trade log entries.
type HistoryItem struct {
	ID          string              `json:"id"`
	UserAddress string              `json:"user_address"`
	Chain       string              `json:"chain,omitempty"`
	Symbol      string              `json:"symbol"`
	Side        string              `json:"side,omitempty"`
	EventType   string              `json:"event_type"`
	Source      string              `json:"source"`
	BaseAmount  decimal.NullDecimal `json:"base_amount"`
	QuoteAmount decimal.NullDecimal `json:"quote_amount"`
	PriceQuote  decimal.NullDecimal `json:"price_quote"`
	TxHash      string              `json:"tx_hash,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type TradeHistory struct {
	Items []HistoryItem `json:"items"`
	// Partial is set when server rows could not be fetched.
	Partial bool `json:"partial"`
}

type RecordTradeInput struct {
	Wallet      string          `json:"wallet" validate:"required"`
	Chain       string          `json:"chain"`
	Symbol      string          `json:"symbol" validate:"required"`
	Side        string          `json:"side" validate:"omitempty,oneof=buy sell"`
	BaseAmount  decimal.Decimal `json:"base_amount"`
	QuoteAmount decimal.Decimal `json:"quote_amount"`
	Price       decimal.Decimal `json:"price"`
	TxHash      string          `json:"tx_hash"`
	Source      string          `json:"source"`
}

type TradeHistoryView struct {
	History repository.HistoryRepository
	Local   *tradelog.Store
	Audit   *AuditRecorder
	Logger  *zap.Logger
}

// Merged returns server rows and local entries for wallet, newest first, truncated
// to limit (0 keeps everything fetched).
func (v *TradeHistoryView) Merged(ctx context.Context, wallet string, limit int) (TradeHistory, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return TradeHistory{}, invalid("wallet is required")
	}
	if limit < 0 {
		limit = 0
	}
	var out TradeHistory

	var server []models.OrderHistoryEntry
	if v.History != nil {
		rows, err := v.History.ListOrderHistory(ctx, repository.ListOrderHistoryParams{
			Limit:       limit,
			UserAddress: &wallet,
		})
		if err != nil {
			out.Partial = true
			v.warn("trade history server fetch failed", wallet, err)
		} else {
			server = rows
		}
	} else {
		out.Partial = true
	}

	local, err := v.Local.List(ctx, wallet)
	if err != nil {
		v.warn("trade history local read failed", wallet, err)
	}

	out.Items = MergeHistory(server, local, limit)
	return out, nil
}

// RecordTrade appends to the wallet's local log and records a market_trade audit row.
func (v *TradeHistoryView) RecordTrade(ctx context.Context, in RecordTradeInput) (tradelog.Entry, error) {
	in.Wallet = strings.TrimSpace(in.Wallet)
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	in.Side = strings.ToLower(strings.TrimSpace(in.Side))
	if err := validate.Struct(in); err != nil {
		return tradelog.Entry{}, validationError(err)
	}
	if v == nil || v.Local == nil {
		return tradelog.Entry{}, errRepoUnavailable
	}
	entry, err := v.Local.Append(ctx, tradelog.Entry{
		Wallet:      in.Wallet,
		Chain:       strings.ToUpper(strings.TrimSpace(in.Chain)),
		Symbol:      in.Symbol,
		Side:        in.Side,
		BaseAmount:  in.BaseAmount,
		QuoteAmount: in.QuoteAmount,
		Price:       in.Price,
		TxHash:      strings.TrimSpace(in.TxHash),
		Source:      strings.TrimSpace(in.Source),
	})
	if err != nil {
		return tradelog.Entry{}, err
	}

	row := models.OrderHistoryEntry{
		UserAddress: entry.Wallet,
		Chain:       entry.Chain,
		Symbol:      entry.Symbol,
		Side:        strPtr(entry.Side),
		EventType:   models.EventMarketTrade,
		Source:      entry.Source,
		BaseAmount:  nonZero(entry.BaseAmount),
		QuoteAmount: nonZero(entry.QuoteAmount),
		PriceQuote:  nonZero(entry.Price),
		TxHash:      strPtr(entry.TxHash),
		Meta:        jsonMeta(map[string]any{"local_id": entry.ID}),
	}
	v.Audit.Record(row)
	return entry, nil
}

// MergeHistory maps local entries into HistoryItem with source LOCAL, concatenates
// them with server rows and sorts by time descending. Entries present in both sources
// are kept twice.
func MergeHistory(server []models.OrderHistoryEntry, local []tradelog.Entry, limit int) []HistoryItem {
	out := make([]HistoryItem, 0, len(server)+len(local))
	for _, r := range server {
		item := HistoryItem{
			ID:          strconv.FormatUint(r.ID, 10),
			UserAddress: r.UserAddress,
			Chain:       r.Chain,
			Symbol:      r.Symbol,
			EventType:   r.EventType,
			Source:      r.Source,
			BaseAmount:  r.BaseAmount,
			QuoteAmount: r.QuoteAmount,
			PriceQuote:  r.PriceQuote,
			CreatedAt:   r.CreatedAt,
		}
		if r.Side != nil {
			item.Side = *r.Side
		}
		if r.TxHash != nil {
			item.TxHash = *r.TxHash
		}
		out = append(out, item)
	}
	for _, e := range local {
		out = append(out, HistoryItem{
			ID:          e.ID,
			UserAddress: e.Wallet,
			Chain:       e.Chain,
			Symbol:      e.Symbol,
			Side:        e.Side,
			EventType:   models.EventMarketTrade,
			Source:      models.SourceLocal,
			BaseAmount:  nonZero(e.BaseAmount),
			QuoteAmount: nonZero(e.QuoteAmount),
			PriceQuote:  nonZero(e.Price),
			TxHash:      e.TxHash,
			CreatedAt:   e.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func nonZero(d decimal.Decimal) decimal.NullDecimal {
	if d.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func (v *TradeHistoryView) warn(msg, wallet string, err error) {
	if v.Logger != nil {
		v.Logger.Warn(msg, zap.String("wallet", wallet), zap.Error(err))
	}
}
