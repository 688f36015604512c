package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
)

type HistoryEventInput struct {
	UserAddress string              `json:"user_address" validate:"required"`
	Chain       string              `json:"chain"`
	Symbol      string              `json:"symbol"`
	BaseMint    *string             `json:"base_mint,omitempty"`
	QuoteMint   *string             `json:"quote_mint,omitempty"`
	Side        *string             `json:"side,omitempty"`
	EventType   string              `json:"event_type" validate:"required,oneof=limit_create limit_cancel limit_execute limit_trigger market_trade"`
	Source      string              `json:"source"`
	BaseAmount  decimal.NullDecimal `json:"base_amount"`
	QuoteAmount decimal.NullDecimal `json:"quote_amount"`
	PriceQuote  decimal.NullDecimal `json:"price_quote"`
	PriceUSD    decimal.NullDecimal `json:"price_usd"`
	FeeQuote    decimal.NullDecimal `json:"fee_quote"`
	TxHash      *string             `json:"tx_hash,omitempty"`
	Meta        json.RawMessage     `json:"meta,omitempty"`
}

type InsertedHistory struct {
	ID        uint64    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderHistoryService struct {
	Repo repository.HistoryRepository
}

// Log validates every event before writing and stores the batch with a single insert.
// One invalid event rejects the whole batch.
func (s *OrderHistoryService) Log(ctx context.Context, events []HistoryEventInput) ([]InsertedHistory, error) {
	if s == nil || s.Repo == nil {
		return nil, errRepoUnavailable
	}
	if len(events) == 0 {
		return nil, invalid("no events")
	}
	rows := make([]models.OrderHistoryEntry, 0, len(events))
	for i, ev := range events {
		ev.UserAddress = strings.TrimSpace(ev.UserAddress)
		ev.EventType = strings.ToLower(strings.TrimSpace(ev.EventType))
		if err := validate.Struct(ev); err != nil {
			verr := validationError(err).(*ValidationError)
			if len(events) > 1 {
				verr.Message = fmt.Sprintf("events[%d]: %s", i, verr.Message)
			}
			return nil, verr
		}
		if len(ev.Meta) > 0 && !json.Valid(ev.Meta) {
			return nil, invalid(fmt.Sprintf("events[%d]: meta must be valid json", i))
		}
		rows = append(rows, historyRow(ev))
	}

	if err := s.Repo.InsertOrderHistory(ctx, rows); err != nil {
		return nil, err
	}
	out := make([]InsertedHistory, 0, len(rows))
	for _, r := range rows {
		out = append(out, InsertedHistory{ID: r.ID, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

// List returns a wallet's audit rows, newest first.
func (s *OrderHistoryService) List(ctx context.Context, user, eventType string, limit, offset int) ([]models.OrderHistoryEntry, error) {
	if s == nil || s.Repo == nil {
		return nil, errRepoUnavailable
	}
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, invalid("user_address is required")
	}
	params := repository.ListOrderHistoryParams{Limit: limit, Offset: offset, UserAddress: &user}
	if et := strings.TrimSpace(eventType); et != "" {
		params.EventType = &et
	}
	return s.Repo.ListOrderHistory(ctx, params)
}

func historyRow(ev HistoryEventInput) models.OrderHistoryEntry {
	row := models.OrderHistoryEntry{
		UserAddress: ev.UserAddress,
		Chain:       strings.ToUpper(strings.TrimSpace(ev.Chain)),
		Symbol:      strings.ToUpper(strings.TrimSpace(ev.Symbol)),
		BaseMint:    trimmedPtr(ev.BaseMint),
		QuoteMint:   trimmedPtr(ev.QuoteMint),
		Side:        trimmedPtr(ev.Side),
		EventType:   ev.EventType,
		Source:      strings.TrimSpace(ev.Source),
		BaseAmount:  ev.BaseAmount,
		QuoteAmount: ev.QuoteAmount,
		PriceQuote:  ev.PriceQuote,
		PriceUSD:    ev.PriceUSD,
		FeeQuote:    ev.FeeQuote,
		TxHash:      trimmedPtr(ev.TxHash),
	}
	if len(ev.Meta) > 0 && string(ev.Meta) != "null" {
		row.Meta = datatypes.JSON(ev.Meta)
	}
	return row
}
