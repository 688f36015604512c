package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/client/jupiter"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/metrics"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
)

type TriggerAPI interface {
	CreateOrder(ctx context.Context, req jupiter.CreateOrderRequest) (*jupiter.Response, error)
	CancelOrder(ctx context.Context, req jupiter.CancelOrderRequest) (*jupiter.Response, error)
	GetTriggerOrders(ctx context.Context, q jupiter.GetOrdersQuery) (*jupiter.Response, error)
	Execute(ctx context.Context, req jupiter.ExecuteRequest) (*jupiter.Response, error)
}

// FlexString accepts a JSON string or number.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*f = ""
		return nil
	}
	if n, ok := v.(float64); ok {
		*f = FlexString(decimal.NewFromFloat(n).String())
		return nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return err
	}
	*f = FlexString(strings.TrimSpace(s))
	return nil
}

type TriggerOrderParams struct {
	MakingAmount FlexString `json:"makingAmount"`
	TakingAmount FlexString `json:"takingAmount"`
	SlippageBps  FlexString `json:"slippageBps,omitempty"`
	ExpiredAt    FlexString `json:"expiredAt,omitempty"`
}

type CreateTriggerOrderInput struct {
	InputMint        string              `json:"inputMint" validate:"required"`
	OutputMint       string              `json:"outputMint" validate:"required"`
	Maker            string              `json:"maker" validate:"required"`
	Payer            string              `json:"payer" validate:"required"`
	Params           *TriggerOrderParams `json:"params,omitempty"`
	MakingAmount     FlexString          `json:"makingAmount,omitempty"`
	TakingAmount     FlexString          `json:"takingAmount,omitempty"`
	SlippageBps      FlexString          `json:"slippageBps,omitempty"`
	ExpiredAt        FlexString          `json:"expiredAt,omitempty"`
	ComputeUnitPrice string              `json:"computeUnitPrice,omitempty"`
	// Symbol only labels the audit row.
	Symbol string `json:"symbol,omitempty"`
}

type CancelTriggerOrderInput struct {
	Maker            string `json:"maker" validate:"required"`
	Order            string `json:"order" validate:"required"`
	ComputeUnitPrice string `json:"computeUnitPrice,omitempty"`
	Symbol           string `json:"symbol,omitempty"`
}

type OpenTriggerOrdersInput struct {
	User        string `json:"user" form:"user" validate:"required"`
	OrderStatus string `json:"orderStatus" form:"orderStatus"`
	InputMint   string `json:"inputMint" form:"inputMint"`
	OutputMint  string `json:"outputMint" form:"outputMint"`
	Page        int    `json:"page" form:"page"`
}

type ExecuteTriggerOrderInput struct {
	SignedTransaction string `json:"signedTransaction" validate:"required"`
	RequestID         string `json:"requestId" validate:"required"`
	// Maker enables the limit_execute audit row when set.
	Maker  string `json:"maker,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}

// JupiterOrderService proxies trigger-order calls. Upstream success is final: audit
// writes afterwards are best effort and never change the result.
type JupiterOrderService struct {
	API     TriggerAPI
	Wallets repository.WalletRepository
	Audit   *AuditRecorder
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Create forwards a trigger order. When userID is authenticated and owns the maker
// wallet, one limit_create row is recorded; otherwise logging is skipped silently.
func (s *JupiterOrderService) Create(ctx context.Context, userID string, in CreateTriggerOrderInput) (*jupiter.Response, error) {
	if s == nil || s.API == nil {
		return nil, errUpstreamUnavailable
	}
	in.InputMint = strings.TrimSpace(in.InputMint)
	in.OutputMint = strings.TrimSpace(in.OutputMint)
	in.Maker = strings.TrimSpace(in.Maker)
	in.Payer = strings.TrimSpace(in.Payer)
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	params := in.params()
	if params.MakingAmount == "" {
		return nil, invalid("makingAmount is required")
	}
	if params.TakingAmount == "" {
		return nil, invalid("takingAmount is required")
	}

	resp, err := s.API.CreateOrder(ctx, jupiter.CreateOrderRequest{
		InputMint:        in.InputMint,
		OutputMint:       in.OutputMint,
		Maker:            in.Maker,
		Payer:            in.Payer,
		Params:           params,
		ComputeUnitPrice: in.ComputeUnitPrice,
	})
	s.Metrics.Upstream("jupiter", err)
	if err != nil {
		return nil, err
	}

	if s.ownsWallet(ctx, userID, in.Maker) {
		meta := map[string]any{
			"order":       gjson.GetBytes(resp.Body, "order").String(),
			"request_id":  gjson.GetBytes(resp.Body, "requestId").String(),
			"input_mint":  in.InputMint,
			"output_mint": in.OutputMint,
		}
		s.Audit.Record(models.OrderHistoryEntry{
			UserAddress: in.Maker,
			Chain:       models.ChainSOL,
			Symbol:      strings.ToUpper(strings.TrimSpace(in.Symbol)),
			BaseMint:    strPtr(in.InputMint),
			QuoteMint:   strPtr(in.OutputMint),
			EventType:   models.EventLimitCreate,
			Source:      models.SourceJUP,
			BaseAmount:  nullDecimal(params.MakingAmount),
			QuoteAmount: nullDecimal(params.TakingAmount),
			Meta:        jsonMeta(meta),
		})
	}
	return resp, nil
}

func (s *JupiterOrderService) Cancel(ctx context.Context, in CancelTriggerOrderInput) (*jupiter.Response, error) {
	if s == nil || s.API == nil {
		return nil, errUpstreamUnavailable
	}
	in.Maker = strings.TrimSpace(in.Maker)
	in.Order = strings.TrimSpace(in.Order)
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	resp, err := s.API.CancelOrder(ctx, jupiter.CancelOrderRequest{
		Maker:            in.Maker,
		Order:            in.Order,
		ComputeUnitPrice: in.ComputeUnitPrice,
	})
	s.Metrics.Upstream("jupiter", err)
	if err != nil {
		return nil, err
	}
	s.Audit.Record(models.OrderHistoryEntry{
		UserAddress: in.Maker,
		Chain:       models.ChainSOL,
		Symbol:      strings.ToUpper(strings.TrimSpace(in.Symbol)),
		EventType:   models.EventLimitCancel,
		Source:      models.SourceJUP,
		Meta:        jsonMeta(map[string]any{"order": in.Order}),
	})
	return resp, nil
}

// Open returns the raw getTriggerOrders reply.
func (s *JupiterOrderService) Open(ctx context.Context, in OpenTriggerOrdersInput) (*jupiter.Response, error) {
	if s == nil || s.API == nil {
		return nil, errUpstreamUnavailable
	}
	in.User = strings.TrimSpace(in.User)
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	resp, err := s.API.GetTriggerOrders(ctx, jupiter.GetOrdersQuery{
		User:        in.User,
		OrderStatus: in.OrderStatus,
		InputMint:   strings.TrimSpace(in.InputMint),
		OutputMint:  strings.TrimSpace(in.OutputMint),
		Page:        in.Page,
	})
	s.Metrics.Upstream("jupiter", err)
	return resp, err
}

// OpenOrders returns the user's active trigger orders decoded for views.
func (s *JupiterOrderService) OpenOrders(ctx context.Context, user, outputMint string) ([]jupiter.Order, error) {
	resp, err := s.Open(ctx, OpenTriggerOrdersInput{User: user, OrderStatus: "active", OutputMint: outputMint})
	if err != nil {
		return nil, err
	}
	return jupiter.DecodeOrders(resp.Body)
}

func (s *JupiterOrderService) Execute(ctx context.Context, in ExecuteTriggerOrderInput) (*jupiter.Response, error) {
	if s == nil || s.API == nil {
		return nil, errUpstreamUnavailable
	}
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	resp, err := s.API.Execute(ctx, jupiter.ExecuteRequest{
		SignedTransaction: in.SignedTransaction,
		RequestID:         in.RequestID,
	})
	s.Metrics.Upstream("jupiter", err)
	if err != nil {
		return nil, err
	}
	if maker := strings.TrimSpace(in.Maker); maker != "" {
		entry := models.OrderHistoryEntry{
			UserAddress: maker,
			Chain:       models.ChainSOL,
			Symbol:      strings.ToUpper(strings.TrimSpace(in.Symbol)),
			EventType:   models.EventLimitExecute,
			Source:      models.SourceJUP,
			Meta: jsonMeta(map[string]any{
				"request_id": in.RequestID,
				"status":     gjson.GetBytes(resp.Body, "status").String(),
			}),
		}
		if sig := gjson.GetBytes(resp.Body, "signature").String(); sig != "" {
			entry.TxHash = &sig
		}
		s.Audit.Record(entry)
	}
	return resp, nil
}

func (s *JupiterOrderService) ownsWallet(ctx context.Context, userID, address string) bool {
	userID = strings.TrimSpace(userID)
	if userID == "" || s.Wallets == nil {
		return false
	}
	ok, err := s.Wallets.IsWalletOwnedBy(ctx, userID, address)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("wallet ownership lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return false
	}
	return ok
}

func (in CreateTriggerOrderInput) params() jupiter.OrderParams {
	p := jupiter.OrderParams{
		MakingAmount: string(in.MakingAmount),
		TakingAmount: string(in.TakingAmount),
		SlippageBps:  string(in.SlippageBps),
		ExpiredAt:    string(in.ExpiredAt),
	}
	if in.Params != nil {
		if in.Params.MakingAmount != "" {
			p.MakingAmount = string(in.Params.MakingAmount)
		}
		if in.Params.TakingAmount != "" {
			p.TakingAmount = string(in.Params.TakingAmount)
		}
		if in.Params.SlippageBps != "" {
			p.SlippageBps = string(in.Params.SlippageBps)
		}
		if in.Params.ExpiredAt != "" {
			p.ExpiredAt = string(in.Params.ExpiredAt)
		}
	}
	return p
}

func nullDecimal(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
