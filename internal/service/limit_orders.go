package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/metrics"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
)

type CreateLimitOrderInput struct {
	Chain        string          `json:"chain" validate:"required,oneof=SOL EVM"`
	Symbol       string          `json:"symbol" validate:"required"`
	Side         string          `json:"side" validate:"required,oneof=buy sell"`
	LimitPrice   decimal.Decimal `json:"limit_price"`
	Amount       decimal.Decimal `json:"amount"`
	UserAddress  string          `json:"user_address" validate:"required"`
	SolMint      *string         `json:"sol_mint,omitempty"`
	EVMFromToken *string         `json:"evm_from_token,omitempty"`
	EVMToToken   *string         `json:"evm_to_token,omitempty"`
}

type CancelLimitOrderInput struct {
	ID          string `json:"id" validate:"required"`
	UserAddress string `json:"user_address" validate:"required"`
}

type ListLimitOrdersInput struct {
	UserAddress string
	Symbol      string
	Statuses    []string
	Limit       int
	Offset      int
}

type LimitOrderService struct {
	Repo    repository.OrderRepository
	Audit   *AuditRecorder
	Events  *OrderEvents
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Create validates and stores a new open order. Storage errors are returned as-is
// and nothing is audited.
func (s *LimitOrderService) Create(ctx context.Context, in CreateLimitOrderInput) (*models.LimitOrder, error) {
	if s == nil || s.Repo == nil {
		return nil, errRepoUnavailable
	}
	in.Chain = strings.ToUpper(strings.TrimSpace(in.Chain))
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	in.Side = strings.ToLower(strings.TrimSpace(in.Side))
	in.UserAddress = strings.TrimSpace(in.UserAddress)
	in.SolMint = trimmedPtr(in.SolMint)
	in.EVMFromToken = trimmedPtr(in.EVMFromToken)
	in.EVMToToken = trimmedPtr(in.EVMToToken)

	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if !in.LimitPrice.IsPositive() {
		return nil, invalid("limit_price must be > 0")
	}
	if !in.Amount.IsPositive() {
		return nil, invalid("amount must be > 0")
	}

	order := &models.LimitOrder{
		ID:           uuid.NewString(),
		Chain:        in.Chain,
		Symbol:       in.Symbol,
		Side:         in.Side,
		LimitPrice:   in.LimitPrice,
		Amount:       in.Amount,
		UserAddress:  in.UserAddress,
		Status:       models.OrderStatusOpen,
		SolMint:      in.SolMint,
		EVMFromToken: in.EVMFromToken,
		EVMToToken:   in.EVMToToken,
	}
	if err := s.Repo.InsertLimitOrder(ctx, order); err != nil {
		return nil, err
	}

	s.Metrics.OrderCreated()
	s.Events.Publish(orderEvent(EventCreated, order))
	s.Audit.Record(limitAuditEntry(models.EventLimitCreate, order, decimal.NullDecimal{}))
	return order, nil
}

// Cancel moves an open order owned by in.UserAddress to canceled. Any other state of
// the row yields ErrNotFoundOrNotOpen.
func (s *LimitOrderService) Cancel(ctx context.Context, in CancelLimitOrderInput) (*models.LimitOrder, error) {
	if s == nil || s.Repo == nil {
		return nil, errRepoUnavailable
	}
	in.ID = strings.TrimSpace(in.ID)
	in.UserAddress = strings.TrimSpace(in.UserAddress)
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	ok, err := s.Repo.CancelOpenLimitOrder(ctx, in.ID, in.UserAddress)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFoundOrNotOpen
	}

	order, err := s.Repo.GetLimitOrder(ctx, in.ID)
	if err != nil || order == nil {
		if s.Logger != nil {
			s.Logger.Warn("reload canceled order failed", zap.String("order_id", in.ID), zap.Error(err))
		}
		order = &models.LimitOrder{ID: in.ID, UserAddress: in.UserAddress, Status: models.OrderStatusCanceled}
	}

	s.Metrics.OrderCanceled()
	s.Events.Publish(orderEvent(EventCanceled, order))
	s.Audit.Record(limitAuditEntry(models.EventLimitCancel, order, decimal.NullDecimal{}))
	return order, nil
}

func (s *LimitOrderService) List(ctx context.Context, in ListLimitOrdersInput) ([]models.LimitOrder, error) {
	if s == nil || s.Repo == nil {
		return nil, errRepoUnavailable
	}
	user := strings.TrimSpace(in.UserAddress)
	if user == "" {
		return nil, invalid("user_address is required")
	}
	params := repository.ListLimitOrdersParams{
		Limit:       in.Limit,
		Offset:      in.Offset,
		UserAddress: &user,
		Statuses:    in.Statuses,
		OrderBy:     "created_at",
		Asc:         boolPtr(false),
	}
	if sym := strings.ToUpper(strings.TrimSpace(in.Symbol)); sym != "" {
		params.Symbol = &sym
	}
	for _, st := range in.Statuses {
		switch st {
		case models.OrderStatusOpen, models.OrderStatusTriggered, models.OrderStatusCanceled, models.OrderStatusFilled:
		default:
			return nil, invalid("unknown status: " + st)
		}
	}
	return s.Repo.ListLimitOrders(ctx, params)
}

func orderEvent(kind string, o *models.LimitOrder) OrderEvent {
	return OrderEvent{
		Kind:        kind,
		OrderID:     o.ID,
		UserAddress: o.UserAddress,
		Symbol:      o.Symbol,
		Status:      o.Status,
	}
}

func limitAuditEntry(eventType string, o *models.LimitOrder, observed decimal.NullDecimal) models.OrderHistoryEntry {
	meta := map[string]any{"order_id": o.ID, "status": o.Status}
	if o.SolMint != nil {
		meta["sol_mint"] = *o.SolMint
	}
	if observed.Valid {
		meta["triggered_price"] = observed.Decimal.String()
	}
	entry := models.OrderHistoryEntry{
		UserAddress: o.UserAddress,
		Chain:       o.Chain,
		Symbol:      o.Symbol,
		EventType:   eventType,
		Source:      models.SourceDB,
		BaseMint:    o.SolMint,
		Meta:        jsonMeta(meta),
	}
	if o.Side != "" {
		side := o.Side
		entry.Side = &side
	}
	if !o.Amount.IsZero() {
		entry.BaseAmount = decimal.NewNullDecimal(o.Amount)
	}
	if !o.LimitPrice.IsZero() {
		entry.PriceQuote = decimal.NewNullDecimal(o.LimitPrice)
		if !o.Amount.IsZero() {
			entry.QuoteAmount = decimal.NewNullDecimal(o.Amount.Mul(o.LimitPrice))
		}
	}
	if observed.Valid {
		entry.PriceUSD = observed
	}
	return entry
}

func jsonMeta(v map[string]any) datatypes.JSON {
	if len(v) == 0 {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func trimmedPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func boolPtr(v bool) *bool { return &v }
