package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("db unavailable")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// --- limit orders -----------------------------------------------------------

func (s *Store) InsertLimitOrder(ctx context.Context, item *models.LimitOrder) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetLimitOrder(ctx context.Context, id string) (*models.LimitOrder, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var item models.LimitOrder
	err := s.db.WithContext(ctx).Model(&models.LimitOrder{}).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListLimitOrders(ctx context.Context, params repository.ListLimitOrdersParams) ([]models.LimitOrder, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.LimitOrder{})
	if params.UserAddress != nil && strings.TrimSpace(*params.UserAddress) != "" {
		query = query.Where("user_address = ?", strings.TrimSpace(*params.UserAddress))
	}
	if params.Symbol != nil && strings.TrimSpace(*params.Symbol) != "" {
		query = query.Where("symbol = ?", strings.ToUpper(strings.TrimSpace(*params.Symbol)))
	}
	if statuses := cleanStrings(params.Statuses); len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.LimitOrder
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListOpenLimitOrders(ctx context.Context, limit int) ([]models.LimitOrder, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.LimitOrder
	err := s.db.WithContext(ctx).
		Model(&models.LimitOrder{}).
		Where("status = ?", models.OrderStatusOpen).
		Order("created_at asc").
		Limit(normalizeLimit(limit, 500)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListOpenOrderSymbols(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var symbols []string
	err := s.db.WithContext(ctx).
		Model(&models.LimitOrder{}).
		Where("status = ?", models.OrderStatusOpen).
		Distinct().
		Order("symbol asc").
		Pluck("symbol", &symbols).Error
	if err != nil {
		return nil, err
	}
	return symbols, nil
}

func (s *Store) CancelOpenLimitOrder(ctx context.Context, id, userAddress string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	id = strings.TrimSpace(id)
	userAddress = strings.TrimSpace(userAddress)
	if id == "" || userAddress == "" {
		return false, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.LimitOrder{}).
		Where("id = ? AND user_address = ? AND status = ?", id, userAddress, models.OrderStatusOpen).
		Updates(map[string]any{
			"status":     models.OrderStatusCanceled,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) TriggerOpenLimitOrder(ctx context.Context, id string, price decimal.Decimal) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.LimitOrder{}).
		Where("id = ? AND status = ?", id, models.OrderStatusOpen).
		Updates(map[string]any{
			"status":          models.OrderStatusTriggered,
			"triggered_price": price,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// --- order history ----------------------------------------------------------

func (s *Store) InsertOrderHistory(ctx context.Context, items []models.OrderHistoryEntry) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	// One statement for the whole batch.
	return s.db.WithContext(ctx).Create(&items).Error
}

func (s *Store) ListOrderHistory(ctx context.Context, params repository.ListOrderHistoryParams) ([]models.OrderHistoryEntry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.OrderHistoryEntry{})
	if params.UserAddress != nil && strings.TrimSpace(*params.UserAddress) != "" {
		query = query.Where("user_address = ?", strings.TrimSpace(*params.UserAddress))
	}
	if params.EventType != nil && strings.TrimSpace(*params.EventType) != "" {
		query = query.Where("event_type = ?", strings.TrimSpace(*params.EventType))
	}
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.OrderHistoryEntry
	if err := query.Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- prices -----------------------------------------------------------------

func (s *Store) GetLatestPrices(ctx context.Context, symbols []string) (map[string]models.PriceQuote, error) {
	out := map[string]models.PriceQuote{}
	if s == nil || s.db == nil {
		return out, nil
	}
	symbols = cleanStrings(upperAll(symbols))
	if len(symbols) == 0 {
		return out, nil
	}
	var items []models.PriceQuote
	if err := s.db.WithContext(ctx).
		Model(&models.PriceQuote{}).
		Where("symbol IN ?", symbols).
		Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.Symbol] = item
	}
	return out, nil
}

func (s *Store) UpsertPriceQuotes(ctx context.Context, items []models.PriceQuote) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"price_usd", "source", "updated_at"}),
	}).Create(&items).Error
}

// --- wallets ----------------------------------------------------------------

func (s *Store) IsWalletOwnedBy(ctx context.Context, userID, address string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	userID = strings.TrimSpace(userID)
	address = strings.TrimSpace(address)
	if userID == "" || address == "" {
		return false, nil
	}
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.UserWallet{}).
		Where("user_id = ? AND address = ?", userID, address).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

func (s *Store) LinkWallet(ctx context.Context, item *models.UserWallet) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.UserID = strings.TrimSpace(item.UserID)
	item.Address = strings.TrimSpace(item.Address)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "address"}},
		DoNothing: true,
	}).Create(item).Error
}

func (s *Store) ListUserWallets(ctx context.Context, userID string) ([]models.UserWallet, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.UserWallet
	if err := s.db.WithContext(ctx).
		Model(&models.UserWallet{}).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	switch column {
	case "created_at", "updated_at", "limit_price", "symbol":
	default:
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func upperAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, strings.ToUpper(it))
	}
	return out
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	seen := map[string]struct{}{}
	for _, raw := range items {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		if _, ok := seen[val]; ok {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	return out
}

var _ repository.Repository = (*Store)(nil)
