// Package tradelog keeps a per-wallet fallback log of trade actions. It is not
// authoritative; server-side order history wins when both are available.
package tradelog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/cache"
)

const DefaultCap = 200

type Entry struct {
	ID          string          `json:"id"`
	Wallet      string          `json:"wallet"`
	Chain       string          `json:"chain,omitempty"`
	Symbol      string          `json:"symbol"`
	Side        string          `json:"side,omitempty"`
	BaseAmount  decimal.Decimal `json:"base_amount"`
	QuoteAmount decimal.Decimal `json:"quote_amount"`
	Price       decimal.Decimal `json:"price"`
	TxHash      string          `json:"tx_hash,omitempty"`
	Source      string          `json:"source,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Store struct {
	Cache cache.Store
	Cap   int

	mu sync.Mutex
}

func New(store cache.Store, capacity int) *Store {
	return &Store{Cache: store, Cap: capacity}
}

func Key(wallet string) string {
	return "trade_history:" + strings.TrimSpace(wallet)
}

// Append stores e at the head of the wallet's log and drops the oldest entries
// beyond Cap.
func (s *Store) Append(ctx context.Context, e Entry) (Entry, error) {
	if s == nil || s.Cache == nil {
		return Entry{}, errors.New("trade log unavailable")
	}
	e.Wallet = strings.TrimSpace(e.Wallet)
	if e.Wallet == "" {
		return Entry{}, errors.New("wallet is required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.list(ctx, e.Wallet)
	if err != nil {
		return Entry{}, err
	}
	items = append([]Entry{e}, items...)
	if limit := s.capacity(); len(items) > limit {
		items = items[:limit]
	}
	b, err := json.Marshal(items)
	if err != nil {
		return Entry{}, err
	}
	if err := s.Cache.Set(ctx, Key(e.Wallet), b, 0); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// List returns the wallet's entries newest first.
func (s *Store) List(ctx context.Context, wallet string) ([]Entry, error) {
	if s == nil || s.Cache == nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(ctx, wallet)
}

func (s *Store) list(ctx context.Context, wallet string) ([]Entry, error) {
	b, found, err := s.Cache.Get(ctx, Key(wallet))
	if err != nil {
		return nil, err
	}
	if !found || len(b) == 0 {
		return nil, nil
	}
	var items []Entry
	if err := json.Unmarshal(b, &items); err != nil {
		// A corrupt log is dropped rather than blocking new writes.
		return nil, nil
	}
	return items, nil
}

func (s *Store) capacity() int {
	if s.Cap <= 0 {
		return DefaultCap
	}
	return s.Cap
}
