package cache

import (
	"context"
	"encoding/json"
	"time"
)

// TTLCache stores values with their write time so that callers pick the read mode:
// GetFresh only returns values younger than TTL, GetStale returns anything still
// retained (up to StaleTTL).
type TTLCache struct {
	Store    Store
	TTL      time.Duration
	StaleTTL time.Duration

	now func() time.Time
}

type envelope struct {
	StoredAt time.Time       `json:"stored_at"`
	Value    json.RawMessage `json:"value"`
}

func NewTTLCache(store Store, ttl, staleTTL time.Duration) *TTLCache {
	if staleTTL > 0 && staleTTL < ttl {
		staleTTL = ttl
	}
	return &TTLCache{Store: store, TTL: ttl, StaleTTL: staleTTL}
}

func (c *TTLCache) Put(ctx context.Context, key string, v any) error {
	if c == nil || c.Store == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b, err := json.Marshal(envelope{StoredAt: c.clock(), Value: raw})
	if err != nil {
		return err
	}
	return c.Store.Set(ctx, key, b, c.StaleTTL)
}

// GetFresh decodes into dst and reports true only when the value is within TTL.
func (c *TTLCache) GetFresh(ctx context.Context, key string, dst any) (bool, error) {
	env, ok, err := c.load(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if c.TTL > 0 && c.clock().Sub(env.StoredAt) > c.TTL {
		return false, nil
	}
	return true, json.Unmarshal(env.Value, dst)
}

// GetStale decodes whatever is retained for key and returns its age.
func (c *TTLCache) GetStale(ctx context.Context, key string, dst any) (time.Duration, bool, error) {
	env, ok, err := c.load(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	if err := json.Unmarshal(env.Value, dst); err != nil {
		return 0, false, err
	}
	return c.clock().Sub(env.StoredAt), true, nil
}

func (c *TTLCache) load(ctx context.Context, key string) (envelope, bool, error) {
	if c == nil || c.Store == nil {
		return envelope{}, false, nil
	}
	b, found, err := c.Store.Get(ctx, key)
	if err != nil || !found {
		return envelope{}, false, err
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return envelope{}, false, err
	}
	return env, true, nil
}

func (c *TTLCache) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now().UTC()
}
