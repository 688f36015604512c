package cache

import (
	"context"
	"testing"
	"time"
)

type quote struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

func TestTTLCache_FreshThenStale(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache(NewMemoryStore(), 30*time.Second, time.Hour)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	if err := c.Put(ctx, "prices:SOL", quote{Symbol: "SOL", Price: "100"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	var got quote
	ok, err := c.GetFresh(ctx, "prices:SOL", &got)
	if err != nil || !ok {
		t.Fatalf("fresh ok=%v err=%v", ok, err)
	}
	if got.Price != "100" {
		t.Fatalf("price=%q want=100", got.Price)
	}

	now = now.Add(time.Minute)
	got = quote{}
	ok, err = c.GetFresh(ctx, "prices:SOL", &got)
	if err != nil || ok {
		t.Fatalf("expired value must not be fresh ok=%v err=%v", ok, err)
	}

	age, ok, err := c.GetStale(ctx, "prices:SOL", &got)
	if err != nil || !ok {
		t.Fatalf("stale ok=%v err=%v", ok, err)
	}
	if age != time.Minute {
		t.Fatalf("age=%s want=1m", age)
	}
	if got.Symbol != "SOL" {
		t.Fatalf("symbol=%q want=SOL", got.Symbol)
	}
}

func TestTTLCache_Missing(t *testing.T) {
	c := NewTTLCache(NewMemoryStore(), time.Second, time.Minute)
	var got quote
	ok, err := c.GetFresh(context.Background(), "nope", &got)
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	_, ok, err = c.GetStale(context.Background(), "nope", &got)
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	in := []byte("abc")
	_ = s.Set(ctx, "k", in, 0)
	in[0] = 'z'
	out, ok, _ := s.Get(ctx, "k")
	if !ok || string(out) != "abc" {
		t.Fatalf("got=%q ok=%v want=abc", out, ok)
	}
	_ = s.Delete(ctx, "k")
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expected deleted")
	}
}
