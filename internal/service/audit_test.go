package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/metrics"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository"
)

type blockingHistory struct {
	repository.HistoryRepository
	release chan struct{}
	mu      sync.Mutex
	n       int
}

func (b *blockingHistory) InsertOrderHistory(ctx context.Context, items []models.OrderHistoryEntry) error {
	<-b.release
	b.mu.Lock()
	b.n += len(items)
	b.mu.Unlock()
	return nil
}

func TestAuditRecorder_RecordDoesNotBlock(t *testing.T) {
	h := &blockingHistory{release: make(chan struct{})}
	a, err := NewAuditRecorder(h, zap.NewNop(), nil, 1, time.Second)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			a.Record(models.OrderHistoryEntry{UserAddress: "u", EventType: models.EventLimitCreate})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on storage")
	}

	close(h.release)
	a.Close()
	assert.Equal(t, 5, h.n)
}

func TestAuditRecorder_FailureLoggedAndCounted(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	store := newTestStore(t)
	h := &countingHistory{HistoryRepository: store, fail: errors.New("boom")}

	a, err := NewAuditRecorder(h, zap.New(core), m, 2, time.Second)
	require.NoError(t, err)
	a.Record(models.OrderHistoryEntry{UserAddress: "u", EventType: models.EventLimitCancel})
	a.Flush()
	a.Close()

	assert.Equal(t, 1, h.Calls())
	assert.Equal(t, 1, logs.FilterMessage("order history audit failed").Len())

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range mfs {
		if mf.GetName() == "hub_order_history_audit_failures_total" {
			found = true
			assert.Equal(t, float64(1), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}

func TestAuditRecorder_NilIsNoop(t *testing.T) {
	var a *AuditRecorder
	a.Record(models.OrderHistoryEntry{})
	a.Flush()
	a.Close()
}
