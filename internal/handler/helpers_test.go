package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/auth"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/cache"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/client/jupiter"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/models"
	gormrepository "github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository/gorm"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/service"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/tradelog"
)

var testJWT = auth.JWT{Secret: []byte("handler-test-secret"), TokenTTL: time.Hour}

type testEnv struct {
	engine  *gin.Engine
	store   *gormrepository.Store
	audit   *service.AuditRecorder
	events  *service.OrderEvents
	jupiter *httptest.Server
}

// newTestEnv wires the full route set against sqlite and a fake Jupiter host.
func newTestEnv(t *testing.T, jup http.HandlerFunc) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(&models.LimitOrder{}, &models.OrderHistoryEntry{}, &models.PriceQuote{}, &models.UserWallet{}))
	store := gormrepository.New(gdb)

	if jup == nil {
		jup = func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"orders":[]}`))
		}
	}
	jupSrv := httptest.NewServer(jup)
	t.Cleanup(jupSrv.Close)

	log := zaptest.NewLogger(t)
	audit, err := service.NewAuditRecorder(store, log, nil, 2, 0)
	require.NoError(t, err)
	t.Cleanup(audit.Close)
	events := service.NewOrderEvents()

	orders := &service.LimitOrderService{Repo: store, Audit: audit, Events: events, Logger: log}
	jupSvc := &service.JupiterOrderService{
		API:     jupiter.NewClient(jupSrv.Client(), jupSrv.URL, ""),
		Wallets: store,
		Audit:   audit,
		Logger:  log,
	}
	mem := cache.NewMemoryStore()

	r := gin.New()
	r.Use(auth.Identify(testJWT))
	(&HealthHandler{DB: sqlDB}).Register(r)
	(&LimitOrderHandler{
		Orders:   orders,
		Executor: &service.TriggerExecutor{Orders: store, Prices: store, Audit: audit, Events: events, Logger: log},
	}).Register(r)
	(&OrderHistoryHandler{Service: &service.OrderHistoryService{Repo: store}}).Register(r)
	(&JupiterHandler{Service: jupSvc}).Register(r)
	(&ViewHandler{
		OpenOrders:   &service.OpenOrdersView{Orders: orders, Jupiter: jupSvc, Logger: log},
		Events:       events,
		Trades:       &service.TradeHistoryView{History: store, Local: tradelog.New(mem, tradelog.DefaultCap), Audit: audit, Logger: log},
		PollInterval: time.Hour,
		HistoryLimit: 50,
	}).Register(r)
	(&MarketHandler{Prices: &service.MarketPriceService{
		Prices: store,
		Cache:  cache.NewTTLCache(mem, time.Minute, time.Hour),
		Logger: log,
	}}).Register(r)
	(&WalletHandler{Service: &service.WalletService{Repo: store}}).Register(r)
	RegisterDocs(r)

	return &testEnv{engine: r, store: store, audit: audit, events: events, jupiter: jupSrv}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	switch v := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := testJWT.Sign(auth.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}})
	require.NoError(t, err)
	return tok
}
