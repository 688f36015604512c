package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/auth"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/cache"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/client/binance"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/client/dexscreener"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/client/jupiter"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/config"
	cronrunner "github.com/mickeythug/svensk-krypto-hub-sub003/internal/cron"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/db"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/handler"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/logger"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/metrics"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/opslog"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/pricefeed"
	gormrepository "github.com/mickeythug/svensk-krypto-hub-sub003/internal/repository/gorm"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/service"
	"github.com/mickeythug/svensk-krypto-hub-sub003/internal/tradelog"

	_ "github.com/mickeythug/svensk-krypto-hub-sub003/docs"
)

func main() {
	cfgPath := os.Getenv("HUB_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("HUB_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log, cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}
	store := gormrepository.New(dbConn.Gorm)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	kv := initCacheStore(cfg.Cache, logger)
	priceCache := cache.NewTTLCache(kv, cfg.Cache.TTL, cfg.Cache.StaleTTL)
	tradeLog := tradelog.New(kv, cfg.TradeLog.Cap)

	audit, err := service.NewAuditRecorder(store, logger, m, cfg.Audit.Workers, cfg.Audit.Timeout)
	if err != nil {
		logger.Fatal("audit pool init failed", zap.Error(err))
	}
	defer audit.Close()
	events := service.NewOrderEvents()

	jupiterHTTP := &http.Client{Timeout: cfg.Jupiter.Timeout}
	jupiterClient := jupiter.NewClient(jupiterHTTP, cfg.Jupiter.BaseURL, cfg.Jupiter.APIKey)
	pricesHTTP := &http.Client{Timeout: cfg.Prices.Timeout}
	binanceClient := binance.NewClient(pricesHTTP, cfg.Prices.BinanceBaseURL)
	dexClient := dexscreener.Client{BaseURL: cfg.Prices.DexscreenerBaseURL, HTTP: pricesHTTP}

	limitOrders := &service.LimitOrderService{Repo: store, Audit: audit, Events: events, Metrics: m, Logger: logger}
	executor := &service.TriggerExecutor{
		Orders:      store,
		Prices:      store,
		Audit:       audit,
		Events:      events,
		Metrics:     m,
		Logger:      logger,
		BatchSize:   cfg.Executor.BatchSize,
		MaxPriceAge: cfg.Executor.MaxPriceAge,
	}
	priceSync := &service.PriceSyncService{
		Orders:     store,
		Prices:     store,
		Ticker:     binanceClient,
		Dex:        dexClient,
		Metrics:    m,
		Logger:     logger,
		QuoteAsset: cfg.Prices.QuoteAsset,
	}
	jupiterOrders := &service.JupiterOrderService{API: jupiterClient, Wallets: store, Audit: audit, Metrics: m, Logger: logger}

	var feed *pricefeed.Stream
	if cfg.Prices.StreamEnabled {
		feed = &pricefeed.Stream{
			Logger:     logger,
			Repo:       store,
			URL:        cfg.Prices.StreamURL,
			QuoteAsset: cfg.Prices.QuoteAsset,
			Symbols:    priceSync.WatchedSymbols,
		}
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(auth.Identify(auth.JWT{Secret: []byte(cfg.Auth.JWTSecret)}))
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("auth.jwt_secret not set; every caller is anonymous and jupiter orders are not audited")
	}

	opsClient := initOpsLogClient(cfg.OpsLog, logger)
	engine.Use(opslog.InjectClientMiddleware(opsClient))
	engine.Use(opslog.WriteAuditMiddleware(opsClient, logger))

	healthHandler := &handler.HealthHandler{DB: dbConn.SQL}
	healthHandler.Register(engine)
	handler.RegisterDocs(engine)

	limitHandler := &handler.LimitOrderHandler{Orders: limitOrders, Executor: executor}
	limitHandler.Register(engine)
	historyHandler := &handler.OrderHistoryHandler{Service: &service.OrderHistoryService{Repo: store}}
	historyHandler.Register(engine)
	jupiterHandler := &handler.JupiterHandler{Service: jupiterOrders}
	jupiterHandler.Register(engine)
	viewHandler := &handler.ViewHandler{
		OpenOrders:   &service.OpenOrdersView{Orders: limitOrders, Jupiter: jupiterOrders, Logger: logger},
		Events:       events,
		Trades:       &service.TradeHistoryView{History: store, Local: tradeLog, Audit: audit, Logger: logger},
		PollInterval: cfg.Views.ExternalPollInterval,
		HistoryLimit: cfg.Views.HistoryLimit,
	}
	viewHandler.Register(engine)
	marketHandler := &handler.MarketHandler{
		Prices: &service.MarketPriceService{Prices: store, Cache: priceCache, Logger: logger},
		Feed:   feed,
	}
	marketHandler.Register(engine)
	walletHandler := &handler.WalletHandler{Service: &service.WalletService{Repo: store}}
	walletHandler.Register(engine)

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseCtx := ctx
	if opsClient != nil {
		baseCtx = opslog.WithClient(ctx, opsClient)
	}

	cronRunner := cronrunner.New(logger, baseCtx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add("price_sync", cfg.Cron.PriceSync, func(ctx context.Context) {
			res, err := priceSync.SyncOnce(ctx)
			if err != nil {
				logger.Warn("cron price sync failed", zap.Error(err))
				opslog.LogBestEffort(ctx, "hub_cron_price_sync_failed", "warn", map[string]any{"error": err.Error()})
				return
			}
			if len(res.Missing) > 0 {
				logger.Info("cron price sync missing symbols", zap.Strings("symbols", res.Missing))
			}
		})
		if err != nil {
			logger.Warn("cron register price sync failed", zap.Error(err))
		}

		_, err = cronRunner.Add("limit_executor", cfg.Cron.Executor, func(ctx context.Context) {
			res, err := executor.RunOnce(ctx)
			if err != nil {
				logger.Warn("cron limit executor failed", zap.Error(err))
				opslog.LogBestEffort(ctx, "hub_cron_executor_failed", "warn", map[string]any{"error": err.Error()})
				return
			}
			if res.Triggered > 0 {
				logger.Info("cron limit executor pass",
					zap.Int("scanned", res.Scanned),
					zap.Int("triggered", res.Triggered),
					zap.Int("skipped", res.Skipped),
				)
				opslog.LogBestEffort(ctx, "hub_cron_executor_triggered", "info", map[string]any{
					"scanned":   res.Scanned,
					"triggered": res.Triggered,
				})
			}
		})
		if err != nil {
			logger.Warn("cron register limit executor failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	if feed != nil {
		go func() {
			if err := feed.Run(baseCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("price feed stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	audit.Flush()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// initCacheStore falls back to the in-process store when redis is unreachable.
func initCacheStore(cfg config.CacheConfig, logger *zap.Logger) cache.Store {
	if !strings.EqualFold(cfg.Driver, "redis") {
		return cache.NewMemoryStore()
	}
	rs := cache.NewRedisStore(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rs.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, using memory cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = rs.Close()
		return cache.NewMemoryStore()
	}
	logger.Info("redis cache ready", zap.String("addr", cfg.RedisAddr))
	return rs
}

func initOpsLogClient(cfg config.OpsLogConfig, logger *zap.Logger) *opslog.Client {
	base := strings.TrimSpace(cfg.BaseURL)
	apiKey := strings.TrimSpace(cfg.APIKey)
	if base == "" || apiKey == "" {
		return nil
	}

	p := &opslog.Client{BaseURL: base, APIKey: apiKey, Agent: cfg.Agent}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.Login(ctx); err != nil {
		logger.Warn("ops log login failed (remote logs disabled)", zap.Error(err))
		return nil
	}
	logger.Info("ops log login ok")
	return p
}
