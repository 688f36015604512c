package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Cron     CronConfig     `mapstructure:"cron"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Jupiter  JupiterConfig  `mapstructure:"jupiter"`
	Prices   PricesConfig   `mapstructure:"prices"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Audit    AuditConfig    `mapstructure:"audit"`
	TradeLog TradeLogConfig `mapstructure:"trade_log"`
	Views    ViewsConfig    `mapstructure:"views"`
	OpsLog   OpsLogConfig   `mapstructure:"ops_log"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	// Service is stamped on every entry.
	Service     string   `mapstructure:"service"`
	OutputPaths []string `mapstructure:"output_paths"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Executor  string `mapstructure:"executor"`
	PriceSync string `mapstructure:"price_sync"`
}

type ExecutorConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	// MaxPriceAge drops quotes older than this from a pass. Zero accepts any age.
	MaxPriceAge time.Duration `mapstructure:"max_price_age"`
}

type JupiterConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PricesConfig struct {
	BinanceBaseURL     string        `mapstructure:"binance_base_url"`
	QuoteAsset         string        `mapstructure:"quote_asset"`
	DexscreenerBaseURL string        `mapstructure:"dexscreener_base_url"`
	Timeout            time.Duration `mapstructure:"timeout"`
	StreamEnabled      bool          `mapstructure:"stream_enabled"`
	StreamURL          string        `mapstructure:"stream_url"`
}

type CacheConfig struct {
	Driver        string        `mapstructure:"driver"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
	StaleTTL      time.Duration `mapstructure:"stale_ttl"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type AuditConfig struct {
	Workers int           `mapstructure:"workers"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TradeLogConfig struct {
	Cap int `mapstructure:"cap"`
}

type ViewsConfig struct {
	ExternalPollInterval time.Duration `mapstructure:"external_poll_interval"`
	HistoryLimit         int           `mapstructure:"history_limit"`
}

type OpsLogConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Agent   string `mapstructure:"agent"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("log.service", "krypto-hub")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.executor", "@every 15s")
	v.SetDefault("cron.price_sync", "@every 30s")
	v.SetDefault("executor.batch_size", 500)
	v.SetDefault("executor.max_price_age", "5m")
	v.SetDefault("jupiter.base_url", "https://lite-api.jup.ag/trigger/v1")
	v.SetDefault("jupiter.api_key", "")
	v.SetDefault("jupiter.timeout", "15s")
	v.SetDefault("prices.binance_base_url", "https://api.binance.com")
	v.SetDefault("prices.quote_asset", "USDT")
	v.SetDefault("prices.dexscreener_base_url", "https://api.dexscreener.com")
	v.SetDefault("prices.timeout", "10s")
	v.SetDefault("prices.stream_enabled", false)
	v.SetDefault("prices.stream_url", "wss://stream.binance.com:9443/ws/!miniTicker@arr")
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.redis_addr", "127.0.0.1:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("cache.stale_ttl", "24h")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("audit.workers", 8)
	v.SetDefault("audit.timeout", "5s")
	v.SetDefault("trade_log.cap", 200)
	v.SetDefault("views.external_poll_interval", "5s")
	v.SetDefault("views.history_limit", 50)
	v.SetDefault("ops_log.agent", "krypto-hub")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
