package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration toml 中以字符串书写，例如 "10s"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	App struct {
		LogLevel        string   `toml:"log_level"`
		LogConsole      bool     `toml:"log_console"`
		RunTimeout      Duration `toml:"run_timeout"`
		ExchangeTimeout Duration `toml:"exchange_timeout"`
		OutputPath      string   `toml:"output_path"`
		MetricsTextfile string   `toml:"metrics_textfile"` // 为空则不导出
	} `toml:"app"`

	HTTP struct {
		UserAgent    string   `toml:"user_agent"`
		MaxRetries   int      `toml:"max_retries"`
		RetryBackoff Duration `toml:"retry_backoff"`
	} `toml:"http"`

	Aggregation struct {
		ExchangePriority []string `toml:"exchange_priority"`
		OutlierThreshold *float64 `toml:"outlier_threshold"` // 0 关闭异常值过滤
	} `toml:"aggregation"`

	Normalizer struct {
		AssetAliases         map[string]string            `toml:"asset_aliases"`
		QuoteAliases         map[string][]string          `toml:"quote_aliases"`
		ExchangeAssetAliases map[string]map[string]string `toml:"exchange_asset_aliases"`
	} `toml:"normalizer"`

	Exchanges map[string]ExchangeConfig `toml:"exchanges"`

	Storage struct {
		SQLite   SQLiteConfig   `toml:"sqlite"`
		Postgres PostgresConfig `toml:"postgres"`
		Redis    RedisConfig    `toml:"redis"`
	} `toml:"storage"`
}

// ExchangeConfig 每个交易所的开关与端点覆盖，URL 为空时使用内置默认值
type ExchangeConfig struct {
	Enabled      bool     `toml:"enabled"`
	SymbolsURL   string   `toml:"symbols_url"`
	PricesURL    string   `toml:"prices_url"`
	DetailsURL   string   `toml:"details_url"`
	AssetsURL    string   `toml:"assets_url"`
	Timeout      Duration `toml:"timeout"`
	RateLimitRPS float64  `toml:"rate_limit_rps"`
	Concurrency  int      `toml:"concurrency"`
}

type SQLiteConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type PostgresConfig struct {
	Enabled bool   `toml:"enabled"`
	DSN     string `toml:"dsn"`
}

type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	Prefix     string `toml:"prefix"`
	TTLSeconds int    `toml:"ttl_seconds"` // 0 表示不过期
	Stream     string `toml:"stream"`
	Channel    string `toml:"channel"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse 同 Load，从字符串读取
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.App.RunTimeout.Duration <= 0 {
		cfg.App.RunTimeout.Duration = 60 * time.Second
	}
	if cfg.App.ExchangeTimeout.Duration <= 0 {
		cfg.App.ExchangeTimeout.Duration = 20 * time.Second
	}
	if cfg.App.OutputPath == "" {
		cfg.App.OutputPath = "feeds.json"
	}

	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = "feedgen/1.0"
	}
	if cfg.HTTP.RetryBackoff.Duration <= 0 {
		cfg.HTTP.RetryBackoff.Duration = 500 * time.Millisecond
	}

	if cfg.Aggregation.OutlierThreshold == nil {
		v := 0.10
		cfg.Aggregation.OutlierThreshold = &v
	}

	normalized := make(map[string]ExchangeConfig, len(cfg.Exchanges))
	for name, ex := range cfg.Exchanges {
		if ex.Timeout.Duration <= 0 {
			ex.Timeout = cfg.App.ExchangeTimeout
		}
		normalized[strings.ToLower(strings.TrimSpace(name))] = ex
	}
	cfg.Exchanges = normalized

	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "data/feedgen.db"
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "feedgen"
	}
	if cfg.Storage.Redis.Stream == "" {
		cfg.Storage.Redis.Stream = "feedgen:runs"
	}
	if cfg.Storage.Redis.Channel == "" {
		cfg.Storage.Redis.Channel = "feedgen:config"
	}
}

func validate(cfg *Config) error {
	cfg.Aggregation.ExchangePriority = normalizeNames(cfg.Aggregation.ExchangePriority)

	if cfg.App.ExchangeTimeout.Duration > cfg.App.RunTimeout.Duration {
		return errors.New("app.exchange_timeout exceeds app.run_timeout")
	}
	if cfg.HTTP.MaxRetries < 0 {
		return errors.New("http.max_retries must not be negative")
	}
	if t := *cfg.Aggregation.OutlierThreshold; t < 0 || t >= 1 {
		return fmt.Errorf("aggregation.outlier_threshold %v out of range [0, 1)", t)
	}
	if len(cfg.GetEnabledExchanges()) == 0 {
		return errors.New("no exchange enabled")
	}
	for name, ex := range cfg.Exchanges {
		if ex.RateLimitRPS < 0 {
			return fmt.Errorf("exchanges.%s.rate_limit_rps must not be negative", name)
		}
		if ex.Concurrency < 0 {
			return fmt.Errorf("exchanges.%s.concurrency must not be negative", name)
		}
	}
	if cfg.Storage.Postgres.Enabled && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn empty but enabled")
	}
	if cfg.Storage.Redis.Enabled && strings.TrimSpace(cfg.Storage.Redis.Addr) == "" {
		return errors.New("storage.redis.addr empty but enabled")
	}
	return nil
}

// GetEnabledExchanges 已启用的交易所，按名称排序
func (c *Config) GetEnabledExchanges() []string {
	out := make([]string, 0, len(c.Exchanges))
	for name, ex := range c.Exchanges {
		if ex.Enabled {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func normalizeNames(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		u := strings.ToLower(strings.TrimSpace(s))
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
