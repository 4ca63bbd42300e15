package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConfigVersion 输出文档版本，字段名与顺序是下游兼容约定
const ConfigVersion = 1

// AssetPair canonical (base, quote) key, both legs uppercase
type AssetPair struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

func (p AssetPair) String() string {
	return p.Base + "/" + p.Quote
}

// ExchangeSymbolInfo 交易所原生交易对信息
type ExchangeSymbolInfo struct {
	Exchange     string
	NativeSymbol string // e.g. BTCUSDT, BTC-USD, BTC_USDT
	Base         string
	Quote        string
}

// ExchangePriceQuote 交易所最新成交价
type ExchangePriceQuote struct {
	Exchange     string
	NativeSymbol string
	Price        decimal.Decimal
	ObservedAt   time.Time
}

// ExchangeAssets 单个交易所一次抓取的结果
type ExchangeAssets struct {
	Exchange string
	Symbols  []ExchangeSymbolInfo
	Prices   []ExchangePriceQuote
}

// FetchResult tagged per-exchange outcome: Assets on success, Err otherwise
type FetchResult struct {
	Exchange string
	Assets   *ExchangeAssets
	Err      error
	Duration time.Duration
}

func (r FetchResult) OK() bool {
	return r.Err == nil && r.Assets != nil
}

type FailureKind string

const (
	FailureFetch   FailureKind = "fetch"
	FailureDecode  FailureKind = "decode"
	FailureTimeout FailureKind = "timeout"
)

// ExchangeFailure machine-readable record of an unavailable exchange
type ExchangeFailure struct {
	Exchange string      `json:"exchange"`
	Kind     FailureKind `json:"kind"`
	Reason   string      `json:"reason"`
}

// FeedSource 一个交易所对某个 feed 的价格贡献
type FeedSource struct {
	Exchange     string          `json:"exchange"`
	NativeSymbol string          `json:"native_symbol"`
	Price        decimal.Decimal `json:"price"`
	LastSeen     time.Time       `json:"-"`
}

type FeedStatus string

const (
	FeedStatusOK        FeedStatus = "ok"
	FeedStatusNoSources FeedStatus = "no_sources"
)

// FeedDefinition registry entry; Sources/Outliers/Status are filled by aggregation
type FeedDefinition struct {
	ID               uint32       `json:"id"`
	Description      string       `json:"description"`
	Pair             AssetPair    `json:"pair"`
	Decimals         uint8        `json:"decimals"`
	ReportIntervalMs int64        `json:"report_interval_ms"`
	AcceptQuotes     []string     `json:"-"`
	Status           FeedStatus   `json:"status"`
	Sources          []FeedSource `json:"sources"`
	Outliers         []FeedSource `json:"outliers"`
}

// GeneratedConfig 最终输出文档，Feeds 保持 registry 顺序
type GeneratedConfig struct {
	Version     int               `json:"version"`
	Feeds       []FeedDefinition  `json:"feeds"`
	Unavailable []ExchangeFailure `json:"unavailable_exchanges"`
}

// RunRecord 一次生成运行的摘要，写入 artifact 历史
type RunRecord struct {
	RunID           uuid.UUID
	StartedAt       time.Time
	Duration        time.Duration
	FeedCount       int
	EmptyFeeds      int
	ExchangesOK     []string
	ExchangesFailed []ExchangeFailure
	Checksum        string
}
