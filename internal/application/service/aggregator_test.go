package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedgen/internal/domain/model"
	dsvc "feedgen/internal/domain/service"
)

var observed = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type listing struct {
	native, base, quote, price string
}

func okResult(exchange string, rows ...listing) model.FetchResult {
	assets := &model.ExchangeAssets{Exchange: exchange}
	for _, r := range rows {
		assets.Symbols = append(assets.Symbols, model.ExchangeSymbolInfo{
			Exchange: exchange, NativeSymbol: r.native, Base: r.base, Quote: r.quote,
		})
		if r.price != "" {
			assets.Prices = append(assets.Prices, model.ExchangePriceQuote{
				Exchange: exchange, NativeSymbol: r.native,
				Price: decimal.RequireFromString(r.price), ObservedAt: observed,
			})
		}
	}
	return model.FetchResult{Exchange: exchange, Assets: assets}
}

type kindErr struct{ kind model.FailureKind }

func (e kindErr) Error() string                  { return string(e.kind) + " failure" }
func (e kindErr) FailureKind() model.FailureKind { return e.kind }

func btcUSDT() model.FeedDefinition {
	return model.FeedDefinition{
		ID: 1, Description: "BTC / USDT", Pair: model.AssetPair{Base: "BTC", Quote: "USDT"},
		Decimals: 8, ReportIntervalMs: 60000,
	}
}

func TestAggregateOrdersSourcesByPrecedence(t *testing.T) {
	agg := NewAggregator(nil, nil, DefaultOutlierThreshold)

	// completion order must not matter
	results := []model.FetchResult{
		okResult("bybit", listing{"BTCUSDT", "BTC", "USDT", "65001.00"}),
		okResult("binance", listing{"BTCUSDT", "BTC", "USDT", "65000.12"}),
	}

	out := agg.Aggregate([]model.FeedDefinition{btcUSDT()}, results)
	require.Len(t, out.Feeds, 1)

	feed := out.Feeds[0]
	assert.Equal(t, model.FeedStatusOK, feed.Status)
	require.Len(t, feed.Sources, 2)
	assert.Equal(t, "binance", feed.Sources[0].Exchange)
	assert.Equal(t, "65000.12", feed.Sources[0].Price.String())
	assert.Equal(t, "bybit", feed.Sources[1].Exchange)
	assert.True(t, feed.Sources[1].Price.Equal(decimal.RequireFromString("65001")))
	assert.Equal(t, observed, feed.Sources[0].LastSeen)
	assert.Empty(t, feed.Outliers)
	assert.NotNil(t, feed.Outliers)
	assert.Empty(t, out.Unavailable)
}

func TestAggregateKeepsZeroSourceFeeds(t *testing.T) {
	agg := NewAggregator(nil, nil, DefaultOutlierThreshold)
	registry := []model.FeedDefinition{
		btcUSDT(),
		{ID: 2, Pair: model.AssetPair{Base: "DOGE", Quote: "USDT"}, ReportIntervalMs: 1000},
	}

	out := agg.Aggregate(registry, []model.FetchResult{
		okResult("binance", listing{"BTCUSDT", "BTC", "USDT", "65000.12"}),
	})
	require.Len(t, out.Feeds, 2)
	assert.Equal(t, uint32(1), out.Feeds[0].ID)
	assert.Equal(t, uint32(2), out.Feeds[1].ID)
	assert.Equal(t, model.FeedStatusNoSources, out.Feeds[1].Status)
	assert.NotNil(t, out.Feeds[1].Sources)
	assert.Empty(t, out.Feeds[1].Sources)
}

func TestAggregateDropsSymbolsWithoutPrice(t *testing.T) {
	agg := NewAggregator(nil, nil, decimal.Zero)

	out := agg.Aggregate([]model.FeedDefinition{btcUSDT()}, []model.FetchResult{
		okResult("okx", listing{"BTC-USDT", "BTC", "USDT", ""}),
		okResult("kucoin", listing{"BTC-USDT", "BTC", "USDT", "65000"}),
	})
	require.Len(t, out.Feeds[0].Sources, 1)
	assert.Equal(t, "kucoin", out.Feeds[0].Sources[0].Exchange)
}

func TestAggregateDropsAmbiguousSymbols(t *testing.T) {
	agg := NewAggregator(nil, nil, decimal.Zero)

	out := agg.Aggregate([]model.FeedDefinition{btcUSDT()}, []model.FetchResult{
		okResult("gateio",
			listing{"BTC_USDT", "", "USDT", "65000"},
			listing{"BTCUSDT", "BTC", "USDT", "64999"},
		),
	})
	require.Len(t, out.Feeds[0].Sources, 1)
	assert.Equal(t, "BTCUSDT", out.Feeds[0].Sources[0].NativeSymbol)
}

func TestAggregateQuotesDistinctUnlessAliased(t *testing.T) {
	results := []model.FetchResult{
		okResult("binance", listing{"BTCUSDT", "BTC", "USDT", "65000.12"}),
		okResult("coinbase", listing{"BTC-USD", "BTC", "USD", "64990.50"}),
	}
	btcUSD := model.FeedDefinition{ID: 7, Pair: model.AssetPair{Base: "BTC", Quote: "USD"}, ReportIntervalMs: 1000}

	plain := NewAggregator(nil, nil, decimal.Zero).Aggregate([]model.FeedDefinition{btcUSD}, results)
	require.Len(t, plain.Feeds[0].Sources, 1)
	assert.Equal(t, "coinbase", plain.Feeds[0].Sources[0].Exchange)

	perFeed := btcUSD
	perFeed.AcceptQuotes = []string{"usdt"}
	out := NewAggregator(nil, nil, decimal.Zero).Aggregate([]model.FeedDefinition{perFeed}, results)
	require.Len(t, out.Feeds[0].Sources, 2)
	assert.Equal(t, "binance", out.Feeds[0].Sources[0].Exchange)
	assert.Equal(t, "coinbase", out.Feeds[0].Sources[1].Exchange)

	global := NewAggregator(dsvc.NewNormalizer(dsvc.NormalizerConfig{
		QuoteAliases: map[string][]string{"USD": {"USDT"}},
	}), nil, decimal.Zero)
	out = global.Aggregate([]model.FeedDefinition{btcUSD}, results)
	assert.Len(t, out.Feeds[0].Sources, 2)
}

func TestAggregateExactPairWinsOverAlias(t *testing.T) {
	agg := NewAggregator(dsvc.NewNormalizer(dsvc.NormalizerConfig{
		AssetAliases: map[string]string{"XBT": "BTC"},
		QuoteAliases: map[string][]string{"USD": {"USDT"}},
	}), nil, decimal.Zero)

	out := agg.Aggregate([]model.FeedDefinition{
		{ID: 1, Pair: model.AssetPair{Base: "BTC", Quote: "USD"}, ReportIntervalMs: 1000},
	}, []model.FetchResult{
		okResult("kraken",
			listing{"XBTUSDT", "XBT", "USDT", "65002"},
			listing{"XXBTZUSD", "XBT", "USD", "65001"},
		),
	})
	require.Len(t, out.Feeds[0].Sources, 1)
	assert.Equal(t, "XXBTZUSD", out.Feeds[0].Sources[0].NativeSymbol)
}

func TestAggregateRecordsUnavailableExchanges(t *testing.T) {
	agg := NewAggregator(nil, nil, DefaultOutlierThreshold)

	out := agg.Aggregate([]model.FeedDefinition{btcUSDT()}, []model.FetchResult{
		{Exchange: "zeta", Err: errors.New("boom")},
		{Exchange: "okx", Err: fmt.Errorf("prices: %w", context.DeadlineExceeded)},
		okResult("binance", listing{"BTCUSDT", "BTC", "USDT", "65000.12"}),
		{Exchange: "bybit", Err: kindErr{model.FailureDecode}},
	})

	require.Len(t, out.Unavailable, 3)
	assert.Equal(t, model.ExchangeFailure{Exchange: "bybit", Kind: model.FailureDecode, Reason: "decode failure"}, out.Unavailable[0])
	assert.Equal(t, "okx", out.Unavailable[1].Exchange)
	assert.Equal(t, model.FailureTimeout, out.Unavailable[1].Kind)
	assert.Equal(t, "zeta", out.Unavailable[2].Exchange)
	assert.Equal(t, model.FailureFetch, out.Unavailable[2].Kind)
}

func TestAggregateMovesOutliers(t *testing.T) {
	agg := NewAggregator(nil, nil, DefaultOutlierThreshold)

	out := agg.Aggregate([]model.FeedDefinition{btcUSDT()}, []model.FetchResult{
		okResult("binance", listing{"BTCUSDT", "BTC", "USDT", "65000"}),
		okResult("bybit", listing{"BTCUSDT", "BTC", "USDT", "65010"}),
		okResult("okx", listing{"BTC-USDT", "BTC", "USDT", "64990"}),
		okResult("mexc", listing{"BTCUSDT", "BTC", "USDT", "1"}),
	})

	feed := out.Feeds[0]
	require.Len(t, feed.Outliers, 1)
	assert.Equal(t, "mexc", feed.Outliers[0].Exchange)
	assert.Equal(t, []string{"binance", "bybit", "okx"}, exchanges(feed.Sources))
}

func TestAggregateUnlistedExchangesSortLast(t *testing.T) {
	agg := NewAggregator(nil, []string{"okx", "binance"}, decimal.Zero)

	out := agg.Aggregate([]model.FeedDefinition{btcUSDT()}, []model.FetchResult{
		okResult("zz", listing{"BTCUSDT", "BTC", "USDT", "1"}),
		okResult("binance", listing{"BTCUSDT", "BTC", "USDT", "1"}),
		okResult("aa", listing{"BTCUSDT", "BTC", "USDT", "1"}),
		okResult("okx", listing{"BTC-USDT", "BTC", "USDT", "1"}),
	})
	assert.Equal(t, []string{"okx", "binance", "aa", "zz"}, exchanges(out.Feeds[0].Sources))
}

func TestAggregateIsIdempotent(t *testing.T) {
	agg := NewAggregator(nil, nil, DefaultOutlierThreshold)
	registry := []model.FeedDefinition{btcUSDT()}
	a := []model.FetchResult{
		okResult("binance", listing{"BTCUSDT", "BTC", "USDT", "65000.12"}),
		okResult("bybit", listing{"BTCUSDT", "BTC", "USDT", "65001.00"}),
		{Exchange: "okx", Err: errors.New("dial tcp: refused")},
	}
	b := []model.FetchResult{a[2], a[1], a[0]}

	first, err := EncodeConfig(agg.Aggregate(registry, a))
	require.NoError(t, err)
	second, err := EncodeConfig(agg.Aggregate(registry, b))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestAggregateZeroPricesLeaveFeedWithoutSources(t *testing.T) {
	agg := NewAggregator(nil, nil, DefaultOutlierThreshold)

	out := agg.Aggregate([]model.FeedDefinition{btcUSDT()}, []model.FetchResult{
		okResult("binance", listing{"BTCUSDT", "BTC", "USDT", "0"}),
		okResult("bybit", listing{"BTCUSDT", "BTC", "USDT", "0"}),
	})

	feed := out.Feeds[0]
	assert.Equal(t, model.FeedStatusNoSources, feed.Status)
	assert.Empty(t, feed.Sources)
	assert.Equal(t, []string{"binance", "bybit"}, exchanges(feed.Outliers))
}
