package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedgen/internal/domain/model"
)

func sources(prices map[string]string, order ...string) []model.FeedSource {
	out := make([]model.FeedSource, 0, len(order))
	for _, ex := range order {
		out = append(out, model.FeedSource{Exchange: ex, NativeSymbol: "X", Price: decimal.RequireFromString(prices[ex])})
	}
	return out
}

var tenPercent = decimal.RequireFromString("0.10")

func TestSplitOutliersNoneWithinThreshold(t *testing.T) {
	in := sources(map[string]string{
		"binance": "0.19244", "bitget": "0.1924", "bybit": "0.19243", "coinbase": "0.19226", "okx": "0.1924",
	}, "binance", "bitget", "bybit", "coinbase", "okx")

	kept, outliers := SplitOutliers(in, tenPercent)
	assert.Len(t, kept, 5)
	assert.Empty(t, outliers)
}

func TestSplitOutliersZeroPrice(t *testing.T) {
	in := sources(map[string]string{
		"binance": "0", "bitget": "0.01014", "bybit": "0.01009", "gateio": "0.0101", "kucoin": "0.01012", "mexc": "0.010165",
	}, "binance", "bitget", "bybit", "gateio", "kucoin", "mexc")

	kept, outliers := SplitOutliers(in, tenPercent)
	require.Len(t, outliers, 1)
	assert.Equal(t, "binance", outliers[0].Exchange)
	assert.Len(t, kept, 5)
	assert.Equal(t, "bitget", kept[0].Exchange)
}

func TestSplitOutliersBoundaryIsKept(t *testing.T) {
	// median 100, 110 deviates exactly 10%
	in := sources(map[string]string{"a": "90", "b": "100", "c": "110"}, "a", "b", "c")
	kept, outliers := SplitOutliers(in, tenPercent)
	assert.Len(t, kept, 3)
	assert.Empty(t, outliers)
}

func TestSplitOutliersDisabled(t *testing.T) {
	in := sources(map[string]string{"a": "1", "b": "100", "c": "100"}, "a", "b", "c")

	kept, outliers := SplitOutliers(in, decimal.Zero)
	assert.Len(t, kept, 3)
	assert.Empty(t, outliers)

	kept, outliers = SplitOutliers(in[:1], tenPercent)
	assert.Len(t, kept, 1)
	assert.Empty(t, outliers)
}

func TestSplitOutliersAllZero(t *testing.T) {
	in := sources(map[string]string{"binance": "0", "bitget": "0", "bybit": "0"}, "binance", "bitget", "bybit")

	kept, outliers := SplitOutliers(in, tenPercent)
	assert.Empty(t, kept)
	assert.NotNil(t, kept)
	assert.Equal(t, []string{"binance", "bitget", "bybit"}, names(outliers))
}

func TestSplitOutliersLargeDifference(t *testing.T) {
	in := sources(map[string]string{"binance": "30000", "bitget": "330000", "bybit": "31000"}, "binance", "bitget", "bybit")

	kept, outliers := SplitOutliers(in, tenPercent)
	assert.Equal(t, []string{"bitget"}, names(outliers))
	assert.Equal(t, []string{"binance", "bybit"}, names(kept))
}

func TestSplitOutliersTwoSources(t *testing.T) {
	// median 1.05, both within 10%
	in := sources(map[string]string{"binance": "1", "bitget": "1.1"}, "binance", "bitget")
	kept, outliers := SplitOutliers(in, tenPercent)
	assert.Len(t, kept, 2)
	assert.Empty(t, outliers)

	in = sources(map[string]string{"binance": "30000", "bitget": "330000"}, "binance", "bitget")
	kept, outliers = SplitOutliers(in, tenPercent)
	assert.Empty(t, kept)
	assert.Equal(t, []string{"binance", "bitget"}, names(outliers))
}

func names(in []model.FeedSource) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, s.Exchange)
	}
	return out
}

func TestMedianEven(t *testing.T) {
	m := Median([]decimal.Decimal{
		decimal.RequireFromString("4"), decimal.RequireFromString("1"),
		decimal.RequireFromString("3"), decimal.RequireFromString("2"),
	})
	assert.True(t, m.Equal(decimal.RequireFromString("2.5")), m.String())
}
