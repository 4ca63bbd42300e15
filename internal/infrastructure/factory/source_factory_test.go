package factory

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedgen/internal/application/usecase/generate"
	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/config"
	"feedgen/internal/infrastructure/exchange/exchangetest"
)

func venueServer(t *testing.T) *exchangetest.Server {
	return exchangetest.NewServer(t, map[string]exchangetest.Response{
		"/api/v3/exchangeInfo": exchangetest.OK(`{"symbols":[
			{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT"},
			{"symbol":"ETHBTC","status":"TRADING","baseAsset":"ETH","quoteAsset":"BTC"}
		]}`),
		"/api/v3/ticker/price": exchangetest.OK(`[
			{"symbol":"BTCUSDT","price":"65000.12000000"},
			{"symbol":"ETHBTC","price":"0.05"}
		]`),
		"/v5/market/instruments-info": exchangetest.OK(`{"retCode":0,"retMsg":"OK","result":{"list":[
			{"symbol":"BTCUSDT","baseCoin":"BTC","quoteCoin":"USDT","status":"Trading"}
		]},"time":1714564800000}`),
		"/v5/market/tickers": exchangetest.OK(`{"retCode":0,"retMsg":"OK","result":{"list":[
			{"symbol":"BTCUSDT","lastPrice":"65001.00"}
		]},"time":1714564800000}`),
		"/api/v5/public/instruments": {Status: http.StatusServiceUnavailable, Body: "maintenance"},
		"/api/v5/market/tickers":     {Status: http.StatusServiceUnavailable, Body: "maintenance"},
	})
}

func testConfig(t *testing.T, base string) *config.Config {
	cfg, err := config.Parse(fmt.Sprintf(`
[app]
exchange_timeout = "2s"

[exchanges.binance]
enabled = true
symbols_url = "%[1]s/api/v3/exchangeInfo"
prices_url = "%[1]s/api/v3/ticker/price"
rate_limit_rps = 50

[exchanges.bybit]
enabled = true
symbols_url = "%[1]s/v5/market/instruments-info?category=spot"
prices_url = "%[1]s/v5/market/tickers?category=spot"

[exchanges.okx]
enabled = true
timeout = "1s"
symbols_url = "%[1]s/api/v5/public/instruments?instType=SPOT"
prices_url = "%[1]s/api/v5/market/tickers?instType=SPOT"

[exchanges.nosuchvenue]
enabled = true
`, base))
	require.NoError(t, err)
	return cfg
}

func TestNewSourcesSkipsUnknownVenues(t *testing.T) {
	srv := venueServer(t)
	sources, err := NewSources(testConfig(t, srv.URL))
	require.NoError(t, err)

	names := make([]string, 0, len(sources.Sources))
	for _, s := range sources.Sources {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"binance", "bybit", "okx"}, names)
	assert.Equal(t, time.Second, sources.Timeouts["okx"])
	assert.Equal(t, 2*time.Second, sources.Timeouts["binance"])
}

func TestNewSourcesNothingRegistered(t *testing.T) {
	cfg, err := config.Parse(`
[exchanges.nosuchvenue]
enabled = true
`)
	require.NoError(t, err)
	_, err = NewSources(cfg)
	assert.ErrorIs(t, err, ErrNoSourcesEnabled)
}

func TestGenerateAgainstVenueFixtures(t *testing.T) {
	srv := venueServer(t)
	sources, err := NewSources(testConfig(t, srv.URL))
	require.NoError(t, err)

	svc := generate.NewService(generate.ServiceDeps{
		Sources:  sources.Sources,
		Timeouts: sources.Timeouts,
	})
	res, err := svc.Run(context.Background(), []model.FeedDefinition{{
		ID: 1, Description: "BTC / USDT", Pair: model.AssetPair{Base: "BTC", Quote: "USDT"},
		Decimals: 8, ReportIntervalMs: 60000,
	}})
	require.NoError(t, err)

	want := `{
  "version": 1,
  "feeds": [
    {
      "id": 1,
      "description": "BTC / USDT",
      "pair": {
        "base": "BTC",
        "quote": "USDT"
      },
      "decimals": 8,
      "report_interval_ms": 60000,
      "status": "ok",
      "sources": [
        {
          "exchange": "binance",
          "native_symbol": "BTCUSDT",
          "price": "65000.12"
        },
        {
          "exchange": "bybit",
          "native_symbol": "BTCUSDT",
          "price": "65001"
        }
      ],
      "outliers": []
    }
  ],
  "unavailable_exchanges": [
    {
      "exchange": "okx",
      "kind": "fetch",
      "reason": "%s"
    }
  ]
}
`
	require.Len(t, res.Config.Unavailable, 1)
	assert.Equal(t, fmt.Sprintf(want, res.Config.Unavailable[0].Reason), string(res.Doc))
	assert.Equal(t, 1, srv.Hits("/api/v3/exchangeInfo"))
}
