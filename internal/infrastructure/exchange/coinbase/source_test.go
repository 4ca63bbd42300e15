package coinbase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
	"feedgen/internal/infrastructure/exchange/exchangetest"
	"feedgen/internal/infrastructure/httpclient"
)

const products = `[
	{"id":"BTC-USD","base_currency":"BTC","quote_currency":"USD","status":"online","trading_disabled":false},
	{"id":"ETH-USD","base_currency":"ETH","quote_currency":"USD","status":"online","trading_disabled":false},
	{"id":"DOGE-USD","base_currency":"DOGE","quote_currency":"USD","status":"online","trading_disabled":false},
	{"id":"OFF-USD","base_currency":"OFF","quote_currency":"USD","status":"delisted","trading_disabled":true}
]`

func newSource(srv *exchangetest.Server) *Source {
	return NewSource(exchange.Options{
		Endpoints: exchange.Endpoints{
			Symbols: srv.URL + "/products",
			Prices:  srv.URL + "/products/{symbol}/ticker",
		},
		Transport:   httpclient.New(),
		Concurrency: 2,
	})
}

func TestFetchQueriesOnlyFilteredProducts(t *testing.T) {
	srv := exchangetest.NewServer(t, map[string]exchangetest.Response{
		"/products":               exchangetest.OK(products),
		"/products/BTC-USD/ticker": exchangetest.OK(`{"price":"64990.50","time":"2024-05-01T12:00:00.000000Z"}`),
		"/products/ETH-USD/ticker": exchangetest.OK(`{"price":"3000.10","time":"2024-05-01T12:00:00Z"}`),
	})

	assets, err := newSource(srv).Fetch(context.Background(), func(info model.ExchangeSymbolInfo) bool {
		return info.Base != "DOGE"
	})
	require.NoError(t, err)
	assert.Len(t, assets.Symbols, 2)
	require.Len(t, assets.Prices, 2)
	assert.Equal(t, 0, srv.Hits("/products/DOGE-USD/ticker"))
	assert.Equal(t, 0, srv.Hits("/products/OFF-USD/ticker"))
	for _, q := range assets.Prices {
		assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), q.ObservedAt)
	}
}

func TestFetchDropsFailedProducts(t *testing.T) {
	srv := exchangetest.NewServer(t, map[string]exchangetest.Response{
		"/products":                exchangetest.OK(products),
		"/products/BTC-USD/ticker":  exchangetest.OK(`{"price":"64990.50"}`),
		"/products/ETH-USD/ticker":  {Status: 500},
		"/products/DOGE-USD/ticker": exchangetest.OK(`{"message":"NotFound"}`),
	})

	assets, err := newSource(srv).Fetch(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, assets.Prices, 1)
	assert.Equal(t, "BTC-USD", assets.Prices[0].NativeSymbol)
}

func TestFetchFailsWhenEveryProductFails(t *testing.T) {
	srv := exchangetest.NewServer(t, map[string]exchangetest.Response{
		"/products": exchangetest.OK(products),
	})

	_, err := newSource(srv).Fetch(context.Background(), nil)
	var fe *exchange.FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestDecodeTicker(t *testing.T) {
	q, ok, err := DecodeTicker("BTC-USD", []byte(`{"price":"abc"}`), time.Time{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, q.NativeSymbol)

	_, _, err = DecodeTicker("BTC-USD", []byte(`{"bid":"1"}`), time.Time{})
	assert.Error(t, err)
}
