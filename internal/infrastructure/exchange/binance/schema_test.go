package binance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedgen/internal/infrastructure/exchange"
)

var at = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestDecodeSymbols(t *testing.T) {
	body := `{"timezone":"UTC","symbols":[
		{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT","filters":[]},
		{"symbol":"LUNAUSDT","status":"BREAK","baseAsset":"LUNA","quoteAsset":"USDT"}
	]}`
	syms, err := DecodeSymbols([]byte(body))
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "binance", syms[0].Exchange)
	assert.Equal(t, "BTCUSDT", syms[0].NativeSymbol)
	assert.Equal(t, "BTC", syms[0].Base)
	assert.Equal(t, "USDT", syms[0].Quote)
}

func TestDecodeSymbolsFailsClosed(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"symbols":[{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC"}]}`,
		`{"symbols":[{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":1}]}`,
		`{"symbols":{}}`,
	} {
		syms, err := DecodeSymbols([]byte(body))
		assert.Nil(t, syms, body)
		var de *exchange.DecodeError
		assert.True(t, errors.As(err, &de), body)
	}
}

func TestDecodePrices(t *testing.T) {
	quotes, err := DecodePrices([]byte(`[{"symbol":"BTCUSDT","price":"65000.12000000"},{"symbol":"BAD","price":"n/a"}]`), at)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "65000.12", quotes[0].Price.String())
	assert.Equal(t, at, quotes[0].ObservedAt)

	_, err = DecodePrices([]byte(`[{"symbol":"BTCUSDT"}]`), at)
	assert.Error(t, err)
}

func TestDecodeUSPrices(t *testing.T) {
	quotes, err := DecodeUSPrices([]byte(`[{"symbol":"BTCUSD","lastPrice":"64990.5","volume":"1"}]`), at)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "binanceus", quotes[0].Exchange)

	_, err = DecodeUSPrices([]byte(`[{"symbol":"BTCUSD","price":"1"}]`), at)
	assert.Error(t, err)
}
