package mexc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSymbols(t *testing.T) {
	syms, err := DecodeSymbols([]byte(`{"timezone":"CST","symbols":[
		{"symbol":"BTCUSDT","status":"1","baseAsset":"BTC","quoteAsset":"USDT","isSpotTradingAllowed":true},
		{"symbol":"ETHUSDT","status":"ENABLED","baseAsset":"ETH","quoteAsset":"USDT","isSpotTradingAllowed":true},
		{"symbol":"OFFUSDT","status":"1","baseAsset":"OFF","quoteAsset":"USDT","isSpotTradingAllowed":false},
		{"symbol":"PAUSEUSDT","status":"2","baseAsset":"PAUSE","quoteAsset":"USDT","isSpotTradingAllowed":true}
	]}`))
	require.NoError(t, err)
	require.Len(t, syms, 2)
	assert.Equal(t, "BTCUSDT", syms[0].NativeSymbol)
	assert.Equal(t, "ETHUSDT", syms[1].NativeSymbol)
}

func TestDecodeSymbolsRequiresTradingFlag(t *testing.T) {
	_, err := DecodeSymbols([]byte(`{"symbols":[{"symbol":"BTCUSDT","status":"1","baseAsset":"BTC","quoteAsset":"USDT"}]}`))
	assert.Error(t, err)
	_, err = DecodeSymbols([]byte(`{"symbols":[{"symbol":"BTCUSDT","status":"1","baseAsset":"BTC","quoteAsset":"USDT","isSpotTradingAllowed":"yes"}]}`))
	assert.Error(t, err)
}

func TestDecodePrices(t *testing.T) {
	quotes, err := DecodePrices([]byte(`[{"symbol":"BTCUSDT","price":"65000.55"}]`), time.Time{})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "mexc", quotes[0].Exchange)
}
