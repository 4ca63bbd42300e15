package bitget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSymbols(t *testing.T) {
	body := `{"code":"00000","msg":"success","requestTime":1714564800000,"data":[
		{"symbol":"BTCUSDT","baseCoin":"BTC","quoteCoin":"USDT","status":"online"},
		{"symbol":"HALTUSDT","baseCoin":"HALT","quoteCoin":"USDT","status":"halt"}
	]}`
	syms, err := DecodeSymbols([]byte(body))
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "bitget", syms[0].Exchange)
}

func TestDecodeFailsClosed(t *testing.T) {
	_, err := DecodeSymbols([]byte(`{"code":"40034","msg":"param error","data":[]}`))
	assert.Error(t, err)
	_, err = DecodePrices([]byte(`{"code":"00000","data":[{"symbol":"BTCUSDT","lastPr":null}]}`), time.Time{})
	assert.Error(t, err)
	_, err = DecodePrices([]byte(`{"code":"00000","data":null}`), time.Time{})
	assert.Error(t, err)
}

func TestDecodePrices(t *testing.T) {
	quotes, err := DecodePrices([]byte(`{"code":"00000","requestTime":1714564800000,"data":[{"symbol":"BTCUSDT","lastPr":"65000.5"}]}`), time.Time{})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "65000.5", quotes[0].Price.String())
	assert.Equal(t, time.UnixMilli(1714564800000).UTC(), quotes[0].ObservedAt)
}
