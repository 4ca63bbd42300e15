package bitfinex

import (
	"bytes"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"feedgen/internal/domain/model"
	dsvc "feedgen/internal/domain/service"
	"feedgen/internal/infrastructure/exchange"
)

const (
	Name = "bitfinex"

	// 交易对 ticker 数组中 LAST_PRICE 的下标
	// [SYMBOL, BID, BID_SIZE, ASK, ASK_SIZE, DAILY_CHANGE, DAILY_CHANGE_RELATIVE, LAST_PRICE, VOLUME, HIGH, LOW]
	lastPriceIndex = 7
	tradingPrefix  = "t"
	fundingPrefix  = "f"
)

// DecodeSymbols GET /v2/conf/pub:list:pair:exchange
// [["BTCUSD","ETHUSD","TESTBTC:TESTUSD",...]]
// 无分隔符时仅接受 3+3 的六位符号，其余视为歧义
func DecodeSymbols(body []byte) ([]model.ExchangeSymbolInfo, error) {
	outer, err := exchange.DecodeArray[[]string](Name, exchange.EndpointSymbols, body)
	if err != nil {
		return nil, err
	}
	if len(outer) != 1 {
		return nil, exchange.Decodef(Name, exchange.EndpointSymbols, "expected one pair list, got %d", len(outer))
	}

	out := make([]model.ExchangeSymbolInfo, 0, len(outer[0]))
	for _, pair := range outer[0] {
		base, quote, ok := splitPair(pair)
		if !ok {
			log.Debug().Str("exchange", Name).Str("pair", pair).Msg("ambiguous pair, skipped")
			continue
		}
		out = append(out, model.ExchangeSymbolInfo{
			Exchange:     Name,
			NativeSymbol: tradingPrefix + pair,
			Base:         base,
			Quote:        quote,
		})
	}
	return out, nil
}

func splitPair(pair string) (string, string, bool) {
	if strings.Contains(pair, ":") {
		base, quote, err := dsvc.SplitSeparated(pair, ":")
		return base, quote, err == nil
	}
	if len(pair) == 6 {
		return pair[:3], pair[3:], true
	}
	return "", "", false
}

// DecodePrices GET /v2/tickers?symbols=ALL
// funding 条目 (f 前缀) 字段布局不同，直接跳过；交易对条目格式错误则整体失败
func DecodePrices(body []byte, observedAt time.Time) ([]model.ExchangePriceQuote, error) {
	rows, err := exchange.DecodeArray[[]json.RawMessage](Name, exchange.EndpointPrices, body)
	if err != nil {
		return nil, err
	}

	out := make([]model.ExchangePriceQuote, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			return nil, exchange.Decodef(Name, exchange.EndpointPrices, "row %d is empty", i)
		}
		var symbol string
		if err := json.Unmarshal(row[0], &symbol); err != nil {
			return nil, exchange.Decodef(Name, exchange.EndpointPrices, "row %d symbol: %v", i, err)
		}
		if strings.HasPrefix(symbol, fundingPrefix) {
			continue
		}
		if !strings.HasPrefix(symbol, tradingPrefix) || len(row) <= lastPriceIndex {
			return nil, exchange.Decodef(Name, exchange.EndpointPrices, "malformed ticker row %q", symbol)
		}
		raw := row[lastPriceIndex]
		if string(bytes.TrimSpace(raw)) == "null" {
			return nil, exchange.Decodef(Name, exchange.EndpointPrices, "ticker %s has no last price", symbol)
		}
		var last exchange.Number
		if err := json.Unmarshal(raw, &last); err != nil {
			return nil, exchange.Decodef(Name, exchange.EndpointPrices, "ticker %s last price: %v", symbol, err)
		}
		if q, ok := exchange.NewQuote(Name, symbol, &last, observedAt); ok {
			out = append(out, q)
		}
	}
	return out, nil
}
