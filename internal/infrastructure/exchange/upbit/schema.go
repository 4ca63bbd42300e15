package upbit

import (
	"time"

	"github.com/rs/zerolog/log"

	"feedgen/internal/domain/model"
	dsvc "feedgen/internal/domain/service"
	"feedgen/internal/infrastructure/exchange"
)

const (
	Name = "upbit"

	// ticker 接口每次最多请求的 market 数
	MarketsPerRequest = 100
)

// GET /v1/market/all
// [{"market":"KRW-BTC","korean_name":"비트코인","english_name":"Bitcoin"}]
// market 为 QUOTE-BASE
type market struct {
	Market string `json:"market" validate:"required"`
}

// GET /v1/ticker?markets=KRW-BTC,USDT-ETH
// [{"market":"KRW-BTC","trade_price":95000000.0,"timestamp":1714564800000}]
type ticker struct {
	Market     string           `json:"market" validate:"required"`
	TradePrice *exchange.Number `json:"trade_price" validate:"required"`
	Timestamp  int64            `json:"timestamp"`
}

func DecodeSymbols(body []byte) ([]model.ExchangeSymbolInfo, error) {
	rows, err := exchange.DecodeArray[market](Name, exchange.EndpointSymbols, body)
	if err != nil {
		return nil, err
	}
	out := make([]model.ExchangeSymbolInfo, 0, len(rows))
	for _, m := range rows {
		quote, base, err := dsvc.SplitSeparated(m.Market, "-")
		if err != nil {
			log.Debug().Str("exchange", Name).Str("market", m.Market).Msg("unrecognised market id, skipped")
			continue
		}
		out = append(out, model.ExchangeSymbolInfo{
			Exchange:     Name,
			NativeSymbol: m.Market,
			Base:         base,
			Quote:        quote,
		})
	}
	return out, nil
}

// DecodePrices uses the ticker timestamp when present, otherwise the fetch time
func DecodePrices(body []byte, observedAt time.Time) ([]model.ExchangePriceQuote, error) {
	rows, err := exchange.DecodeArray[ticker](Name, exchange.EndpointPrices, body)
	if err != nil {
		return nil, err
	}
	out := make([]model.ExchangePriceQuote, 0, len(rows))
	for _, t := range rows {
		at := observedAt
		if t.Timestamp > 0 {
			at = time.UnixMilli(t.Timestamp).UTC()
		}
		if q, ok := exchange.NewQuote(Name, t.Market, t.TradePrice, at); ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// Chunk splits market ids into request-sized groups
func Chunk(markets []string, size int) [][]string {
	if size <= 0 {
		size = MarketsPerRequest
	}
	var out [][]string
	for len(markets) > size {
		out = append(out, markets[:size:size])
		markets = markets[size:]
	}
	if len(markets) > 0 {
		out = append(out, markets)
	}
	return out
}
