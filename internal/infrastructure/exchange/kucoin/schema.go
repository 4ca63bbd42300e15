package kucoin

import (
	"time"

	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
)

const (
	Name = "kucoin"

	codeOK = "200000"
)

// GET /api/v2/symbols
// {"code":"200000","data":[{"symbol":"BTC-USDT","baseCurrency":"BTC","quoteCurrency":"USDT","enableTrading":true}]}
type symbolsResponse struct {
	Code string   `json:"code" validate:"required"`
	Msg  string   `json:"msg"`
	Data []symbol `json:"data" validate:"required,dive"`
}

type symbol struct {
	Symbol        string `json:"symbol" validate:"required"`
	BaseCurrency  string `json:"baseCurrency" validate:"required"`
	QuoteCurrency string `json:"quoteCurrency" validate:"required"`
	EnableTrading *bool  `json:"enableTrading" validate:"required"`
}

// GET /api/v1/market/allTickers
// {"code":"200000","data":{"time":1714564800000,"ticker":[{"symbol":"BTC-USDT","last":"65000.2"}]}}
// last is null for pairs without trades
type tickersResponse struct {
	Code string      `json:"code" validate:"required"`
	Msg  string      `json:"msg"`
	Data tickersData `json:"data"`
}

type tickersData struct {
	Time   int64    `json:"time"`
	Ticker []ticker `json:"ticker" validate:"required,dive"`
}

type ticker struct {
	Symbol string           `json:"symbol" validate:"required"`
	Last   *exchange.Number `json:"last"`
}

func DecodeSymbols(body []byte) ([]model.ExchangeSymbolInfo, error) {
	var resp symbolsResponse
	if err := exchange.DecodeJSON(Name, exchange.EndpointSymbols, body, &resp); err != nil {
		return nil, err
	}
	if resp.Code != codeOK {
		return nil, exchange.Decodef(Name, exchange.EndpointSymbols, "code %s: %s", resp.Code, resp.Msg)
	}
	out := make([]model.ExchangeSymbolInfo, 0, len(resp.Data))
	for _, s := range resp.Data {
		if !*s.EnableTrading {
			continue
		}
		out = append(out, model.ExchangeSymbolInfo{
			Exchange:     Name,
			NativeSymbol: s.Symbol,
			Base:         s.BaseCurrency,
			Quote:        s.QuoteCurrency,
		})
	}
	return out, nil
}

func DecodePrices(body []byte, observedAt time.Time) ([]model.ExchangePriceQuote, error) {
	var resp tickersResponse
	if err := exchange.DecodeJSON(Name, exchange.EndpointPrices, body, &resp); err != nil {
		return nil, err
	}
	if resp.Code != codeOK {
		return nil, exchange.Decodef(Name, exchange.EndpointPrices, "code %s: %s", resp.Code, resp.Msg)
	}
	if resp.Data.Time > 0 {
		observedAt = time.UnixMilli(resp.Data.Time).UTC()
	}
	out := make([]model.ExchangePriceQuote, 0, len(resp.Data.Ticker))
	for _, t := range resp.Data.Ticker {
		if t.Last == nil {
			continue
		}
		if q, ok := exchange.NewQuote(Name, t.Symbol, t.Last, observedAt); ok {
			out = append(out, q)
		}
	}
	return out, nil
}
