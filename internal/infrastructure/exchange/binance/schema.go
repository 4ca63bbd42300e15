package binance

import (
	"time"

	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
)

const (
	Name   = "binance"
	NameUS = "binanceus"

	statusTrading = "TRADING"
)

// GET /api/v3/exchangeInfo
// {"symbols":[{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT",...}]}
type exchangeInfoResponse struct {
	Symbols []symbolInfo `json:"symbols" validate:"required,dive"`
}

type symbolInfo struct {
	Symbol     string `json:"symbol" validate:"required"`
	Status     string `json:"status" validate:"required"`
	BaseAsset  string `json:"baseAsset" validate:"required"`
	QuoteAsset string `json:"quoteAsset" validate:"required"`
}

// GET /api/v3/ticker/price
// [{"symbol":"BTCUSDT","price":"65000.12000000"}]
type tickerPrice struct {
	Symbol string           `json:"symbol" validate:"required"`
	Price  *exchange.Number `json:"price" validate:"required"`
}

// GET /api/v3/ticker/24hr (binance.us exposes lastPrice only here)
// [{"symbol":"BTCUSDT","lastPrice":"65000.12",...}]
type ticker24h struct {
	Symbol    string           `json:"symbol" validate:"required"`
	LastPrice *exchange.Number `json:"lastPrice" validate:"required"`
}

func DecodeSymbols(body []byte) ([]model.ExchangeSymbolInfo, error) {
	return decodeSymbols(Name, body)
}

func DecodePrices(body []byte, observedAt time.Time) ([]model.ExchangePriceQuote, error) {
	rows, err := exchange.DecodeArray[tickerPrice](Name, exchange.EndpointPrices, body)
	if err != nil {
		return nil, err
	}
	out := make([]model.ExchangePriceQuote, 0, len(rows))
	for _, r := range rows {
		if q, ok := exchange.NewQuote(Name, r.Symbol, r.Price, observedAt); ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func DecodeUSSymbols(body []byte) ([]model.ExchangeSymbolInfo, error) {
	return decodeSymbols(NameUS, body)
}

func DecodeUSPrices(body []byte, observedAt time.Time) ([]model.ExchangePriceQuote, error) {
	rows, err := exchange.DecodeArray[ticker24h](NameUS, exchange.EndpointPrices, body)
	if err != nil {
		return nil, err
	}
	out := make([]model.ExchangePriceQuote, 0, len(rows))
	for _, r := range rows {
		if q, ok := exchange.NewQuote(NameUS, r.Symbol, r.LastPrice, observedAt); ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func decodeSymbols(name string, body []byte) ([]model.ExchangeSymbolInfo, error) {
	var resp exchangeInfoResponse
	if err := exchange.DecodeJSON(name, exchange.EndpointSymbols, body, &resp); err != nil {
		return nil, err
	}
	out := make([]model.ExchangeSymbolInfo, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if s.Status != statusTrading {
			continue
		}
		out = append(out, model.ExchangeSymbolInfo{
			Exchange:     name,
			NativeSymbol: s.Symbol,
			Base:         s.BaseAsset,
			Quote:        s.QuoteAsset,
		})
	}
	return out, nil
}
