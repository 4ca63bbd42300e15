package gateio

import (
	"time"

	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
)

const (
	Name = "gateio"

	statusTradable = "tradable"
)

// GET /api/v4/spot/currency_pairs, flat array
// [{"id":"BTC_USDT","base":"BTC","quote":"USDT","trade_status":"tradable"}]
type currencyPair struct {
	ID          string `json:"id" validate:"required"`
	Base        string `json:"base" validate:"required"`
	Quote       string `json:"quote" validate:"required"`
	TradeStatus string `json:"trade_status" validate:"required"`
}

// GET /api/v4/spot/tickers, flat array
// [{"currency_pair":"BTC_USDT","last":"65000.3",...}]
type ticker struct {
	CurrencyPair string           `json:"currency_pair" validate:"required"`
	Last         *exchange.Number `json:"last" validate:"required"`
}

func DecodeSymbols(body []byte) ([]model.ExchangeSymbolInfo, error) {
	pairs, err := exchange.DecodeArray[currencyPair](Name, exchange.EndpointSymbols, body)
	if err != nil {
		return nil, err
	}
	out := make([]model.ExchangeSymbolInfo, 0, len(pairs))
	for _, p := range pairs {
		if p.TradeStatus != statusTradable {
			continue
		}
		out = append(out, model.ExchangeSymbolInfo{
			Exchange:     Name,
			NativeSymbol: p.ID,
			Base:         p.Base,
			Quote:        p.Quote,
		})
	}
	return out, nil
}

func DecodePrices(body []byte, observedAt time.Time) ([]model.ExchangePriceQuote, error) {
	tickers, err := exchange.DecodeArray[ticker](Name, exchange.EndpointPrices, body)
	if err != nil {
		return nil, err
	}
	out := make([]model.ExchangePriceQuote, 0, len(tickers))
	for _, t := range tickers {
		if q, ok := exchange.NewQuote(Name, t.CurrencyPair, t.Last, observedAt); ok {
			out = append(out, q)
		}
	}
	return out, nil
}
