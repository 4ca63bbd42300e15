package mexc

import (
	"time"

	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
)

const Name = "mexc"

// GET /api/v3/exchangeInfo, Binance-compatible envelope
// {"symbols":[{"symbol":"BTCUSDT","status":"1","baseAsset":"BTC","quoteAsset":"USDT","isSpotTradingAllowed":true}]}
type exchangeInfoResponse struct {
	Symbols []symbolInfo `json:"symbols" validate:"required,dive"`
}

type symbolInfo struct {
	Symbol               string `json:"symbol" validate:"required"`
	Status               string `json:"status" validate:"required"`
	BaseAsset            string `json:"baseAsset" validate:"required"`
	QuoteAsset           string `json:"quoteAsset" validate:"required"`
	IsSpotTradingAllowed *bool  `json:"isSpotTradingAllowed" validate:"required"`
}

// GET /api/v3/ticker/price
// [{"symbol":"BTCUSDT","price":"65000.55"}]
type tickerPrice struct {
	Symbol string           `json:"symbol" validate:"required"`
	Price  *exchange.Number `json:"price" validate:"required"`
}

// status "1" on the current API, "ENABLED" on older deployments
func online(status string) bool {
	return status == "1" || status == "ENABLED"
}

func DecodeSymbols(body []byte) ([]model.ExchangeSymbolInfo, error) {
	var resp exchangeInfoResponse
	if err := exchange.DecodeJSON(Name, exchange.EndpointSymbols, body, &resp); err != nil {
		return nil, err
	}
	out := make([]model.ExchangeSymbolInfo, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if !online(s.Status) || !*s.IsSpotTradingAllowed {
			continue
		}
		out = append(out, model.ExchangeSymbolInfo{
			Exchange:     Name,
			NativeSymbol: s.Symbol,
			Base:         s.BaseAsset,
			Quote:        s.QuoteAsset,
		})
	}
	return out, nil
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
