package bybit

import (
	"time"

	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
)

const (
	Name = "bybit"

	statusTrading = "Trading"
)

// envelope {"retCode":0,"retMsg":"OK","result":{...},"time":1714564800000}
type envelope[T any] struct {
	RetCode *int   `json:"retCode" validate:"required"`
	RetMsg  string `json:"retMsg"`
	Result  T      `json:"result"`
	Time    int64  `json:"time"`
}

// GET /v5/market/instruments-info?category=spot
// result.list[]: {"symbol":"BTCUSDT","baseCoin":"BTC","quoteCoin":"USDT","status":"Trading"}
type instrumentsResult struct {
	List []instrument `json:"list" validate:"required,dive"`
}

type instrument struct {
	Symbol    string `json:"symbol" validate:"required"`
	BaseCoin  string `json:"baseCoin" validate:"required"`
	QuoteCoin string `json:"quoteCoin" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// GET /v5/market/tickers?category=spot
// result.list[]: {"symbol":"BTCUSDT","lastPrice":"65001.00",...}
type tickersResult struct {
	List []ticker `json:"list" validate:"required,dive"`
}

type ticker struct {
	Symbol    string           `json:"symbol" validate:"required"`
	LastPrice *exchange.Number `json:"lastPrice" validate:"required"`
}

func DecodeSymbols(body []byte) ([]model.ExchangeSymbolInfo, error) {
	var resp envelope[instrumentsResult]
	if err := decode(exchange.EndpointSymbols, body, &resp); err != nil {
		return nil, err
	}
	out := make([]model.ExchangeSymbolInfo, 0, len(resp.Result.List))
	for _, it := range resp.Result.List {
		if it.Status != statusTrading {
			continue
		}
		out = append(out, model.ExchangeSymbolInfo{
			Exchange:     Name,
			NativeSymbol: it.Symbol,
			Base:         it.BaseCoin,
			Quote:        it.QuoteCoin,
		})
	}
	return out, nil
}

// DecodePrices uses the envelope time when present
func DecodePrices(body []byte, observedAt time.Time) ([]model.ExchangePriceQuote, error) {
	var resp envelope[tickersResult]
	if err := decode(exchange.EndpointPrices, body, &resp); err != nil {
		return nil, err
	}
	if resp.Time > 0 {
		observedAt = time.UnixMilli(resp.Time).UTC()
	}
	out := make([]model.ExchangePriceQuote, 0, len(resp.Result.List))
	for _, t := range resp.Result.List {
		if q, ok := exchange.NewQuote(Name, t.Symbol, t.LastPrice, observedAt); ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func decode[T any](endpoint string, body []byte, resp *envelope[T]) error {
	if err := exchange.DecodeJSON(Name, endpoint, body, resp); err != nil {
		return err
	}
	if *resp.RetCode != 0 {
		return exchange.Decodef(Name, endpoint, "retCode %d: %s", *resp.RetCode, resp.RetMsg)
	}
	return nil
}
