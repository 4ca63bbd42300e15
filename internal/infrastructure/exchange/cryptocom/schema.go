package cryptocom

import (
	"time"

	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
)

const (
	Name = "cryptocom"

	instTypeSpot = "CCY_PAIR"
)

// {"id":-1,"method":"public/get-instruments","code":0,"result":{"data":[...]}}
type envelope[T any] struct {
	Code    *int   `json:"code" validate:"required"`
	Message string `json:"message"`
	Result  struct {
		Data []T `json:"data" validate:"required,dive"`
	} `json:"result"`
}

// GET /exchange/v1/public/get-instruments
// data[]: {"symbol":"BTC_USDT","inst_type":"CCY_PAIR","base_ccy":"BTC","quote_ccy":"USDT","tradable":true}
type instrument struct {
	Symbol   string `json:"symbol" validate:"required"`
	InstType string `json:"inst_type" validate:"required"`
	BaseCcy  string `json:"base_ccy"`
	QuoteCcy string `json:"quote_ccy"`
	Tradable *bool  `json:"tradable"`
}

// GET /exchange/v1/public/get-tickers
// data[]: {"i":"BTC_USDT","a":"65000.12","t":1714564800000}, a is the last trade price
type ticker struct {
	Instrument string           `json:"i" validate:"required"`
	Last       *exchange.Number `json:"a" validate:"required"`
	Timestamp  int64            `json:"t"`
}

// DecodeSymbols keeps spot pairs only; derivatives carry no base/quote and are skipped
func DecodeSymbols(body []byte) ([]model.ExchangeSymbolInfo, error) {
	var resp envelope[instrument]
	if err := decode(exchange.EndpointSymbols, body, &resp); err != nil {
		return nil, err
	}
	out := make([]model.ExchangeSymbolInfo, 0, len(resp.Result.Data))
	for _, it := range resp.Result.Data {
		if it.InstType != instTypeSpot {
			continue
		}
		if it.BaseCcy == "" || it.QuoteCcy == "" {
			return nil, exchange.Decodef(Name, exchange.EndpointSymbols, "instrument %s: missing base_ccy/quote_ccy", it.Symbol)
		}
		if it.Tradable != nil && !*it.Tradable {
			continue
		}
		out = append(out, model.ExchangeSymbolInfo{
			Exchange:     Name,
			NativeSymbol: it.Symbol,
			Base:         it.BaseCcy,
			Quote:        it.QuoteCcy,
		})
	}
	return out, nil
}

func DecodePrices(body []byte, observedAt time.Time) ([]model.ExchangePriceQuote, error) {
	var resp envelope[ticker]
	if err := decode(exchange.EndpointPrices, body, &resp); err != nil {
		return nil, err
	}
	out := make([]model.ExchangePriceQuote, 0, len(resp.Result.Data))
	for _, t := range resp.Result.Data {
		at := observedAt
		if t.Timestamp > 0 {
			at = time.UnixMilli(t.Timestamp).UTC()
		}
		if q, ok := exchange.NewQuote(Name, t.Instrument, t.Last, at); ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func decode[T any](endpoint string, body []byte, resp *envelope[T]) error {
	if err := exchange.DecodeJSON(Name, endpoint, body, resp); err != nil {
		return err
	}
	if *resp.Code != 0 {
		return exchange.Decodef(Name, endpoint, "code %d: %s", *resp.Code, resp.Message)
	}
	return nil
}
