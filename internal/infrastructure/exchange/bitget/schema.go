package bitget

import (
	"time"

	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
)

const (
	Name = "bitget"

	codeOK       = "00000"
	statusOnline = "online"
)

// {"code":"00000","msg":"success","requestTime":1714564800000,"data":[...]}
type envelope[T any] struct {
	Code        string `json:"code" validate:"required"`
	Msg         string `json:"msg"`
	RequestTime int64  `json:"requestTime"`
	Data        []T    `json:"data" validate:"required,dive"`
}

// GET /api/v2/spot/public/symbols
// data[]: {"symbol":"BTCUSDT","baseCoin":"BTC","quoteCoin":"USDT","status":"online"}
type symbol struct {
	Symbol    string `json:"symbol" validate:"required"`
	BaseCoin  string `json:"baseCoin" validate:"required"`
	QuoteCoin string `json:"quoteCoin" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// GET /api/v2/spot/market/tickers
// data[]: {"symbol":"BTCUSDT","lastPr":"65000.5",...}
type ticker struct {
	Symbol string           `json:"symbol" validate:"required"`
	LastPr *exchange.Number `json:"lastPr" validate:"required"`
}

func DecodeSymbols(body []byte) ([]model.ExchangeSymbolInfo, error) {
	var resp envelope[symbol]
	if err := decode(exchange.EndpointSymbols, body, &resp); err != nil {
		return nil, err
	}
	out := make([]model.ExchangeSymbolInfo, 0, len(resp.Data))
	for _, s := range resp.Data {
		if s.Status != statusOnline {
			continue
		}
		out = append(out, model.ExchangeSymbolInfo{
			Exchange:     Name,
			NativeSymbol: s.Symbol,
			Base:         s.BaseCoin,
			Quote:        s.QuoteCoin,
		})
	}
	return out, nil
}

func DecodePrices(body []byte, observedAt time.Time) ([]model.ExchangePriceQuote, error) {
	var resp envelope[ticker]
	if err := decode(exchange.EndpointPrices, body, &resp); err != nil {
		return nil, err
	}
	if resp.RequestTime > 0 {
		observedAt = time.UnixMilli(resp.RequestTime).UTC()
	}
	out := make([]model.ExchangePriceQuote, 0, len(resp.Data))
	for _, t := range resp.Data {
		if q, ok := exchange.NewQuote(Name, t.Symbol, t.LastPr, observedAt); ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func decode[T any](endpoint string, body []byte, resp *envelope[T]) error {
	if err := exchange.DecodeJSON(Name, endpoint, body, resp); err != nil {
		return err
	}
	if resp.Code != codeOK {
		return exchange.Decodef(Name, endpoint, "code %s: %s", resp.Code, resp.Msg)
	}
	return nil
}
