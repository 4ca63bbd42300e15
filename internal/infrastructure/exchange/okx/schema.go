package okx

import (
	"strconv"
	"time"

	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
)

const (
	Name = "okx"

	stateLive = "live"
)

// {"code":"0","msg":"","data":[...]}
type envelope[T any] struct {
	Code string `json:"code" validate:"required"`
	Msg  string `json:"msg"`
	Data []T    `json:"data" validate:"required,dive"`
}

// GET /api/v5/public/instruments?instType=SPOT
// data[]: {"instId":"BTC-USDT","baseCcy":"BTC","quoteCcy":"USDT","state":"live"}
type instrument struct {
	InstID   string `json:"instId" validate:"required"`
	BaseCcy  string `json:"baseCcy" validate:"required"`
	QuoteCcy string `json:"quoteCcy" validate:"required"`
	State    string `json:"state" validate:"required"`
}

// GET /api/v5/market/tickers?instType=SPOT
// data[]: {"instId":"BTC-USDT","last":"65000.1","ts":"1714564800000"}
type ticker struct {
	InstID string           `json:"instId" validate:"required"`
	Last   *exchange.Number `json:"last" validate:"required"`
	Ts     string           `json:"ts"`
}

func DecodeSymbols(body []byte) ([]model.ExchangeSymbolInfo, error) {
	var resp envelope[instrument]
	if err := decode(exchange.EndpointSymbols, body, &resp); err != nil {
		return nil, err
	}
	out := make([]model.ExchangeSymbolInfo, 0, len(resp.Data))
	for _, it := range resp.Data {
		if it.State != stateLive {
			continue
		}
		out = append(out, model.ExchangeSymbolInfo{
			Exchange:     Name,
			NativeSymbol: it.InstID,
			Base:         it.BaseCcy,
			Quote:        it.QuoteCcy,
		})
	}
	return out, nil
}

// DecodePrices uses the per-ticker ts when it parses
func DecodePrices(body []byte, observedAt time.Time) ([]model.ExchangePriceQuote, error) {
	var resp envelope[ticker]
	if err := decode(exchange.EndpointPrices, body, &resp); err != nil {
		return nil, err
	}
	out := make([]model.ExchangePriceQuote, 0, len(resp.Data))
	for _, t := range resp.Data {
		at := observedAt
		if ms, err := strconv.ParseInt(t.Ts, 10, 64); err == nil && ms > 0 {
			at = time.UnixMilli(ms).UTC()
		}
		if q, ok := exchange.NewQuote(Name, t.InstID, t.Last, at); ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func decode[T any](endpoint string, body []byte, resp *envelope[T]) error {
	if err := exchange.DecodeJSON(Name, endpoint, body, resp); err != nil {
		return err
	}
	if resp.Code != "0" {
		return exchange.Decodef(Name, endpoint, "code %s: %s", resp.Code, resp.Msg)
	}
	return nil
}
