package gemini

import (
	"strings"
	"time"

	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
)

const (
	Name = "gemini"

	statusOpen = "open"
)

// GET /v1/symbols returns a bare string array: ["btcusd","ethbtc",...]
// base/quote come from GET /v1/symbols/details/{symbol}:
// {"symbol":"BTCUSD","base_currency":"BTC","quote_currency":"USD","status":"open",...}
type symbolDetails struct {
	Symbol        string `json:"symbol" validate:"required"`
	BaseCurrency  string `json:"base_currency" validate:"required"`
	QuoteCurrency string `json:"quote_currency" validate:"required"`
	Status        string `json:"status" validate:"required"`
}

// GET /v1/pricefeed
// [{"pair":"BTCUSD","price":"64995.01","percentChange24h":"0.0012"}]
type priceFeed struct {
	Pair  string           `json:"pair" validate:"required"`
	Price *exchange.Number `json:"price" validate:"required"`
}

// DecodeSymbolList returns the listed symbols uppercased
func DecodeSymbolList(body []byte) ([]string, error) {
	var syms []string
	if err := exchange.DecodeJSON(Name, exchange.EndpointSymbols, body, &syms); err != nil {
		return nil, err
	}
	if syms == nil {
		return nil, exchange.Decodef(Name, exchange.EndpointSymbols, "expected array, got null")
	}
	out := make([]string, 0, len(syms))
	for i, s := range syms {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			return nil, exchange.Decodef(Name, exchange.EndpointSymbols, "[%d]: empty symbol", i)
		}
		out = append(out, s)
	}
	return out, nil
}

// DecodeSymbolDetails ok is false when the symbol is not open for trading
func DecodeSymbolDetails(body []byte) (model.ExchangeSymbolInfo, bool, error) {
	var d symbolDetails
	if err := exchange.DecodeJSON(Name, exchange.EndpointDetails, body, &d); err != nil {
		return model.ExchangeSymbolInfo{}, false, err
	}
	if d.Status != statusOpen {
		return model.ExchangeSymbolInfo{}, false, nil
	}
	return model.ExchangeSymbolInfo{
		Exchange:     Name,
		NativeSymbol: strings.ToUpper(d.Symbol),
		Base:         d.BaseCurrency,
		Quote:        d.QuoteCurrency,
	}, true, nil
}

func DecodePrices(body []byte, observedAt time.Time) ([]model.ExchangePriceQuote, error) {
	rows, err := exchange.DecodeArray[priceFeed](Name, exchange.EndpointPrices, body)
	if err != nil {
		return nil, err
	}
	out := make([]model.ExchangePriceQuote, 0, len(rows))
	for _, r := range rows {
		if q, ok := exchange.NewQuote(Name, strings.ToUpper(r.Pair), r.Price, observedAt); ok {
			out = append(out, q)
		}
	}
	return out, nil
}
