package coinbase

import (
	"time"

	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
)

const (
	Name = "coinbase"

	statusOnline = "online"
)

// GET /products, flat array
// [{"id":"BTC-USD","base_currency":"BTC","quote_currency":"USD","status":"online","trading_disabled":false}]
type product struct {
	ID              string `json:"id" validate:"required"`
	BaseCurrency    string `json:"base_currency" validate:"required"`
	QuoteCurrency   string `json:"quote_currency" validate:"required"`
	Status          string `json:"status" validate:"required"`
	TradingDisabled bool   `json:"trading_disabled"`
}

// GET /products/{id}/ticker
// {"trade_id":1,"price":"64990.50","size":"0.01","time":"2024-05-01T12:00:00.000000Z"}
type productTicker struct {
	Price *exchange.Number `json:"price" validate:"required"`
	Time  string           `json:"time"`
}

func DecodeSymbols(body []byte) ([]model.ExchangeSymbolInfo, error) {
	products, err := exchange.DecodeArray[product](Name, exchange.EndpointSymbols, body)
	if err != nil {
		return nil, err
	}
	out := make([]model.ExchangeSymbolInfo, 0, len(products))
	for _, p := range products {
		if p.Status != statusOnline || p.TradingDisabled {
			continue
		}
		out = append(out, model.ExchangeSymbolInfo{
			Exchange:     Name,
			NativeSymbol: p.ID,
			Base:         p.BaseCurrency,
			Quote:        p.QuoteCurrency,
		})
	}
	return out, nil
}

// DecodeTicker decodes one product ticker; ok is false when the price is unusable
func DecodeTicker(productID string, body []byte, observedAt time.Time) (model.ExchangePriceQuote, bool, error) {
	var t productTicker
	if err := exchange.DecodeJSON(Name, exchange.EndpointPrices, body, &t); err != nil {
		return model.ExchangePriceQuote{}, false, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, t.Time); err == nil {
		observedAt = ts.UTC()
	}
	q, ok := exchange.NewQuote(Name, productID, t.Price, observedAt)
	return q, ok, nil
}
