package gemini

import (
	"feedgen/internal/application/port"
	"feedgen/internal/infrastructure/exchange"
)

func init() {
	exchange.Register(exchange.Venue{
		Name: Name,
		Defaults: exchange.Endpoints{
			Symbols: "https://api.gemini.com/v1/symbols",
			Prices:  "https://api.gemini.com/v1/pricefeed",
			Details: "https://api.gemini.com/v1/symbols/details/{symbol}",
		},
		New: func(opts exchange.Options) port.ExchangeSource {
			return NewSource(opts)
		},
	})
}
