package coinbase

import (
	"feedgen/internal/application/port"
	"feedgen/internal/infrastructure/exchange"
)

func init() {
	exchange.Register(exchange.Venue{
		Name: Name,
		Defaults: exchange.Endpoints{
			Symbols: "https://api.exchange.coinbase.com/products",
			Prices:  "https://api.exchange.coinbase.com/products/{symbol}/ticker",
		},
		New: func(opts exchange.Options) port.ExchangeSource {
			return NewSource(opts)
		},
	})
}
