package upbit

import (
	"feedgen/internal/application/port"
	"feedgen/internal/infrastructure/exchange"
)

func init() {
	exchange.Register(exchange.Venue{
		Name: Name,
		Defaults: exchange.Endpoints{
			Symbols: "https://api.upbit.com/v1/market/all",
			Prices:  "https://api.upbit.com/v1/ticker",
		},
		New: func(opts exchange.Options) port.ExchangeSource {
			return NewSource(opts)
		},
	})
}
