package cryptocom

import (
	"feedgen/internal/application/port"
	"feedgen/internal/infrastructure/exchange"
)

func init() {
	exchange.Register(exchange.Venue{
		Name: Name,
		Defaults: exchange.Endpoints{
			Symbols: "https://api.crypto.com/exchange/v1/public/get-instruments",
			Prices:  "https://api.crypto.com/exchange/v1/public/get-tickers",
		},
		New: func(opts exchange.Options) port.ExchangeSource {
			return exchange.NewSource(Name, opts, DecodeSymbols, DecodePrices)
		},
	})
}
