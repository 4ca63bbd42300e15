package bybit

import (
	"feedgen/internal/application/port"
	"feedgen/internal/infrastructure/exchange"
)

func init() {
	exchange.Register(exchange.Venue{
		Name: Name,
		Defaults: exchange.Endpoints{
			Symbols: "https://api.bybit.com/v5/market/instruments-info?category=spot",
			Prices:  "https://api.bybit.com/v5/market/tickers?category=spot",
		},
		New: func(opts exchange.Options) port.ExchangeSource {
			return exchange.NewSource(Name, opts, DecodeSymbols, DecodePrices)
		},
	})
}
