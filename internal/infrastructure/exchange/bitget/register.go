package bitget

import (
	"feedgen/internal/application/port"
	"feedgen/internal/infrastructure/exchange"
)

func init() {
	exchange.Register(exchange.Venue{
		Name: Name,
		Defaults: exchange.Endpoints{
			Symbols: "https://api.bitget.com/api/v2/spot/public/symbols",
			Prices:  "https://api.bitget.com/api/v2/spot/market/tickers",
		},
		New: func(opts exchange.Options) port.ExchangeSource {
			return exchange.NewSource(Name, opts, DecodeSymbols, DecodePrices)
		},
	})
}
