package bitfinex

import (
	"feedgen/internal/application/port"
	"feedgen/internal/infrastructure/exchange"
)

func init() {
	exchange.Register(exchange.Venue{
		Name: Name,
		Defaults: exchange.Endpoints{
			Symbols: "https://api-pub.bitfinex.com/v2/conf/pub:list:pair:exchange",
			Prices:  "https://api-pub.bitfinex.com/v2/tickers?symbols=ALL",
		},
		New: func(opts exchange.Options) port.ExchangeSource {
			return exchange.NewSource(Name, opts, DecodeSymbols, DecodePrices)
		},
	})
}
