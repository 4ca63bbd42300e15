package kraken

import (
	"feedgen/internal/application/port"
	"feedgen/internal/infrastructure/exchange"
)

func init() {
	exchange.Register(exchange.Venue{
		Name: Name,
		Defaults: exchange.Endpoints{
			Symbols: "https://api.kraken.com/0/public/AssetPairs",
			Prices:  "https://api.kraken.com/0/public/Ticker",
			Assets:  "https://api.kraken.com/0/public/Assets",
		},
		New: func(opts exchange.Options) port.ExchangeSource {
			return NewSource(opts)
		},
	})
}
