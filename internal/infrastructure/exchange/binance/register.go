package binance

import (
	"feedgen/internal/application/port"
	"feedgen/internal/infrastructure/exchange"
)

// init() 自注册 Binance 与 Binance.US，避免在 factory 中硬编码
func init() {
	exchange.Register(exchange.Venue{
		Name: Name,
		Defaults: exchange.Endpoints{
			Symbols: "https://api.binance.com/api/v3/exchangeInfo",
			Prices:  "https://api.binance.com/api/v3/ticker/price",
		},
		New: func(opts exchange.Options) port.ExchangeSource {
			return exchange.NewSource(Name, opts, DecodeSymbols, DecodePrices)
		},
	})
	exchange.Register(exchange.Venue{
		Name: NameUS,
		Defaults: exchange.Endpoints{
			Symbols: "https://api.binance.us/api/v3/exchangeInfo",
			Prices:  "https://api.binance.us/api/v3/ticker/24hr",
		},
		New: func(opts exchange.Options) port.ExchangeSource {
			return exchange.NewSource(NameUS, opts, DecodeUSSymbols, DecodeUSPrices)
		},
	})
}
