package factory

// 各交易所包在 init() 中向 exchange registry 注册自己
import (
	_ "feedgen/internal/infrastructure/exchange/binance"
	_ "feedgen/internal/infrastructure/exchange/bitfinex"
	_ "feedgen/internal/infrastructure/exchange/bitget"
	_ "feedgen/internal/infrastructure/exchange/bybit"
	_ "feedgen/internal/infrastructure/exchange/coinbase"
	_ "feedgen/internal/infrastructure/exchange/cryptocom"
	_ "feedgen/internal/infrastructure/exchange/gateio"
	_ "feedgen/internal/infrastructure/exchange/gemini"
	_ "feedgen/internal/infrastructure/exchange/kraken"
	_ "feedgen/internal/infrastructure/exchange/kucoin"
	_ "feedgen/internal/infrastructure/exchange/mexc"
	_ "feedgen/internal/infrastructure/exchange/okx"
	_ "feedgen/internal/infrastructure/exchange/upbit"
)
