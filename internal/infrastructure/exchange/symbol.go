package exchange

import (
	"time"

	"github.com/rs/zerolog/log"

	"feedgen/internal/application/port"
	"feedgen/internal/domain/model"
)

// Assemble 应用过滤器并组装结果；prices 只保留仍在 symbols 中的交易对
func Assemble(exchange string, symbols []model.ExchangeSymbolInfo, prices []model.ExchangePriceQuote, filter port.SymbolFilter) *model.ExchangeAssets {
	out := &model.ExchangeAssets{
		Exchange: exchange,
		Symbols:  make([]model.ExchangeSymbolInfo, 0, len(symbols)),
		Prices:   make([]model.ExchangePriceQuote, 0, len(prices)),
	}

	kept := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		s.Exchange = exchange
		if filter != nil && !filter(s) {
			continue
		}
		kept[s.NativeSymbol] = struct{}{}
		out.Symbols = append(out.Symbols, s)
	}
	for _, p := range prices {
		if _, ok := kept[p.NativeSymbol]; !ok {
			continue
		}
		p.Exchange = exchange
		out.Prices = append(out.Prices, p)
	}
	return out
}

// NewQuote 生成一条报价；价格不可解析或为负时返回 false，只丢弃这一条
func NewQuote(exchange, native string, n *Number, observedAt time.Time) (model.ExchangePriceQuote, bool) {
	price, ok := n.Price()
	if !ok {
		log.Debug().
			Str("exchange", exchange).
			Str("symbol", native).
			Str("raw", n.Raw()).
			Msg("unusable price dropped")
		return model.ExchangePriceQuote{}, false
	}
	return model.ExchangePriceQuote{
		Exchange:     exchange,
		NativeSymbol: native,
		Price:        price,
		ObservedAt:   observedAt,
	}, true
}
