package coinbase

import (
	"context"
	"sync"

	"feedgen/internal/application/port"
	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
)

// Source 列表一次请求，价格按 product 逐个请求（只请求通过过滤器的交易对）
type Source struct {
	opts exchange.Options
}

func NewSource(opts exchange.Options) *Source {
	return &Source{opts: opts}
}

func (s *Source) Name() string { return Name }

func (s *Source) Fetch(ctx context.Context, filter port.SymbolFilter) (*model.ExchangeAssets, error) {
	body, err := exchange.FetchBody(ctx, s.opts.Transport, Name, s.opts.Endpoints.Symbols)
	if err != nil {
		return nil, err
	}
	listed, err := DecodeSymbols(body)
	if err != nil {
		return nil, err
	}
	symbols := exchange.Assemble(Name, listed, nil, filter).Symbols

	var (
		mu     sync.Mutex
		prices = make([]model.ExchangePriceQuote, 0, len(symbols))
	)
	failed, first := exchange.ForEach(ctx, symbols, s.opts.Limit(), func(ctx context.Context, info model.ExchangeSymbolInfo) error {
		body, err := exchange.FetchBody(ctx, s.opts.Transport, Name, exchange.Expand(s.opts.Endpoints.Prices, info.NativeSymbol))
		if err != nil {
			return err
		}
		q, ok, err := DecodeTicker(info.NativeSymbol, body, s.opts.Clock())
		if err != nil || !ok {
			return err
		}
		mu.Lock()
		prices = append(prices, q)
		mu.Unlock()
		return nil
	})
	if err := exchange.PerSymbolResult(Name, len(symbols), failed, first); err != nil {
		return nil, err
	}

	return exchange.Assemble(Name, symbols, prices, nil), nil
}

var _ port.ExchangeSource = (*Source)(nil)
