package upbit

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"feedgen/internal/application/port"
	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
)

// Source ticker 接口需要显式 market 列表，因此先拉列表再按 100 个一组请求价格
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
	symbols, err := DecodeSymbols(body)
	if err != nil {
		return nil, err
	}

	// 先过滤，避免请求无用的 market
	listed := exchange.Assemble(Name, symbols, nil, filter)
	markets := make([]string, 0, len(listed.Symbols))
	for _, sym := range listed.Symbols {
		markets = append(markets, sym.NativeSymbol)
	}
	chunks := Chunk(markets, MarketsPerRequest)

	var (
		mu     sync.Mutex
		prices []model.ExchangePriceQuote
	)
	observedAt := s.opts.Clock()
	failed, first := exchange.ForEach(ctx, chunks, s.opts.Limit(), func(ctx context.Context, chunk []string) error {
		endpoint, err := exchange.WithQuery(s.opts.Endpoints.Prices, url.Values{"markets": {strings.Join(chunk, ",")}})
		if err != nil {
			return &exchange.FetchError{Exchange: Name, URL: s.opts.Endpoints.Prices, Err: err}
		}
		body, err := exchange.FetchBody(ctx, s.opts.Transport, Name, endpoint)
		if err != nil {
			return err
		}
		quotes, err := DecodePrices(body, observedAt)
		if err != nil {
			return err
		}
		mu.Lock()
		prices = append(prices, quotes...)
		mu.Unlock()
		return nil
	})
	if err := exchange.PerSymbolResult(Name, len(chunks), failed, first); err != nil {
		return nil, err
	}

	return exchange.Assemble(Name, listed.Symbols, prices, nil), nil
}

var _ port.ExchangeSource = (*Source)(nil)
