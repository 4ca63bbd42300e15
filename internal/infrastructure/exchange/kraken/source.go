package kraken

import (
	"context"

	"golang.org/x/sync/errgroup"

	"feedgen/internal/application/port"
	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/exchange"
)

// Source 列表阶段需要 Assets + AssetPairs 两个接口，与 Ticker 并发请求
type Source struct {
	opts exchange.Options
}

func NewSource(opts exchange.Options) *Source {
	return &Source{opts: opts}
}

func (s *Source) Name() string { return Name }

func (s *Source) Fetch(ctx context.Context, filter port.SymbolFilter) (*model.ExchangeAssets, error) {
	var (
		assets    map[string]string
		pairsBody []byte
		prices    []model.ExchangePriceQuote
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := exchange.FetchBody(gctx, s.opts.Transport, Name, s.opts.Endpoints.Assets)
		if err != nil {
			return err
		}
		assets, err = DecodeAssets(body)
		return err
	})
	g.Go(func() error {
		var err error
		pairsBody, err = exchange.FetchBody(gctx, s.opts.Transport, Name, s.opts.Endpoints.Symbols)
		return err
	})
	g.Go(func() error {
		body, err := exchange.FetchBody(gctx, s.opts.Transport, Name, s.opts.Endpoints.Prices)
		if err != nil {
			return err
		}
		prices, err = DecodePrices(body, s.opts.Clock())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	symbols, err := DecodeSymbols(pairsBody, assets)
	if err != nil {
		return nil, err
	}
	return exchange.Assemble(Name, symbols, prices, filter), nil
}

var _ port.ExchangeSource = (*Source)(nil)
