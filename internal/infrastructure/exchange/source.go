package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"feedgen/internal/application/port"
	"feedgen/internal/domain/model"
)

// SymbolsDecoder decodes the instrument listing response
type SymbolsDecoder func(body []byte) ([]model.ExchangeSymbolInfo, error)

// PricesDecoder decodes the ticker response
type PricesDecoder func(body []byte, observedAt time.Time) ([]model.ExchangePriceQuote, error)

// Source 标准两次调用的交易所：symbols 与 prices 并发请求，任一失败则整个交易所失败
type Source struct {
	name    string
	opts    Options
	symbols SymbolsDecoder
	prices  PricesDecoder
}

func NewSource(name string, opts Options, symbols SymbolsDecoder, prices PricesDecoder) *Source {
	return &Source{name: name, opts: opts, symbols: symbols, prices: prices}
}

func (s *Source) Name() string { return s.name }

func (s *Source) Fetch(ctx context.Context, filter port.SymbolFilter) (*model.ExchangeAssets, error) {
	var (
		symbols []model.ExchangeSymbolInfo
		prices  []model.ExchangePriceQuote
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := FetchBody(gctx, s.opts.Transport, s.name, s.opts.Endpoints.Symbols)
		if err != nil {
			return err
		}
		symbols, err = s.symbols(body)
		return AsDecodeError(s.name, EndpointSymbols, err)
	})
	g.Go(func() error {
		body, err := FetchBody(gctx, s.opts.Transport, s.name, s.opts.Endpoints.Prices)
		if err != nil {
			return err
		}
		prices, err = s.prices(body, s.opts.Clock())
		return AsDecodeError(s.name, EndpointPrices, err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Assemble(s.name, symbols, prices, filter), nil
}

// FetchBody GET through the transport, failures wrapped in FetchError
func FetchBody(ctx context.Context, t port.Transport, exchange, url string) ([]byte, error) {
	if t == nil {
		return nil, &FetchError{Exchange: exchange, URL: url, Err: errors.New("no transport configured")}
	}
	body, err := t.Get(ctx, url)
	if err != nil {
		return nil, &FetchError{Exchange: exchange, URL: url, Err: err}
	}
	return body, nil
}

// AsDecodeError leaves DecodeError/FetchError untouched and wraps anything else
func AsDecodeError(exchange, endpoint string, err error) error {
	if err == nil {
		return nil
	}
	var de *DecodeError
	var fe *FetchError
	if errors.As(err, &de) || errors.As(err, &fe) {
		return err
	}
	return &DecodeError{Exchange: exchange, Endpoint: endpoint, Err: err}
}

// ForEach 以最多 limit 个并发执行 fn，单个失败不影响其它；返回失败数量与第一个错误
func ForEach[T any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) error) (int, error) {
	errs := make([]error, len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		failed++
		if first == nil {
			first = err
		}
	}
	return failed, first
}

// PerSymbolResult 两阶段交易所的整体成败：全部失败才算交易所失败
func PerSymbolResult(exchange string, attempted, failed int, first error) error {
	if failed == 0 {
		return nil
	}
	if failed == attempted {
		return first
	}
	log.Warn().
		Str("exchange", exchange).
		Int("attempted", attempted).
		Int("failed", failed).
		Err(first).
		Msg("per-symbol requests failed, symbols dropped")
	return nil
}
