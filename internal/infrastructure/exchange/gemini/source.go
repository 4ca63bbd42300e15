package gemini

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"feedgen/internal/application/port"
	"feedgen/internal/domain/model"
	dsvc "feedgen/internal/domain/service"
	"feedgen/internal/infrastructure/exchange"
)

// knownQuotes 只用于预筛选，最终 base/quote 以 details 接口为准
var knownQuotes = []string{"USD", "USDT", "GUSD", "USDC", "DAI", "BTC", "ETH", "EUR", "GBP", "SGD"}

// Source 两阶段解析：symbol 列表 + pricefeed，然后逐个请求 details 取得 base/quote
type Source struct {
	opts exchange.Options
}

func NewSource(opts exchange.Options) *Source {
	return &Source{opts: opts}
}

func (s *Source) Name() string { return Name }

func (s *Source) Fetch(ctx context.Context, filter port.SymbolFilter) (*model.ExchangeAssets, error) {
	var (
		listed []string
		prices []model.ExchangePriceQuote
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := exchange.FetchBody(gctx, s.opts.Transport, Name, s.opts.Endpoints.Symbols)
		if err != nil {
			return err
		}
		listed, err = DecodeSymbolList(body)
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

	candidates := s.candidates(listed, prices, filter)

	var (
		mu      sync.Mutex
		symbols = make([]model.ExchangeSymbolInfo, 0, len(candidates))
	)
	failed, first := exchange.ForEach(ctx, candidates, s.opts.Limit(), func(ctx context.Context, sym string) error {
		body, err := exchange.FetchBody(ctx, s.opts.Transport, Name, exchange.Expand(s.opts.Endpoints.Details, sym))
		if err != nil {
			return err
		}
		info, ok, err := DecodeSymbolDetails(body)
		if err != nil || !ok {
			return err
		}
		mu.Lock()
		symbols = append(symbols, info)
		mu.Unlock()
		return nil
	})
	if err := exchange.PerSymbolResult(Name, len(candidates), failed, first); err != nil {
		return nil, err
	}

	return exchange.Assemble(Name, symbols, prices, filter), nil
}

// candidates 有报价的 symbol；能猜出 base/quote 且被过滤器拒绝的跳过，猜不出的照常请求 details
func (s *Source) candidates(listed []string, prices []model.ExchangePriceQuote, filter port.SymbolFilter) []string {
	priced := make(map[string]struct{}, len(prices))
	for _, q := range prices {
		priced[q.NativeSymbol] = struct{}{}
	}

	out := make([]string, 0, len(listed))
	skipped := 0
	for _, sym := range listed {
		if _, ok := priced[sym]; !ok {
			continue
		}
		if filter != nil {
			if base, quote, err := dsvc.SplitSymbol(sym, knownQuotes); err == nil {
				guess := model.ExchangeSymbolInfo{Exchange: Name, NativeSymbol: sym, Base: base, Quote: quote}
				if !filter(guess) {
					skipped++
					continue
				}
			}
		}
		out = append(out, sym)
	}
	log.Debug().
		Str("exchange", Name).
		Int("listed", len(listed)).
		Int("details", len(out)).
		Int("skipped", skipped).
		Msg("symbol details to resolve")
	return out
}

var _ port.ExchangeSource = (*Source)(nil)
