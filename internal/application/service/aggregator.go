package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"feedgen/internal/domain/model"
	dsvc "feedgen/internal/domain/service"
)

// DefaultExchangePriority 固定的交易所优先级，决定 feed 内 sources 的顺序
var DefaultExchangePriority = []string{
	"binance", "coinbase", "bybit", "okx", "kraken", "bitget", "kucoin",
	"gateio", "mexc", "cryptocom", "gemini", "bitfinex", "binanceus", "upbit",
}

// DefaultOutlierThreshold 偏离中位数 10% 视为异常
var DefaultOutlierThreshold = decimal.RequireFromString("0.10")

// Aggregator joins per-exchange results onto the feed registry.
// It keeps no state between calls.
type Aggregator struct {
	normalizer       *dsvc.Normalizer
	rank             map[string]int
	outlierThreshold decimal.Decimal
}

func NewAggregator(normalizer *dsvc.Normalizer, priority []string, outlierThreshold decimal.Decimal) *Aggregator {
	if normalizer == nil {
		normalizer = dsvc.NewNormalizer(dsvc.NormalizerConfig{})
	}
	if len(priority) == 0 {
		priority = DefaultExchangePriority
	}
	rank := make(map[string]int, len(priority))
	for i, ex := range priority {
		ex = strings.ToLower(strings.TrimSpace(ex))
		if _, ok := rank[ex]; !ok {
			rank[ex] = i
		}
	}
	return &Aggregator{normalizer: normalizer, rank: rank, outlierThreshold: outlierThreshold}
}

// Normalize maps one listing record onto the canonical pair space
func (a *Aggregator) Normalize(info model.ExchangeSymbolInfo) (model.AssetPair, error) {
	return a.normalizer.Normalize(info.Exchange, info)
}

// CandidatePairs 一个 feed 可以接受的规范交易对，按优先顺序：
// 精确匹配，feed 声明的 accept_quotes，全局 quote 别名
func (a *Aggregator) CandidatePairs(feed model.FeedDefinition) []model.AssetPair {
	base := a.normalizer.CanonicalAsset("", feed.Pair.Base)
	quote := a.normalizer.CanonicalAsset("", feed.Pair.Quote)

	out := []model.AssetPair{{Base: base, Quote: quote}}
	seen := map[string]struct{}{quote: {}}
	add := func(q string) {
		q = a.normalizer.CanonicalAsset("", q)
		if q == "" || q == base {
			return
		}
		if _, ok := seen[q]; ok {
			return
		}
		seen[q] = struct{}{}
		out = append(out, model.AssetPair{Base: base, Quote: q})
	}
	for _, q := range feed.AcceptQuotes {
		add(q)
	}
	for _, q := range a.normalizer.QuoteAliases(quote) {
		add(q)
	}
	return out
}

// Aggregate 构建最终文档。结果只依赖 registry 顺序与交易所优先级，与抓取完成顺序无关
func (a *Aggregator) Aggregate(registry []model.FeedDefinition, results []model.FetchResult) *model.GeneratedConfig {
	index := make(map[model.AssetPair]map[string]model.FeedSource)
	unavailable := make([]model.ExchangeFailure, 0)

	for _, res := range results {
		if !res.OK() {
			unavailable = append(unavailable, model.ExchangeFailure{
				Exchange: res.Exchange,
				Kind:     ClassifyFailure(res.Err),
				Reason:   failureReason(res.Err),
			})
			continue
		}
		a.indexExchange(index, res.Assets)
	}

	out := &model.GeneratedConfig{
		Version:     model.ConfigVersion,
		Feeds:       make([]model.FeedDefinition, 0, len(registry)),
		Unavailable: unavailable,
	}

	for _, feed := range registry {
		chosen := make(map[string]model.FeedSource)
		for _, pair := range a.CandidatePairs(feed) {
			for ex, src := range index[pair] {
				if _, ok := chosen[ex]; !ok {
					chosen[ex] = src
				}
			}
		}

		sources := make([]model.FeedSource, 0, len(chosen))
		for _, src := range chosen {
			sources = append(sources, src)
		}
		sort.Slice(sources, func(i, j int) bool {
			return a.less(sources[i].Exchange, sources[j].Exchange)
		})

		kept, outliers := dsvc.SplitOutliers(sources, a.outlierThreshold)
		if outliers == nil {
			outliers = make([]model.FeedSource, 0)
		}
		for _, o := range outliers {
			log.Warn().
				Uint32("feed", feed.ID).
				Str("exchange", o.Exchange).
				Str("price", o.Price.String()).
				Msg("source price deviates from median, excluded")
		}

		def := feed
		def.Sources = kept
		def.Outliers = outliers
		def.Status = model.FeedStatusOK
		if len(kept) == 0 {
			def.Status = model.FeedStatusNoSources
		}
		out.Feeds = append(out.Feeds, def)
	}

	sort.SliceStable(out.Unavailable, func(i, j int) bool {
		return a.less(out.Unavailable[i].Exchange, out.Unavailable[j].Exchange)
	})
	return out
}

// indexExchange joins symbols with prices on native symbol, then groups by canonical pair.
// One source per (pair, exchange); duplicates keep the lexically smallest native symbol.
func (a *Aggregator) indexExchange(index map[model.AssetPair]map[string]model.FeedSource, assets *model.ExchangeAssets) {
	prices := make(map[string]model.ExchangePriceQuote, len(assets.Prices))
	for _, q := range assets.Prices {
		if _, ok := prices[q.NativeSymbol]; !ok {
			prices[q.NativeSymbol] = q
		}
	}

	var joined, ambiguous int
	for _, info := range assets.Symbols {
		q, ok := prices[info.NativeSymbol]
		if !ok {
			continue
		}
		if info.Exchange == "" {
			info.Exchange = assets.Exchange
		}
		pair, err := a.Normalize(info)
		if err != nil {
			ambiguous++
			log.Debug().Err(err).Msg("symbol dropped")
			continue
		}
		joined++

		byEx := index[pair]
		if byEx == nil {
			byEx = make(map[string]model.FeedSource)
			index[pair] = byEx
		}
		if prev, ok := byEx[assets.Exchange]; ok && prev.NativeSymbol <= info.NativeSymbol {
			continue
		}
		byEx[assets.Exchange] = model.FeedSource{
			Exchange:     assets.Exchange,
			NativeSymbol: info.NativeSymbol,
			Price:        q.Price,
			LastSeen:     q.ObservedAt,
		}
	}

	ev := log.Debug()
	if ambiguous > 0 {
		ev = log.Warn()
	}
	ev.Str("exchange", assets.Exchange).
		Int("symbols", len(assets.Symbols)).
		Int("prices", len(assets.Prices)).
		Int("joined", joined).
		Int("ambiguous", ambiguous).
		Msg("exchange indexed")
}

// less 按优先级排序，不在列表中的交易所排在后面并按字母序
func (a *Aggregator) less(x, y string) bool {
	rx, okx := a.rank[strings.ToLower(x)]
	ry, oky := a.rank[strings.ToLower(y)]
	switch {
	case okx && oky && rx != ry:
		return rx < ry
	case okx != oky:
		return okx
	default:
		return x < y
	}
}

// FailureKinder is implemented by errors that know their failure category
type FailureKinder interface {
	FailureKind() model.FailureKind
}

// ClassifyFailure maps a per-exchange error onto the output taxonomy
func ClassifyFailure(err error) model.FailureKind {
	if err == nil {
		return model.FailureFetch
	}
	var k FailureKinder
	if errors.As(err, &k) {
		return k.FailureKind()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.FailureTimeout
	}
	return model.FailureFetch
}

func failureReason(err error) string {
	if err == nil {
		return "no data returned"
	}
	return err.Error()
}
