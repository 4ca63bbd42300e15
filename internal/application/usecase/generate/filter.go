package generate

import (
	"feedgen/internal/application/port"
	"feedgen/internal/application/service"
	"feedgen/internal/domain/model"
)

// NewSymbolFilter keeps listings whose canonical pair can serve at least one feed
func NewSymbolFilter(agg *service.Aggregator, registry []model.FeedDefinition) port.SymbolFilter {
	wanted := make(map[model.AssetPair]struct{})
	for _, feed := range registry {
		for _, p := range agg.CandidatePairs(feed) {
			wanted[p] = struct{}{}
		}
	}
	return func(info model.ExchangeSymbolInfo) bool {
		pair, err := agg.Normalize(info)
		if err != nil {
			return false
		}
		_, ok := wanted[pair]
		return ok
	}
}
