package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"feedgen/internal/domain/model"
)

// MinOutlierSources 单一来源没有可比较的中位数
const MinOutlierSources = 2

// Median of prices; prices must be non-empty
func Median(prices []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}

// Deviation |price - median| / median
func Deviation(price, median decimal.Decimal) decimal.Decimal {
	return price.Sub(median).Abs().Div(median)
}

// SplitOutliers 剔除相对中位数偏离超过 threshold 的价格源（严格大于）
// threshold <= 0 或只有一个源时不做剔除。中位数 <= 0 时所有源都视为异常。返回值保持输入顺序
func SplitOutliers(sources []model.FeedSource, threshold decimal.Decimal) (kept, outliers []model.FeedSource) {
	if !threshold.IsPositive() || len(sources) < MinOutlierSources {
		return sources, nil
	}

	prices := make([]decimal.Decimal, len(sources))
	for i, s := range sources {
		prices[i] = s.Price
	}
	median := Median(prices)
	if !median.IsPositive() {
		return make([]model.FeedSource, 0), sources
	}

	kept = make([]model.FeedSource, 0, len(sources))
	for _, s := range sources {
		if Deviation(s.Price, median).GreaterThan(threshold) {
			outliers = append(outliers, s)
			continue
		}
		kept = append(kept, s)
	}
	return kept, outliers
}
