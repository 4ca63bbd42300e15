package port

import (
	"context"

	"feedgen/internal/domain/model"
)

// SymbolFilter 返回 false 的交易对不需要抓取价格。nil 表示全部接受
type SymbolFilter func(info model.ExchangeSymbolInfo) bool

// ExchangeSource 单个交易所的抓取端（symbols + prices 两次调用）
type ExchangeSource interface {
	Name() string
	Fetch(ctx context.Context, filter SymbolFilter) (*model.ExchangeAssets, error)
}

// Transport returns the raw response body of a GET request
type Transport interface {
	Get(ctx context.Context, url string) ([]byte, error)
}
