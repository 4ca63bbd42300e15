package kraken

import (
	"sort"
	"strings"
	"time"

	"feedgen/internal/domain/model"
	dsvc "feedgen/internal/domain/service"
	"feedgen/internal/infrastructure/exchange"
)

const (
	Name = "kraken"

	statusOnline = "online"
)

// 所有公共接口: {"error":[],"result":{...}}，error 非空即失败
type envelope[T any] struct {
	Error  []string     `json:"error" validate:"required"`
	Result map[string]T `json:"result" validate:"required,dive"`
}

// GET /0/public/Assets
// result: {"XXBT":{"altname":"XBT","decimals":10,...},"ZUSD":{"altname":"USD",...}}
type asset struct {
	Altname string `json:"altname" validate:"required"`
}

// GET /0/public/AssetPairs
// result: {"XXBTZUSD":{"altname":"XBTUSD","wsname":"XBT/USD","base":"XXBT","quote":"ZUSD","status":"online"}}
type assetPair struct {
	Altname string `json:"altname" validate:"required"`
	Wsname  string `json:"wsname"`
	Base    string `json:"base" validate:"required"`
	Quote   string `json:"quote" validate:"required"`
	Status  string `json:"status"`
}

// GET /0/public/Ticker
// result: {"XXBTZUSD":{"c":["65000.10000","0.00100000"],...}}, c[0] is the last trade price
type ticker struct {
	LastTrade []*exchange.Number `json:"c" validate:"required,min=1,dive,required"`
}

// DecodeAssets maps asset codes to their display names (XXBT -> XBT)
func DecodeAssets(body []byte) (map[string]string, error) {
	var resp envelope[asset]
	if err := decode(exchange.EndpointAssets, body, &resp); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(resp.Result))
	for code, a := range resp.Result {
		out[code] = a.Altname
	}
	return out, nil
}

// DecodeSymbols resolves pair legs through the asset table; wsname is the fallback.
// Pairs keyed by native name, sorted for stable output.
func DecodeSymbols(pairsBody []byte, assets map[string]string) ([]model.ExchangeSymbolInfo, error) {
	var resp envelope[assetPair]
	if err := decode(exchange.EndpointSymbols, pairsBody, &resp); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(resp.Result))
	for k := range resp.Result {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]model.ExchangeSymbolInfo, 0, len(keys))
	for _, key := range keys {
		p := resp.Result[key]
		if p.Status != "" && p.Status != statusOnline {
			continue
		}
		// dark pool pairs share legs with their lit counterpart
		if strings.HasSuffix(key, ".d") {
			continue
		}
		base, quote := assets[p.Base], assets[p.Quote]
		if base == "" || quote == "" {
			if b, q, err := dsvc.SplitSeparated(p.Wsname, "/"); err == nil {
				base, quote = b, q
			}
		}
		out = append(out, model.ExchangeSymbolInfo{
			Exchange:     Name,
			NativeSymbol: key,
			Base:         base,
			Quote:        quote,
		})
	}
	return out, nil
}

func DecodePrices(body []byte, observedAt time.Time) ([]model.ExchangePriceQuote, error) {
	var resp envelope[ticker]
	if err := decode(exchange.EndpointPrices, body, &resp); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(resp.Result))
	for k := range resp.Result {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]model.ExchangePriceQuote, 0, len(keys))
	for _, key := range keys {
		if q, ok := exchange.NewQuote(Name, key, resp.Result[key].LastTrade[0], observedAt); ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func decode[T any](endpoint string, body []byte, resp *envelope[T]) error {
	if err := exchange.DecodeJSON(Name, endpoint, body, resp); err != nil {
		return err
	}
	if len(resp.Error) > 0 {
		return exchange.Decodef(Name, endpoint, "%s", strings.Join(resp.Error, "; "))
	}
	return nil
}
