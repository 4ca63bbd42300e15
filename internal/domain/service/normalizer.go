package service

import (
	"fmt"
	"sort"
	"strings"

	"feedgen/internal/domain/model"
)

// NormalizationAmbiguity 交易对无法被明确拆分/规范化
type NormalizationAmbiguity struct {
	Exchange string
	Symbol   string
	Reason   string
}

func (e *NormalizationAmbiguity) Error() string {
	return fmt.Sprintf("%s: ambiguous symbol %q: %s", e.Exchange, e.Symbol, e.Reason)
}

// NormalizerConfig alias tables, keys and values are case-insensitive
type NormalizerConfig struct {
	// AssetAliases rename tickers on every exchange, e.g. XBT -> BTC
	AssetAliases map[string]string
	// ExchangeAssetAliases rename tickers on one exchange only, e.g. bitfinex UST -> USDT
	ExchangeAssetAliases map[string]map[string]string
	// QuoteAliases declare quotes interchangeable for matching, e.g. USD -> [USDT, USDC].
	// An absent entry means the quotes are distinct canonical pairs.
	QuoteAliases map[string][]string
}

// Normalizer maps exchange symbol info onto the canonical pair space. Pure, safe for concurrent use.
type Normalizer struct {
	assets         map[string]string
	exchangeAssets map[string]map[string]string
	quotes         map[string][]string
}

func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	n := &Normalizer{
		assets:         make(map[string]string, len(cfg.AssetAliases)),
		exchangeAssets: make(map[string]map[string]string, len(cfg.ExchangeAssetAliases)),
		quotes:         make(map[string][]string, len(cfg.QuoteAliases)),
	}
	for from, to := range cfg.AssetAliases {
		n.assets[cleanAsset(from)] = cleanAsset(to)
	}
	for ex, aliases := range cfg.ExchangeAssetAliases {
		m := make(map[string]string, len(aliases))
		for from, to := range aliases {
			m[cleanAsset(from)] = cleanAsset(to)
		}
		n.exchangeAssets[strings.ToLower(strings.TrimSpace(ex))] = m
	}
	for quote, aliases := range cfg.QuoteAliases {
		q := cleanAsset(quote)
		seen := map[string]struct{}{q: {}}
		for _, a := range aliases {
			a = cleanAsset(a)
			if a == "" {
				continue
			}
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			n.quotes[q] = append(n.quotes[q], a)
		}
	}
	return n
}

// Normalize 总是返回一个确定的交易对；error 非 nil 时表示诊断出歧义，调用方应丢弃该记录
func (n *Normalizer) Normalize(exchange string, info model.ExchangeSymbolInfo) (model.AssetPair, error) {
	pair := model.AssetPair{
		Base:  n.CanonicalAsset(exchange, info.Base),
		Quote: n.CanonicalAsset(exchange, info.Quote),
	}

	var reason string
	switch {
	case pair.Base == "" || pair.Quote == "":
		reason = "empty base or quote"
	case pair.Base == pair.Quote:
		reason = "base equals quote"
	case strings.ContainsAny(pair.Base, separators) || strings.ContainsAny(pair.Quote, separators):
		reason = "separator left in asset ticker"
	}
	if reason != "" {
		return pair, &NormalizationAmbiguity{Exchange: exchange, Symbol: info.NativeSymbol, Reason: reason}
	}
	return pair, nil
}

// CanonicalAsset uppercases and applies exchange-scoped aliases first, then global ones
func (n *Normalizer) CanonicalAsset(exchange, asset string) string {
	a := cleanAsset(asset)
	if a == "" {
		return ""
	}
	if m, ok := n.exchangeAssets[strings.ToLower(strings.TrimSpace(exchange))]; ok {
		if to, ok := m[a]; ok {
			a = to
		}
	}
	if to, ok := n.assets[a]; ok {
		a = to
	}
	return a
}

// QuoteAliases returns the quotes declared interchangeable with quote, in config order
func (n *Normalizer) QuoteAliases(quote string) []string {
	return n.quotes[cleanAsset(quote)]
}

const separators = "-_/: ."

// SplitSeparated 拆分带分隔符的交易对，例: BTC-USDT, BTC_USDT, BTC:USDT
func SplitSeparated(native, sep string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(native), sep)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &NormalizationAmbiguity{Symbol: native, Reason: fmt.Sprintf("expected exactly one %q separator", sep)}
	}
	return cleanAsset(parts[0]), cleanAsset(parts[1]), nil
}

// SplitSymbol 拆分无分隔符的交易对，按最长已知 quote 后缀匹配
// 例: BTCUSDT -> BTC, USDT (quotes 含 USDT 与 USD 时取 USDT)
func SplitSymbol(native string, quotes []string) (string, string, error) {
	sym := cleanAsset(native)
	if sym == "" {
		return "", "", &NormalizationAmbiguity{Symbol: native, Reason: "empty symbol"}
	}

	sorted := make([]string, 0, len(quotes))
	for _, q := range quotes {
		if q = cleanAsset(q); q != "" {
			sorted = append(sorted, q)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	for _, q := range sorted {
		if len(sym) > len(q) && strings.HasSuffix(sym, q) {
			return strings.TrimSuffix(sym, q), q, nil
		}
	}
	return "", "", &NormalizationAmbiguity{Symbol: native, Reason: "no known quote suffix"}
}

func cleanAsset(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
