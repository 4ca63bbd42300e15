package factory

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"feedgen/internal/application/port"
	"feedgen/internal/infrastructure/config"
	"feedgen/internal/infrastructure/exchange"
	"feedgen/internal/infrastructure/httpclient"
)

// ErrNoSourcesEnabled 没有任何已注册且启用的交易所
var ErrNoSourcesEnabled = errors.New("no registered exchange enabled")

// Sources 已初始化的交易所数据源，共享同一个 HTTP transport
type Sources struct {
	Sources  []port.ExchangeSource
	Timeouts map[string]time.Duration
}

// NewSources 遍历 enabled 的交易所，使用各交易所包注册的工厂创建数据源
func NewSources(cfg *config.Config) (*Sources, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	type pending struct {
		venue exchange.Venue
		cfg   config.ExchangeConfig
		eps   exchange.Endpoints
	}

	var venues []pending
	clientOpts := []httpclient.Option{
		httpclient.WithUserAgent(cfg.HTTP.UserAgent),
		httpclient.WithRetries(cfg.HTTP.MaxRetries, cfg.HTTP.RetryBackoff.Duration),
	}
	// 单次请求超时取所有交易所超时的最大值，交易所级别的超时由 context 控制
	maxTimeout := cfg.App.ExchangeTimeout.Duration

	for _, name := range cfg.GetEnabledExchanges() {
		exCfg := cfg.Exchanges[name]
		venue, ok := exchange.Lookup(name)
		if !ok {
			log.Warn().Str("exchange", name).Strs("known", exchange.Names()).Msg("⚠️ exchange not registered, skipped")
			continue
		}
		eps := exchange.Endpoints{
			Symbols: exCfg.SymbolsURL,
			Prices:  exCfg.PricesURL,
			Details: exCfg.DetailsURL,
			Assets:  exCfg.AssetsURL,
		}.Merge(venue.Defaults)

		if exCfg.RateLimitRPS > 0 {
			for _, host := range hosts(eps) {
				clientOpts = append(clientOpts, httpclient.WithHostLimit(host, exCfg.RateLimitRPS))
			}
		}
		if exCfg.Timeout.Duration > maxTimeout {
			maxTimeout = exCfg.Timeout.Duration
		}
		venues = append(venues, pending{venue: venue, cfg: exCfg, eps: eps})
	}
	if len(venues) == 0 {
		return nil, ErrNoSourcesEnabled
	}

	client := httpclient.New(append(clientOpts, httpclient.WithTimeout(maxTimeout))...)
	out := &Sources{Timeouts: make(map[string]time.Duration, len(venues))}
	for _, p := range venues {
		src := p.venue.New(exchange.Options{
			Endpoints:   p.eps,
			Transport:   client,
			Concurrency: p.cfg.Concurrency,
		})
		out.Sources = append(out.Sources, src)
		out.Timeouts[src.Name()] = p.cfg.Timeout.Duration
		log.Info().
			Str("exchange", src.Name()).
			Dur("timeout", p.cfg.Timeout.Duration).
			Float64("rps", p.cfg.RateLimitRPS).
			Msg("✓ exchange source initialized")
	}
	return out, nil
}

func hosts(eps exchange.Endpoints) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, raw := range []string{eps.Symbols, eps.Prices, eps.Details, eps.Assets} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		if _, ok := seen[u.Host]; ok {
			continue
		}
		seen[u.Host] = struct{}{}
		out = append(out, u.Host)
	}
	return out
}
