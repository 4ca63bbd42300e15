package exchange

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"feedgen/internal/application/port"
)

// Endpoints 交易所 REST 地址，未配置时使用 Venue.Defaults
type Endpoints struct {
	Symbols string
	Prices  string
	Details string // per-symbol details template, "{symbol}" placeholder
	Assets  string
}

// Merge fills empty fields of e from defaults
func (e Endpoints) Merge(defaults Endpoints) Endpoints {
	if strings.TrimSpace(e.Symbols) == "" {
		e.Symbols = defaults.Symbols
	}
	if strings.TrimSpace(e.Prices) == "" {
		e.Prices = defaults.Prices
	}
	if strings.TrimSpace(e.Details) == "" {
		e.Details = defaults.Details
	}
	if strings.TrimSpace(e.Assets) == "" {
		e.Assets = defaults.Assets
	}
	return e
}

// Options passed to a venue factory
type Options struct {
	Endpoints   Endpoints
	Transport   port.Transport
	Concurrency int              // per-symbol calls in flight, two-stage venues only
	Now         func() time.Time // quote observation clock
}

// Clock current observation time
func (o Options) Clock() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

// Limit per-symbol concurrency, default 4
func (o Options) Limit() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return 4
}

// Factory builds a source for one venue
type Factory func(opts Options) port.ExchangeSource

// Venue registry entry
type Venue struct {
	Name     string
	Defaults Endpoints
	New      Factory
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Venue)
)

// Register 由各交易所包的 init() 调用完成自注册
func Register(v Venue) {
	name := strings.ToLower(strings.TrimSpace(v.Name))
	if name == "" || v.New == nil {
		log.Warn().Str("exchange", v.Name).Msg("invalid exchange venue")
		return
	}
	v.Name = name

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[name]; exists {
		log.Warn().Str("exchange", name).Msg("exchange venue already registered, overwriting")
	}
	registry[name] = v
}

// Lookup 获取已注册的交易所
func Lookup(name string) (Venue, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

// Names sorted list of registered venues
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// WithQuery appends query parameters to an endpoint URL
func WithQuery(endpoint string, params url.Values) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", errors.New("endpoint url is empty")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Expand substitutes the {symbol} placeholder of a template, path-escaped
func Expand(template, symbol string) string {
	return strings.ReplaceAll(template, "{symbol}", url.PathEscape(symbol))
}
