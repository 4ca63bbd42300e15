package generate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"feedgen/internal/application/port"
	"feedgen/internal/application/service"
	"feedgen/internal/domain/model"
)

const (
	defaultExchangeTimeout = 20 * time.Second
	defaultRunTimeout      = 60 * time.Second
)

type ServiceDeps struct {
	Sources    []port.ExchangeSource
	Aggregator *service.Aggregator

	ExchangeTimeout time.Duration
	// Timeouts 单个交易所的超时覆盖，key 为交易所名
	Timeouts   map[string]time.Duration
	RunTimeout time.Duration

	Repo    port.Repository
	Sink    port.Sink
	Metrics port.Recorder
	Color   bool
	Now     func() time.Time
}

// Result 一次完整运行的产物
type Result struct {
	Config  *model.GeneratedConfig
	Doc     []byte
	Record  *model.RunRecord
	Changes []service.FeedChange
}

type Service struct {
	deps ServiceDeps
	fmt  *Formatter
}

func NewService(deps ServiceDeps) *Service {
	if deps.Aggregator == nil {
		deps.Aggregator = service.NewAggregator(nil, nil, service.DefaultOutlierThreshold)
	}
	if deps.ExchangeTimeout <= 0 {
		deps.ExchangeTimeout = defaultExchangeTimeout
	}
	if deps.RunTimeout <= 0 {
		deps.RunTimeout = defaultRunTimeout
	}
	if deps.Repo == nil {
		deps.Repo = NewNoopRepo()
	}
	if deps.Sink == nil {
		deps.Sink = noopSink{}
	}
	if deps.Metrics == nil {
		deps.Metrics = NewNoopRecorder()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps, fmt: NewFormatter(deps.Color)}
}

// Generate validates the registry, fetches every exchange concurrently and aggregates.
// It fails only when the registry is invalid or no exchange returned data.
func (s *Service) Generate(ctx context.Context, registry []model.FeedDefinition) (*model.GeneratedConfig, error) {
	cfg, _, err := s.generate(ctx, registry)
	return cfg, err
}

func (s *Service) generate(ctx context.Context, registry []model.FeedDefinition) (*model.GeneratedConfig, []model.FetchResult, error) {
	if err := service.ValidateRegistry(registry); err != nil {
		return nil, nil, &GenerationError{Reason: ErrInvalidRegistry, Err: err}
	}
	if len(s.deps.Sources) == 0 {
		return nil, nil, &GenerationError{Reason: ErrNoExchangeData, Err: errors.New("no exchange sources configured")}
	}

	runCtx, cancel := context.WithTimeout(ctx, s.deps.RunTimeout)
	defer cancel()

	results := s.fetchAll(runCtx, NewSymbolFilter(s.deps.Aggregator, registry))

	ok := 0
	for _, r := range results {
		if r.OK() {
			ok++
		}
	}
	cfg := s.deps.Aggregator.Aggregate(registry, results)
	if ok == 0 {
		return nil, results, &GenerationError{Reason: ErrNoExchangeData, Failures: cfg.Unavailable}
	}
	return cfg, results, nil
}

// fetchAll 每个交易所独立超时，互不取消；每个 goroutine 只写自己的槽位
func (s *Service) fetchAll(ctx context.Context, filter port.SymbolFilter) []model.FetchResult {
	results := make([]model.FetchResult, len(s.deps.Sources))

	var g errgroup.Group
	for i, src := range s.deps.Sources {
		g.Go(func() error {
			results[i] = s.fetchOne(ctx, src, filter)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Service) fetchOne(ctx context.Context, src port.ExchangeSource, filter port.SymbolFilter) (res model.FetchResult) {
	name := src.Name()
	timeout := s.deps.ExchangeTimeout
	if t, ok := s.deps.Timeouts[name]; ok && t > 0 {
		timeout = t
	}

	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = model.FetchResult{Exchange: name, Err: fmt.Errorf("%s: panic: %v", name, r)}
		}
		res.Duration = time.Since(start)

		outcome := "ok"
		if !res.OK() {
			outcome = string(service.ClassifyFailure(res.Err))
		}
		s.deps.Metrics.ObserveFetch(name, outcome, res.Duration)
	}()

	assets, err := src.Fetch(vctx, filter)
	if err == nil && assets == nil {
		err = fmt.Errorf("%s: no data returned", name)
	}
	if err != nil {
		log.Warn().
			Str("exchange", name).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("exchange unavailable")
		return model.FetchResult{Exchange: name, Err: err}
	}

	log.Info().
		Str("exchange", name).
		Int("symbols", len(assets.Symbols)).
		Int("prices", len(assets.Prices)).
		Dur("elapsed", time.Since(start)).
		Msg("exchange fetched")
	return model.FetchResult{Exchange: name, Assets: assets}
}

// Run 生成、编码、与上一版本比较、归档并输出报告
func (s *Service) Run(ctx context.Context, registry []model.FeedDefinition) (*Result, error) {
	started := s.deps.Now()
	t0 := time.Now()

	cfg, results, err := s.generate(ctx, registry)
	if err != nil {
		var ge *GenerationError
		if errors.As(err, &ge) && len(ge.Failures) > 0 {
			for _, f := range ge.Failures {
				log.Error().Str("exchange", f.Exchange).Str("kind", string(f.Kind)).Msg(f.Reason)
			}
		}
		return nil, err
	}

	doc, err := service.EncodeConfig(cfg)
	if err != nil {
		return nil, err
	}

	rec := &model.RunRecord{
		RunID:           uuid.New(),
		StartedAt:       started.UTC(),
		Duration:        time.Since(t0),
		FeedCount:       len(cfg.Feeds),
		ExchangesFailed: cfg.Unavailable,
		Checksum:        service.Checksum(doc),
	}
	for _, r := range results {
		if r.OK() {
			rec.ExchangesOK = append(rec.ExchangesOK, r.Exchange)
		}
	}
	for _, feed := range cfg.Feeds {
		if feed.Status != model.FeedStatusOK {
			rec.EmptyFeeds++
		}
		s.deps.Metrics.ObserveFeed(feed.ID, feed.Pair.String(), len(feed.Sources), len(feed.Outliers))
	}
	sort.Strings(rec.ExchangesOK)

	changes := s.diffPrevious(ctx, cfg)

	if err := s.deps.Repo.SaveArtifact(ctx, rec, doc); err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}
	s.deps.Metrics.ObserveRun(rec.FeedCount, rec.EmptyFeeds, rec.Duration)

	if err := s.deps.Sink.WriteReport(started, s.fmt.Header(rec), s.fmt.Lines(cfg, changes)); err != nil {
		log.Warn().Err(err).Msg("report output failed")
	}

	log.Info().
		Str("run_id", rec.RunID.String()).
		Int("feeds", rec.FeedCount).
		Int("empty_feeds", rec.EmptyFeeds).
		Strs("exchanges_ok", rec.ExchangesOK).
		Int("exchanges_failed", len(rec.ExchangesFailed)).
		Int("changes", len(changes)).
		Str("checksum", rec.Checksum).
		Msg("feed config generated")

	return &Result{Config: cfg, Doc: doc, Record: rec, Changes: changes}, nil
}

// diffPrevious 上一版本不可读时只记录告警，不影响本次生成
func (s *Service) diffPrevious(ctx context.Context, next *model.GeneratedConfig) []service.FeedChange {
	prevDoc, err := s.deps.Repo.LatestArtifact(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("previous artifact unavailable")
		return nil
	}
	if prevDoc == nil {
		return nil
	}
	prev, err := service.DecodeConfig(prevDoc)
	if err != nil {
		log.Warn().Err(err).Msg("previous artifact unreadable, skipping diff")
		return nil
	}
	changes := service.DiffConfigs(prev, next)
	for _, c := range changes {
		log.Info().
			Uint32("feed", c.FeedID).
			Str("pair", c.Pair).
			Str("change", string(c.Kind)).
			Str("added", strings.Join(c.AddedSources, ",")).
			Str("removed", strings.Join(c.RemovedSources, ",")).
			Msg("feed changed since previous run")
	}
	return changes
}
