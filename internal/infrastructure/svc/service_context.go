package svc

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"feedgen/internal/application/port"
	"feedgen/internal/application/service"
	"feedgen/internal/application/usecase/generate"
	dsvc "feedgen/internal/domain/service"
	"feedgen/internal/infrastructure/config"
	"feedgen/internal/infrastructure/factory"
	"feedgen/internal/infrastructure/metrics"
	"feedgen/internal/infrastructure/storage/composite"
	filerepo "feedgen/internal/infrastructure/storage/file"
	pgrepo "feedgen/internal/infrastructure/storage/postgres"
	redisrepo "feedgen/internal/infrastructure/storage/redis"
	sqliterepo "feedgen/internal/infrastructure/storage/sqlite"
	"feedgen/internal/interfaces/console"
)

type ServiceContext struct {
	Ctx    context.Context
	Config *config.Config

	// 基础设施层（第一层初始化）
	sources     *factory.Sources
	redisClient *redisclient.Client
	fileRepo    *filerepo.Repo
	sqliteRepo  *sqliterepo.Repo
	pgRepo      *pgrepo.Repo
	redisRepo   *redisrepo.Repo
	Metrics     *metrics.Metrics

	// 输出端口
	Sink port.Sink
	Repo port.Repository

	// 应用业务组件（依赖基础设施）
	aggregator *service.Aggregator

	// 资源管理
	closerChain []func() error
}

// New 创建并初始化 ServiceContext
// 这是应用启动的唯一入口点，所有依赖初始化都在这里完成
func New(ctx context.Context, cfg *config.Config) (*ServiceContext, error) {
	sc := &ServiceContext{
		Ctx:         ctx,
		Config:      cfg,
		Sink:        console.NewSink(),
		Metrics:     metrics.New(""),
		closerChain: make([]func() error, 0),
	}

	// 初始化所有组件，按依赖顺序
	if err := sc.initializeComponents(); err != nil {
		// 清理已初始化的资源
		_ = sc.Close()
		return nil, err
	}
	return sc, nil
}

// initializeComponents 初始化所有应用组件
func (sc *ServiceContext) initializeComponents() error {
	// 0. 存储层
	if err := sc.initializeStorage(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageInitFailed, err)
	}

	// 1. 交易所数据源
	sources, err := factory.NewSources(sc.Config)
	if err != nil {
		if errors.Is(err, factory.ErrNoSourcesEnabled) {
			return ErrNoSourcesEnabled
		}
		return fmt.Errorf("exchange sources: %w", err)
	}
	sc.sources = sources

	// 2. 聚合器
	normalizer := dsvc.NewNormalizer(dsvc.NormalizerConfig{
		AssetAliases:         sc.Config.Normalizer.AssetAliases,
		ExchangeAssetAliases: sc.Config.Normalizer.ExchangeAssetAliases,
		QuoteAliases:         sc.Config.Normalizer.QuoteAliases,
	})
	sc.aggregator = service.NewAggregator(
		normalizer,
		sc.Config.Aggregation.ExchangePriority,
		decimal.NewFromFloat(*sc.Config.Aggregation.OutlierThreshold),
	)

	log.Info().
		Int("exchanges", len(sources.Sources)).
		Msg("✓ All components initialized")
	return nil
}

// initializeStorage 文件输出始终启用，SQLite / Postgres / Redis 按配置启用
func (sc *ServiceContext) initializeStorage() error {
	sc.fileRepo = filerepo.New(sc.Config.App.OutputPath)
	repos := []port.Repository{}

	if sc.Config.Storage.SQLite.Enabled {
		if err := sc.initSQLite(); err != nil {
			return fmt.Errorf("sqlite initialization failed: %w", err)
		}
		repos = append(repos, sc.sqliteRepo)
	}

	if sc.Config.Storage.Postgres.Enabled {
		if err := sc.initPostgres(); err != nil {
			return fmt.Errorf("postgres initialization failed: %w", err)
		}
		repos = append(repos, sc.pgRepo)
	}

	if sc.Config.Storage.Redis.Enabled {
		if err := sc.initRedis(); err != nil {
			return fmt.Errorf("redis initialization failed: %w", err)
		}
		repos = append(repos, sc.redisRepo)
	}

	// 输出文件是主仓储，历史库尽力写入
	sc.Repo = composite.New(sc.fileRepo, repos...)
	return nil
}

// initRedis 初始化 Redis 连接
func (sc *ServiceContext) initRedis() error {
	rcfg := sc.Config.Storage.Redis
	rdb := redisclient.NewClient(&redisclient.Options{
		Addr:     rcfg.Addr,
		Password: rcfg.Password,
		DB:       rcfg.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(sc.Ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	sc.redisClient = rdb
	sc.redisRepo = redisrepo.New(
		rdb,
		rcfg.Prefix,
		time.Duration(rcfg.TTLSeconds)*time.Second,
		rcfg.Stream,
		rcfg.Channel,
	)

	// 注册关闭回调
	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", rcfg.Addr).
		Int("db", rcfg.DB).
		Msg("✓ Redis initialized")
	return nil
}

// initSQLite 初始化 SQLite 数据库
func (sc *ServiceContext) initSQLite() error {
	repo, err := sqliterepo.New(sc.Config.Storage.SQLite.Path)
	if err != nil {
		return fmt.Errorf("sqlite repo creation failed: %w", err)
	}
	sc.sqliteRepo = repo

	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})

	log.Info().
		Str("path", sc.Config.Storage.SQLite.Path).
		Msg("✓ SQLite initialized")
	return nil
}

// initPostgres 初始化 Postgres 归档
func (sc *ServiceContext) initPostgres() error {
	repo, err := pgrepo.New(sc.Config.Storage.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("postgres repo creation failed: %w", err)
	}
	sc.pgRepo = repo

	sc.closerChain = append(sc.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})

	log.Info().Msg("✓ Postgres initialized")
	return nil
}

// LogRecentRuns 从 SQLite 读取最近的运行记录并逐条记录日志，未启用 SQLite 时返回 nil
func (sc *ServiceContext) LogRecentRuns(ctx context.Context, limit int) ([]sqliterepo.RunSummary, error) {
	if sc.sqliteRepo == nil || limit <= 0 {
		return nil, nil
	}
	runs, err := sc.sqliteRepo.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	for _, r := range runs {
		failed := make([]string, 0, len(r.Failures))
		for _, f := range r.Failures {
			failed = append(failed, f.Exchange+"("+string(f.Kind)+")")
		}
		log.Info().
			Str("run_id", r.RunID.String()).
			Time("started", r.StartedAt).
			Dur("duration", r.Duration).
			Int("feeds", r.FeedCount).
			Int("empty", r.EmptyFeeds).
			Strs("ok", r.ExchangesOK).
			Strs("failed", failed).
			Str("checksum", r.Checksum).
			Msg("history")
	}
	return runs, nil
}

// BuildGenerateServiceDeps 构建生成服务所需的所有依赖
func (sc *ServiceContext) BuildGenerateServiceDeps() generate.ServiceDeps {
	return generate.ServiceDeps{
		Sources:         sc.sources.Sources,
		Aggregator:      sc.aggregator,
		ExchangeTimeout: sc.Config.App.ExchangeTimeout.Duration,
		Timeouts:        sc.sources.Timeouts,
		RunTimeout:      sc.Config.App.RunTimeout.Duration,
		Repo:            sc.Repo,
		Sink:            sc.Sink,
		Metrics:         sc.Metrics,
		Color:           sc.Config.App.LogConsole,
	}
}

// FlushMetrics 写出 textfile，未配置路径时跳过
func (sc *ServiceContext) FlushMetrics() error {
	path := sc.Config.App.MetricsTextfile
	if path == "" {
		return nil
	}
	if err := sc.Metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	log.Info().Str("path", path).Msg("metrics written")
	return nil
}

// Close 按照相反的顺序关闭所有资源
func (sc *ServiceContext) Close() error {
	for i := len(sc.closerChain) - 1; i >= 0; i-- {
		if err := sc.closerChain[i](); err != nil {
			log.Error().Err(err).Msg("error closing resource")
		}
	}
	sc.closerChain = nil
	return nil
}
