package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"feedgen/internal/application/usecase/generate"
	"feedgen/internal/infrastructure/config"
	"feedgen/internal/infrastructure/logger"
	"feedgen/internal/infrastructure/svc"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	feedsPath := flag.String("feeds", "configs/feeds.toml", "path to the feed registry")
	outPath := flag.String("out", "", "output path, overrides app.output_path")
	history := flag.Int("history", 5, "log the last N archived runs after generation (sqlite only, 0 disables)")
	flag.Parse()

	logger.Setup("info", true)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	if *outPath != "" {
		cfg.App.OutputPath = *outPath
	}
	logger.Setup(cfg.App.LogLevel, cfg.App.LogConsole)

	registry, err := config.LoadRegistry(*feedsPath)
	if err != nil {
		log.Fatal().Err(err).Str("feeds", *feedsPath).Msg("load feed registry failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialization failed")
	}

	log.Info().
		Str("config", *configPath).
		Str("feeds", *feedsPath).
		Int("registry", len(registry)).
		Strs("exchanges", cfg.GetEnabledExchanges()).
		Msg("feedgen started")

	res, err := generate.NewService(sc.BuildGenerateServiceDeps()).Run(ctx, registry)
	if ferr := sc.FlushMetrics(); ferr != nil {
		log.Warn().Err(ferr).Msg("metrics export failed")
	}
	if err == nil {
		if _, herr := sc.LogRecentRuns(ctx, *history); herr != nil {
			log.Warn().Err(herr).Msg("read run history failed")
		}
	}
	_ = sc.Close()
	if err != nil {
		log.Error().Err(err).Msg("generation failed")
		os.Exit(1)
	}

	log.Info().
		Str("output", cfg.App.OutputPath).
		Str("checksum", res.Record.Checksum).
		Msg("done")
}
