package generate

import (
	"fmt"
	"strings"

	"feedgen/internal/application/service"
	"feedgen/internal/domain/model"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiDim    = "\033[2m"
)

// Formatter 渲染一次运行的控制台报告
type Formatter struct {
	Color bool
}

func NewFormatter(color bool) *Formatter {
	return &Formatter{Color: color}
}

func (f *Formatter) colorize(s, c string) string {
	if !f.Color {
		return s
	}
	return c + s + ansiReset
}

// Header 一行摘要
func (f *Formatter) Header(rec *model.RunRecord) string {
	failed := f.colorize(fmt.Sprintf("failed=%d", len(rec.ExchangesFailed)), ansiGreen)
	if len(rec.ExchangesFailed) > 0 {
		failed = f.colorize(fmt.Sprintf("failed=%d", len(rec.ExchangesFailed)), ansiRed)
	}
	return fmt.Sprintf("%s run=%s feeds=%d empty=%d exchanges ok=%d %s checksum=%.12s",
		f.colorize("[FEEDGEN]", ansiDim),
		rec.RunID, rec.FeedCount, rec.EmptyFeeds, len(rec.ExchangesOK), failed, rec.Checksum)
}

// Lines 每个 feed 一行，随后是不可用交易所与相对上次的变化
func (f *Formatter) Lines(cfg *model.GeneratedConfig, changes []service.FeedChange) []string {
	lines := make([]string, 0, len(cfg.Feeds)+len(cfg.Unavailable)+len(changes))

	for _, feed := range cfg.Feeds {
		status := f.colorize(string(feed.Status), ansiGreen)
		if feed.Status != model.FeedStatusOK {
			status = f.colorize(string(feed.Status), ansiYellow)
		}
		line := fmt.Sprintf("#%-4d %-12s %-10s %s", feed.ID, feed.Pair, status, joinSources(feed.Sources))
		if len(feed.Outliers) > 0 {
			line += " " + f.colorize("outliers: "+joinSources(feed.Outliers), ansiRed)
		}
		lines = append(lines, line)
	}

	for _, u := range cfg.Unavailable {
		lines = append(lines, f.colorize(fmt.Sprintf("unavailable %s (%s): %s", u.Exchange, u.Kind, u.Reason), ansiRed))
	}

	for _, c := range changes {
		switch c.Kind {
		case service.ChangeAdded:
			lines = append(lines, f.colorize(fmt.Sprintf("+ feed #%d %s", c.FeedID, c.Pair), ansiGreen))
		case service.ChangeRemoved:
			lines = append(lines, f.colorize(fmt.Sprintf("- feed #%d %s", c.FeedID, c.Pair), ansiRed))
		default:
			var parts []string
			if c.StatusBefore != c.StatusAfter {
				parts = append(parts, fmt.Sprintf("status %s -> %s", c.StatusBefore, c.StatusAfter))
			}
			if len(c.AddedSources) > 0 {
				parts = append(parts, "+"+strings.Join(c.AddedSources, ",+"))
			}
			if len(c.RemovedSources) > 0 {
				parts = append(parts, "-"+strings.Join(c.RemovedSources, ",-"))
			}
			lines = append(lines, f.colorize(fmt.Sprintf("~ feed #%d %s %s", c.FeedID, c.Pair, strings.Join(parts, " ")), ansiYellow))
		}
	}
	return lines
}

func joinSources(sources []model.FeedSource) string {
	if len(sources) == 0 {
		return "--"
	}
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		parts = append(parts, s.Exchange+":"+s.Price.String())
	}
	return strings.Join(parts, " ")
}
