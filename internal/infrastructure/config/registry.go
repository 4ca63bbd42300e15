package config

import (
	"strings"

	"github.com/BurntSushi/toml"

	"feedgen/internal/domain/model"
)

type feedEntry struct {
	ID               uint32   `toml:"id"`
	Description      string   `toml:"description"`
	Base             string   `toml:"base"`
	Quote            string   `toml:"quote"`
	Decimals         uint8    `toml:"decimals"`
	ReportIntervalMs int64    `toml:"report_interval_ms"`
	AcceptQuotes     []string `toml:"accept_quotes"`
}

type registryFile struct {
	Feeds []feedEntry `toml:"feeds"`
}

// LoadRegistry 读取 [[feeds]] 列表，保持文件中的顺序；语义校验由生成服务完成
func LoadRegistry(path string) ([]model.FeedDefinition, error) {
	var f registryFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, err
	}
	return f.definitions(), nil
}

func ParseRegistry(data string) ([]model.FeedDefinition, error) {
	var f registryFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, err
	}
	return f.definitions(), nil
}

func (f registryFile) definitions() []model.FeedDefinition {
	out := make([]model.FeedDefinition, 0, len(f.Feeds))
	for _, e := range f.Feeds {
		base := strings.ToUpper(strings.TrimSpace(e.Base))
		quote := strings.ToUpper(strings.TrimSpace(e.Quote))
		desc := e.Description
		if desc == "" && base != "" && quote != "" {
			desc = base + " / " + quote
		}
		out = append(out, model.FeedDefinition{
			ID:               e.ID,
			Description:      desc,
			Pair:             model.AssetPair{Base: base, Quote: quote},
			Decimals:         e.Decimals,
			ReportIntervalMs: e.ReportIntervalMs,
			AcceptQuotes:     e.AcceptQuotes,
		})
	}
	return out
}
