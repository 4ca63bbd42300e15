package service

import (
	"errors"
	"fmt"
	"strings"

	"feedgen/internal/domain/model"
)

// MaxFeedDecimals 上限与 on-chain 侧保持一致
const MaxFeedDecimals = 36

var ErrEmptyRegistry = errors.New("feed registry is empty")

// ValidateRegistry reports every problem found, joined
func ValidateRegistry(feeds []model.FeedDefinition) error {
	if len(feeds) == 0 {
		return ErrEmptyRegistry
	}

	var errs []error
	seen := make(map[uint32]struct{}, len(feeds))
	for i, f := range feeds {
		if _, dup := seen[f.ID]; dup {
			errs = append(errs, fmt.Errorf("feeds[%d]: duplicate id %d", i, f.ID))
		}
		seen[f.ID] = struct{}{}

		if strings.TrimSpace(f.Pair.Base) == "" || strings.TrimSpace(f.Pair.Quote) == "" {
			errs = append(errs, fmt.Errorf("feeds[%d] id=%d: base and quote are required", i, f.ID))
		} else if strings.EqualFold(strings.TrimSpace(f.Pair.Base), strings.TrimSpace(f.Pair.Quote)) {
			errs = append(errs, fmt.Errorf("feeds[%d] id=%d: base equals quote", i, f.ID))
		}
		if f.Decimals > MaxFeedDecimals {
			errs = append(errs, fmt.Errorf("feeds[%d] id=%d: decimals %d > %d", i, f.ID, f.Decimals, MaxFeedDecimals))
		}
		if f.ReportIntervalMs <= 0 {
			errs = append(errs, fmt.Errorf("feeds[%d] id=%d: report_interval_ms must be > 0", i, f.ID))
		}
	}
	return errors.Join(errs...)
}
