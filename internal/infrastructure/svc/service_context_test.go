package svc

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/config"
)

func TestNewWiresStorageAndSources(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()
	cfg, err := config.Parse(fmt.Sprintf(`
[app]
output_path = %q

[aggregation]
exchange_priority = ["bybit", "binance"]

[exchanges.binance]
enabled = true

[exchanges.bybit]
enabled = true

[storage.sqlite]
enabled = true
path = %q

[storage.redis]
enabled = true
addr = %q
`, filepath.Join(dir, "feeds.json"), filepath.Join(dir, "feedgen.db"), mr.Addr()))
	require.NoError(t, err)

	sc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer sc.Close()

	deps := sc.BuildGenerateServiceDeps()
	assert.Len(t, deps.Sources, 2)
	assert.NotNil(t, deps.Aggregator)
	assert.NotNil(t, deps.Repo)

	ctx := context.Background()
	doc, err := deps.Repo.LatestArtifact(ctx)
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.NoError(t, sc.FlushMetrics())

	rec := &model.RunRecord{
		RunID: uuid.New(), StartedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		FeedCount: 1, ExchangesOK: []string{"binance"}, Checksum: "abc",
		ExchangesFailed: []model.ExchangeFailure{{Exchange: "bybit", Kind: model.FailureTimeout, Reason: "deadline"}},
	}
	require.NoError(t, deps.Repo.SaveArtifact(ctx, rec, []byte(`{"version":1,"feeds":[]}`)))

	runs, err := sc.LogRecentRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, rec.RunID, runs[0].RunID)
	assert.Equal(t, "abc", runs[0].Checksum)
	require.Len(t, runs[0].Failures, 1)
	assert.Equal(t, model.FailureTimeout, runs[0].Failures[0].Kind)

	doc, err = deps.Repo.LatestArtifact(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"feeds":[]}`, string(doc))
}

func TestNewFailsWhenRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg, err := config.Parse(fmt.Sprintf(`
[exchanges.binance]
enabled = true

[storage.redis]
enabled = true
addr = %q
`, addr))
	require.NoError(t, err)

	_, err = New(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrStorageInitFailed)
}

func TestNewFailsWithoutRegisteredVenues(t *testing.T) {
	cfg, err := config.Parse(fmt.Sprintf(`
[app]
output_path = %q

[exchanges.nosuchvenue]
enabled = true
`, filepath.Join(t.TempDir(), "feeds.json")))
	require.NoError(t, err)

	_, err = New(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrNoSourcesEnabled)
}
