package generate

import (
	"context"
	"time"

	"feedgen/internal/application/port"
	"feedgen/internal/domain/model"
)

type noopRepo struct{}

func NewNoopRepo() port.Repository { return &noopRepo{} }

func (n *noopRepo) SaveArtifact(ctx context.Context, rec *model.RunRecord, doc []byte) error {
	return nil
}
func (n *noopRepo) LatestArtifact(ctx context.Context) ([]byte, error) {
	return nil, nil
}
func (n *noopRepo) Close() error { return nil }

type noopRecorder struct{}

func NewNoopRecorder() port.Recorder { return noopRecorder{} }

func (noopRecorder) ObserveFetch(exchange, outcome string, d time.Duration)         {}
func (noopRecorder) ObserveFeed(feedID uint32, pair string, sources, outliers int) {}
func (noopRecorder) ObserveRun(feeds, emptyFeeds int, d time.Duration)             {}

type noopSink struct{}

func (noopSink) WriteReport(ts time.Time, header string, lines []string) error { return nil }
func (noopSink) NewLine() error                                                { return nil }
