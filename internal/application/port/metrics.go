package port

import "time"

// Recorder 运行指标
type Recorder interface {
	// ObserveFetch outcome is "ok" or a failure kind
	ObserveFetch(exchange, outcome string, d time.Duration)
	ObserveFeed(feedID uint32, pair string, sources, outliers int)
	ObserveRun(feeds, emptyFeeds int, d time.Duration)
}
