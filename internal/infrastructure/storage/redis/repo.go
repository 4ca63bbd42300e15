package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"feedgen/internal/application/port"
	"feedgen/internal/domain/model"
)

const (
	fieldPayload  = "payload"
	fieldChecksum = "checksum"
	fieldRunID    = "run_id"
)

// Repo 最新配置写入 hash，运行摘要写入 stream，并在 channel 上发布通知
type Repo struct {
	rdb       *redis.Client
	prefix    string
	ttl       time.Duration
	keyLatest string // prefix + ":latest"
	stream    string
	channel   string
}

// Notice pubsub 消息体
type Notice struct {
	RunID    string `json:"run_id"`
	Checksum string `json:"checksum"`
	Feeds    int    `json:"feeds"`
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, stream, channel string) *Repo {
	if strings.TrimSpace(stream) == "" {
		stream = prefix + ":runs"
	}
	if strings.TrimSpace(channel) == "" {
		channel = prefix + ":config:pub"
	}
	return &Repo{
		rdb:       rdb,
		prefix:    prefix,
		ttl:       ttl,
		keyLatest: prefix + ":latest",
		stream:    stream,
		channel:   channel,
	}
}

func (r *Repo) SaveArtifact(ctx context.Context, rec *model.RunRecord, doc []byte) error {
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.keyLatest,
		fieldPayload, string(doc),
		fieldChecksum, rec.Checksum,
		fieldRunID, rec.RunID.String(),
	)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyLatest, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	failed, err := json.Marshal(rec.ExchangesFailed)
	if err != nil {
		return err
	}
	// 1) Stream: XADD <stream> * run summary
	if err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{
			"run_id":      rec.RunID.String(),
			"started_ms":  rec.StartedAt.UnixMilli(),
			"duration_ms": rec.Duration.Milliseconds(),
			"feeds":       rec.FeedCount,
			"empty_feeds": rec.EmptyFeeds,
			"exchanges":   strings.Join(rec.ExchangesOK, ","),
			"failed":      string(failed),
			"checksum":    rec.Checksum,
		},
	}).Err(); err != nil {
		return err
	}

	// 2) PubSub: 只发通知，消费者从 latest hash 读取全文
	msg, err := json.Marshal(Notice{RunID: rec.RunID.String(), Checksum: rec.Checksum, Feeds: rec.FeedCount})
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.channel, msg).Err()
}

func (r *Repo) LatestArtifact(ctx context.Context) ([]byte, error) {
	payload, err := r.rdb.HGet(ctx, r.keyLatest, fieldPayload).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Close 连接由 ServiceContext 管理
func (r *Repo) Close() error { return nil }

var _ port.Repository = (*Repo)(nil)
