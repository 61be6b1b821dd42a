package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
)

const redisPingTimeout = 5 * time.Second

type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisSink appends records to a Redis stream. The stream is trimmed
// approximately to maxLen entries when maxLen is positive.
type RedisSink struct {
	rdb    *redis.Client
	xadd   streamAdder
	stream string
	maxLen int64
}

// NewRedisSink connects to the redis URL and verifies the connection.
func NewRedisSink(url, stream string, maxLen int64) (*RedisSink, error) {
	if stream == "" {
		return nil, fmt.Errorf("redis sink: stream is required")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSink{rdb: rdb, xadd: rdb, stream: stream, maxLen: maxLen}, nil
}

func (s *RedisSink) Emit(ctx context.Context, rec errors.Record) error {
	rec = Stamp(rec)
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	values := map[string]any{
		"kind":     rec.Kind,
		"code":     string(rec.Code),
		"severity": rec.Severity.String(),
		"record":   payload,
	}
	if rec.RequestID != nil {
		values["request_id"] = *rec.RequestID
	}

	args := &redis.XAddArgs{Stream: s.stream, Values: values}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.xadd.XAdd(ctx, args).Err(); err != nil {
		return errors.FromTransport(err, "redis.xadd")
	}
	return nil
}

func (s *RedisSink) Close() error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
