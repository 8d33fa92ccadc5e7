package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"dataprep-systemv1/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	// Streams are trimmed so a re-run of the same instrument does not grow
	// the key without bound.
	streamMaxLen     = 20000
	defaultLatestTTL = 30 * time.Minute
	pipelineChunk    = 500
)

// RedisConfig configures the Redis sink.
type RedisConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// RedisSink publishes enriched rows to per-instrument Redis Streams for
// downstream backtest workers, SETs a latest-summary key, and PUBLISHes a
// completion event per instrument.
type RedisSink struct {
	client *goredis.Client
}

// NewRedisSink creates the sink and pings the server.
func NewRedisSink(cfg RedisConfig) (*RedisSink, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis-sink] connected to %s", cfg.Addr)
	return &RedisSink{client: client}, nil
}

// Client returns the underlying Redis client for health checks.
func (s *RedisSink) Client() *goredis.Client { return s.client }

// Write XADDs every row to the instrument's stream in pipelined chunks, then
// sets the summary key and publishes completion.
func (s *RedisSink) Write(ctx context.Context, table model.Table) error {
	streamKey := "enriched:" + table.Instrument

	for start := 0; start < len(table.Rows); start += pipelineChunk {
		end := start + pipelineChunk
		if end > len(table.Rows) {
			end = len(table.Rows)
		}

		pipe := s.client.Pipeline()
		for i := start; i < end; i++ {
			pipe.XAdd(ctx, &goredis.XAddArgs{
				Stream: streamKey,
				MaxLen: streamMaxLen,
				Approx: true,
				Values: map[string]interface{}{"data": string(table.Rows[i].JSON())},
			})
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redis pipeline %s rows %d..%d: %w", table.Instrument, start, end-1, err)
		}
	}

	summary, _ := json.Marshal(map[string]interface{}{
		"instrument": table.Instrument,
		"rows":       len(table.Rows),
		"written_at": time.Now().UTC().Format(time.RFC3339Nano),
	})

	pipe := s.client.Pipeline()
	pipe.Set(ctx, "enriched:latest:"+table.Instrument, string(summary), defaultLatestTTL)
	pipe.Publish(ctx, "pub:enriched:"+table.Instrument, string(summary))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis finalize %s: %w", table.Instrument, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
