// Package stream publishes committed sensor readings to a Redis stream for downstream consumers.
package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Bebel19/rugby-wheelchair-backend/pkg/models"
	"github.com/go-redis/redis/v8"
)

// DefaultStream is the stream readings are appended to
const DefaultStream = "sensor:readings"

// DefaultMaxLen bounds the stream length approximately
const DefaultMaxLen = 100000

// Config holds the Redis connection and stream settings
type Config struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	MaxLen   int64
}

// NewRedisClient creates a Redis client from cfg
func NewRedisClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisPublisher appends every reading to a Redis stream with XADD
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewPublisher connects to Redis and publishes to the stream named in cfg
func NewPublisher(cfg Config) *RedisPublisher {
	return NewRedisPublisher(NewRedisClient(cfg), cfg.Stream, cfg.MaxLen)
}

// NewRedisPublisher creates a publisher. Empty stream and non-positive
// maxLen fall back to the defaults.
func NewRedisPublisher(client *redis.Client, stream string, maxLen int64) *RedisPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &RedisPublisher{client: client, stream: stream, maxLen: maxLen}
}

// Stream returns the stream name
func (p *RedisPublisher) Stream() string {
	return p.stream
}

// Publish appends r as one stream entry
func (p *RedisPublisher) Publish(ctx context.Context, r models.Reading) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"kind":      string(r.Kind()),
			"sensor_id": r.Sensor(),
			"data":      string(data),
			"timestamp": r.At().Unix(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}

	return nil
}

// Ping tests the Redis connection
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
