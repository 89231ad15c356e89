package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces the published ladders.
const DefaultKeyPrefix = "ladder"

// RedisPublisher stores averaged ladders in Redis.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher connects to addr and verifies the connection with PING.
func NewRedisPublisher(ctx context.Context, addr, prefix string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisPublisher{client: client, prefix: prefix}, nil
}

// Close releases the underlying connection pool.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// SizeKey is the key holding the size ladder.
func (p *RedisPublisher) SizeKey() string { return ladderKey(p.prefix, metricValueSize) }

// SSIMKey is the key holding the SSIM ladder.
func (p *RedisPublisher) SSIMKey() string { return ladderKey(p.prefix, metricValueSSIM) }

func ladderKey(prefix, metric string) string {
	return prefix + ":" + metric
}

// Publish writes both ladders and an updated_at timestamp in one transaction.
func (p *RedisPublisher) Publish(ctx context.Context, set LadderSet) error {
	sizes, err := json.Marshal(set.Sizes)
	if err != nil {
		return fmt.Errorf("encode size ladder: %w", err)
	}
	ssims, err := json.Marshal(set.SSIMs)
	if err != nil {
		return fmt.Errorf("encode ssim ladder: %w", err)
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, p.SizeKey(), sizes, 0)
		pipe.Set(ctx, p.SSIMKey(), ssims, 0)
		pipe.Set(ctx, ladderKey(p.prefix, "updated_at"), time.Now().UTC().Format(time.RFC3339), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
