package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/requeue/internal/core/domain"
)

// Client wraps Redis operations for the message broker.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Key helpers
func queueKey(queue string) string {
	return fmt.Sprintf("queue:%s", queue)
}

// PullBatch pops up to n messages from the head of a queue. Returns an
// empty slice when the queue is drained.
func (c *Client) PullBatch(ctx context.Context, queue string, n int) ([]*domain.Message, error) {
	raw, err := c.rdb.LPopCount(ctx, queueKey(queue), n).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lpop failed: %w", err)
	}

	msgs := make([]*domain.Message, 0, len(raw))
	for _, item := range raw {
		var msg domain.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("invalid message encoding: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}

// Push appends a message to the tail of a queue.
func (c *Client) Push(ctx context.Context, queue string, msg *domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := c.rdb.RPush(ctx, queueKey(queue), data).Err(); err != nil {
		return fmt.Errorf("rpush failed: %w", err)
	}
	return nil
}

// PushBatch appends multiple messages to the tail of a queue.
func (c *Client) PushBatch(ctx context.Context, queue string, msgs []*domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	items := make([]interface{}, 0, len(msgs))
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to encode message %s: %w", msg.ID, err)
		}
		items = append(items, data)
	}
	if err := c.rdb.RPush(ctx, queueKey(queue), items...).Err(); err != nil {
		return fmt.Errorf("rpush failed: %w", err)
	}
	return nil
}

// Depth returns the number of messages waiting in a queue.
func (c *Client) Depth(ctx context.Context, queue string) (int64, error) {
	n, err := c.rdb.LLen(ctx, queueKey(queue)).Result()
	if err != nil {
		return 0, fmt.Errorf("llen failed: %w", err)
	}
	return n, nil
}
