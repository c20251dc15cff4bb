package pubsub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohamedkhairy/ta-engine/internal/config"
	"github.com/mohamedkhairy/ta-engine/pkg/logger"
)

// Message is one entry read from a Redis stream.
type Message struct {
	ID     string
	Stream string
	Values map[string]interface{}
}

// StreamClient is the subset of Redis stream operations the publisher and
// consumer need. Tests substitute a fake.
type StreamClient interface {
	PublishBatch(ctx context.Context, stream string, messages []map[string]interface{}) error
	Consume(ctx context.Context, stream, group, consumer string) (<-chan Message, error)
	Ack(ctx context.Context, stream, group, id string) error
	Close() error
}

// Client implements StreamClient on a real Redis connection.
type Client struct {
	client *redis.Client
}

// NewClient connects to Redis and verifies the connection.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
	)

	return &Client{client: rdb}, nil
}

// PublishBatch appends messages to a stream in one pipeline.
func (c *Client) PublishBatch(ctx context.Context, stream string, messages []map[string]interface{}) error {
	if len(messages) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, msg := range messages {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: stream,
			Values: msg,
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish batch to stream %s: %w", stream, err)
	}
	return nil
}

// Consume reads a stream through a consumer group, creating the group (and
// the stream, via MKSTREAM) when missing. The returned channel closes when
// ctx is cancelled.
func (c *Client) Consume(ctx context.Context, stream, group, consumer string) (<-chan Message, error) {
	messageChan := make(chan Message, 100)

	if err := c.ensureGroup(ctx, stream, group); err != nil {
		logger.Warn("Failed to create consumer group, will retry in read loop",
			logger.ErrorField(err),
			logger.String("stream", stream),
			logger.String("group", group),
		)
	}

	go func() {
		defer close(messageChan)

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    group,
				Consumer: consumer,
				Streams:  []string{stream, ">"},
				Count:    10,
				Block:    time.Second,
			}).Result()

			if err != nil {
				if err == redis.Nil {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				if strings.Contains(err.Error(), "NOGROUP") {
					if createErr := c.ensureGroup(ctx, stream, group); createErr != nil {
						logger.Error("Failed to recreate consumer group",
							logger.ErrorField(createErr),
							logger.String("stream", stream),
							logger.String("group", group),
						)
					}
					time.Sleep(2 * time.Second)
					continue
				}
				logger.Error("Error reading from stream",
					logger.ErrorField(err),
					logger.String("stream", stream),
				)
				time.Sleep(time.Second)
				continue
			}

			for _, s := range streams {
				for _, message := range s.Messages {
					msg := Message{
						ID:     message.ID,
						Stream: s.Stream,
						Values: message.Values,
					}
					select {
					case messageChan <- msg:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return messageChan, nil
}

func (c *Client) ensureGroup(ctx context.Context, stream, group string) error {
	err := c.client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err == nil || strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

// Ack acknowledges a message in a consumer group.
func (c *Client) Ack(ctx context.Context, stream, group, id string) error {
	return c.client.XAck(ctx, stream, group, id).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}
