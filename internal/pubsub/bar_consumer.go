package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohamedkhairy/ta-engine/pkg/logger"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

var (
	barsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bars_consumed_total",
			Help: "Total number of bars consumed from the stream",
		},
		[]string{"stream"},
	)

	barConsumeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bar_consume_errors_total",
			Help: "Total number of bar consume errors",
		},
		[]string{"stream", "reason"},
	)
)

// BarProcessor receives each decoded bar in stream order.
type BarProcessor interface {
	ProcessBar(bar series.Bar) error
}

// BarConsumerConfig holds configuration for the bar consumer
type BarConsumerConfig struct {
	Stream        string
	ConsumerGroup string
	ConsumerName  string
}

// BarConsumer reads finalized bars from a Redis stream through a consumer
// group, hands them to the processor, and acknowledges each message after
// processing. Malformed messages are acknowledged too so they are not
// redelivered forever.
type BarConsumer struct {
	config    BarConsumerConfig
	client    StreamClient
	processor BarProcessor
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   atomic.Bool
	processed atomic.Int64
}

// NewBarConsumer creates a new bar consumer
func NewBarConsumer(client StreamClient, config BarConsumerConfig, processor BarProcessor) *BarConsumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &BarConsumer{
		config:    config,
		client:    client,
		processor: processor,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins consuming bars
func (c *BarConsumer) Start() error {
	if c.processor == nil {
		return fmt.Errorf("no processor set")
	}

	messages, err := c.client.Consume(c.ctx, c.config.Stream, c.config.ConsumerGroup, c.config.ConsumerName)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.running.Store(true)
	c.wg.Add(1)
	go c.consumeLoop(messages)

	logger.Info("Bar consumer started",
		logger.String("stream", c.config.Stream),
		logger.String("group", c.config.ConsumerGroup),
		logger.String("consumer", c.config.ConsumerName),
	)
	return nil
}

func (c *BarConsumer) consumeLoop(messages <-chan Message) {
	defer c.wg.Done()
	defer c.running.Store(false)

	for msg := range messages {
		bar, err := decodeBar(msg)
		if err != nil {
			barConsumeErrors.WithLabelValues(c.config.Stream, "decode").Inc()
			logger.Error("Failed to decode bar",
				logger.ErrorField(err),
				logger.String("message_id", msg.ID),
			)
			c.ack(msg.ID)
			continue
		}

		if err := c.processor.ProcessBar(bar); err != nil {
			barConsumeErrors.WithLabelValues(c.config.Stream, "process").Inc()
			logger.Error("Failed to process bar",
				logger.ErrorField(err),
				logger.String("symbol", bar.Symbol),
				logger.String("message_id", msg.ID),
			)
			c.ack(msg.ID)
			continue
		}

		barsConsumed.WithLabelValues(c.config.Stream).Inc()
		c.processed.Add(1)
		c.ack(msg.ID)
	}
}

func (c *BarConsumer) ack(id string) {
	if err := c.client.Ack(c.ctx, c.config.Stream, c.config.ConsumerGroup, id); err != nil && c.ctx.Err() == nil {
		logger.Warn("Failed to ack message",
			logger.ErrorField(err),
			logger.String("message_id", id),
		)
	}
}

// decodeBar extracts a bar from a stream message. Bars are published under
// the "bar" field; any string field is accepted as a fallback.
func decodeBar(msg Message) (series.Bar, error) {
	barJSON, ok := msg.Values["bar"].(string)
	if !ok {
		for _, v := range msg.Values {
			if str, ok := v.(string); ok {
				barJSON = str
				break
			}
		}
		if barJSON == "" {
			return series.Bar{}, fmt.Errorf("no bar data found in message %s", msg.ID)
		}
	}

	var bar series.Bar
	if err := json.Unmarshal([]byte(barJSON), &bar); err != nil {
		return series.Bar{}, fmt.Errorf("failed to unmarshal bar: %w", err)
	}
	if bar.Symbol == "" {
		return series.Bar{}, fmt.Errorf("bar in message %s has no symbol", msg.ID)
	}
	return bar, nil
}

// Stop stops the consumer and waits for the loop to drain
func (c *BarConsumer) Stop() {
	c.cancel()
	c.wg.Wait()
}

// IsRunning reports whether the consume loop is active
func (c *BarConsumer) IsRunning() bool {
	return c.running.Load()
}

// ProcessedCount returns the number of successfully processed bars
func (c *BarConsumer) ProcessedCount() int64 {
	return c.processed.Load()
}
