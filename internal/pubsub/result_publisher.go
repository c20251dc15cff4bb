package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohamedkhairy/ta-engine/pkg/logger"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

var (
	publishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_publish_total",
			Help: "Total number of indicator results published",
		},
		[]string{"stream"},
	)

	publishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_publish_errors_total",
			Help: "Total number of result publish errors",
		},
		[]string{"stream"},
	)

	publishLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "result_publish_latency_seconds",
			Help:    "Result publish latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		},
		[]string{"stream"},
	)

	publishBatchSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "result_publish_batch_size",
			Help:    "Batch size for result publishing",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"stream"},
	)
)

// ResultMessage is the wire envelope for one indicator result.
type ResultMessage struct {
	ID        string        `json:"id"`
	Symbol    string        `json:"symbol"`
	Indicator string        `json:"indicator"`
	Result    series.Result `json:"result"`
}

// ResultPublisherConfig holds configuration for the result publisher
type ResultPublisherConfig struct {
	StreamName    string
	BatchSize     int
	BatchTimeout  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultResultPublisherConfig returns default configuration
func DefaultResultPublisherConfig(streamName string) ResultPublisherConfig {
	return ResultPublisherConfig{
		StreamName:    streamName,
		BatchSize:     100,
		BatchTimeout:  100 * time.Millisecond,
		RetryAttempts: 3,
		RetryDelay:    100 * time.Millisecond,
	}
}

// ResultPublisher batches indicator results and writes them to a Redis
// stream. Each message carries a uuid so downstream consumers can dedupe.
type ResultPublisher struct {
	config  ResultPublisherConfig
	client  StreamClient
	batch   []*ResultMessage
	batchMu sync.Mutex
	ticker  *time.Ticker
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewResultPublisher creates a new result publisher
func NewResultPublisher(client StreamClient, config ResultPublisherConfig) *ResultPublisher {
	ctx, cancel := context.WithCancel(context.Background())

	return &ResultPublisher{
		config: config,
		client: client,
		batch:  make([]*ResultMessage, 0, config.BatchSize),
		ticker: time.NewTicker(config.BatchTimeout),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start starts the batch publishing loop
func (p *ResultPublisher) Start() {
	p.wg.Add(1)
	go p.batchLoop()
}

// Publish queues one result for publishing (non-blocking)
func (p *ResultPublisher) Publish(symbol, indicator string, result series.Result) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if indicator == "" {
		return fmt.Errorf("indicator cannot be empty")
	}

	msg := &ResultMessage{
		ID:        uuid.New().String(),
		Symbol:    symbol,
		Indicator: indicator,
		Result:    result,
	}

	p.batchMu.Lock()
	p.batch = append(p.batch, msg)
	shouldFlush := len(p.batch) >= p.config.BatchSize
	p.batchMu.Unlock()

	if shouldFlush {
		return p.flush()
	}
	return nil
}

func (p *ResultPublisher) batchLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			// Flush remaining items on shutdown
			p.flush()
			return
		case <-p.ticker.C:
			p.flush()
		}
	}
}

func (p *ResultPublisher) flush() error {
	p.batchMu.Lock()
	if len(p.batch) == 0 {
		p.batchMu.Unlock()
		return nil
	}
	batch := make([]*ResultMessage, len(p.batch))
	copy(batch, p.batch)
	p.batch = p.batch[:0]
	p.batchMu.Unlock()

	publishBatchSize.WithLabelValues(p.config.StreamName).Observe(float64(len(batch)))

	startTime := time.Now()

	messages := make([]map[string]interface{}, 0, len(batch))
	for _, msg := range batch {
		data, err := json.Marshal(msg)
		if err != nil {
			logger.Error("Failed to marshal result",
				logger.ErrorField(err),
				logger.String("symbol", msg.Symbol),
				logger.String("indicator", msg.Indicator),
			)
			continue
		}
		messages = append(messages, map[string]interface{}{
			"result": string(data),
		})
	}
	if len(messages) == 0 {
		return nil
	}

	var err error
	for attempt := 0; attempt < p.config.RetryAttempts; attempt++ {
		err = p.client.PublishBatch(p.ctx, p.config.StreamName, messages)
		if err == nil {
			break
		}
		if attempt < p.config.RetryAttempts-1 {
			logger.Warn("Failed to publish results, retrying",
				logger.ErrorField(err),
				logger.String("stream", p.config.StreamName),
				logger.Int("attempt", attempt+1),
				logger.Int("count", len(messages)),
			)
			time.Sleep(p.config.RetryDelay * time.Duration(attempt+1))
		}
	}

	if err != nil {
		publishErrors.WithLabelValues(p.config.StreamName).Add(float64(len(messages)))
		logger.Error("Failed to publish results after retries",
			logger.ErrorField(err),
			logger.String("stream", p.config.StreamName),
			logger.Int("count", len(messages)),
		)
		return err
	}

	publishTotal.WithLabelValues(p.config.StreamName).Add(float64(len(messages)))
	publishLatency.WithLabelValues(p.config.StreamName).Observe(time.Since(startTime).Seconds())

	logger.Debug("Published results to stream",
		logger.String("stream", p.config.StreamName),
		logger.Int("count", len(messages)),
	)

	return nil
}

// Flush forces an immediate flush of the current batch
func (p *ResultPublisher) Flush() error {
	return p.flush()
}

// Close stops the publisher and flushes remaining items
func (p *ResultPublisher) Close() error {
	p.cancel()
	p.ticker.Stop()
	p.wg.Wait()
	return p.flush()
}

// PendingCount returns the current batch size (for monitoring)
func (p *ResultPublisher) PendingCount() int {
	p.batchMu.Lock()
	defer p.batchMu.Unlock()
	return len(p.batch)
}
