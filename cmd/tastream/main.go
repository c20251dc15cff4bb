package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohamedkhairy/ta-engine/internal/config"
	"github.com/mohamedkhairy/ta-engine/internal/engine"
	"github.com/mohamedkhairy/ta-engine/internal/pubsub"
	"github.com/mohamedkhairy/ta-engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting TA streaming worker",
		logger.Int("health_port", cfg.Stream.HealthCheckPort),
		logger.String("bar_stream", cfg.Stream.BarStream),
		logger.String("result_stream", cfg.Stream.ResultStream),
		logger.String("consumer_group", cfg.Stream.ConsumerGroup),
	)

	// Initialize Redis client
	redisClient, err := pubsub.NewClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to initialize Redis client",
			logger.ErrorField(err),
		)
	}
	defer redisClient.Close()

	// Build the indicator set for the engine
	specs, err := engine.SpecsFor(cfg.Stream.Indicators)
	if err != nil {
		logger.Fatal("Invalid indicator configuration",
			logger.ErrorField(err),
		)
	}

	eng := engine.New(specs)
	eng.SetRehydrateLimit(cfg.Stream.MaxBars)

	logger.Info("Configured indicators",
		logger.Int("count", len(specs)),
	)

	// Initialize result publisher
	publisherConfig := pubsub.DefaultResultPublisherConfig(cfg.Stream.ResultStream)
	if cfg.Stream.BatchSize > 0 {
		publisherConfig.BatchSize = cfg.Stream.BatchSize
	}
	if cfg.Stream.BatchTimeout > 0 {
		publisherConfig.BatchTimeout = cfg.Stream.BatchTimeout
	}
	publisher := pubsub.NewResultPublisher(redisClient, publisherConfig)
	publisher.Start()
	defer publisher.Close()

	// Publish every emitted result back to Redis
	eng.SetOnResults(func(symbol string, results []engine.NamedResult) {
		for _, r := range results {
			if err := publisher.Publish(symbol, r.Indicator, r.Result); err != nil {
				logger.Error("Failed to publish result",
					logger.ErrorField(err),
					logger.String("symbol", symbol),
					logger.String("indicator", r.Indicator),
				)
			}
		}
	})

	// Initialize bar consumer
	barConsumer := pubsub.NewBarConsumer(redisClient, pubsub.BarConsumerConfig{
		Stream:        cfg.Stream.BarStream,
		ConsumerGroup: cfg.Stream.ConsumerGroup,
		ConsumerName:  cfg.Stream.ConsumerName,
	}, eng)

	if err := barConsumer.Start(); err != nil {
		logger.Fatal("Failed to start bar consumer",
			logger.ErrorField(err),
		)
	}
	defer barConsumer.Stop()

	logger.Info("TA streaming worker started",
		logger.String("stream", cfg.Stream.BarStream),
		logger.String("consumer", cfg.Stream.ConsumerName),
	)

	// Setup health and metrics server
	var wg sync.WaitGroup
	healthRouter := setupHealthAndMetricsServer(eng, barConsumer, publisher)
	healthServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Stream.HealthCheckPort),
		Handler:      healthRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting health and metrics server",
			logger.Int("port", cfg.Stream.HealthCheckPort),
		)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health and metrics server failed",
				logger.ErrorField(err),
			)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down TA streaming worker")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Health server shutdown failed", logger.ErrorField(err))
	}

	wg.Wait()

	logger.Info("TA streaming worker stopped")
}

// setupHealthAndMetricsServer sets up HTTP endpoints for health checks and metrics
func setupHealthAndMetricsServer(
	eng *engine.Engine,
	consumer *pubsub.BarConsumer,
	publisher *pubsub.ResultPublisher,
) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		healthStatus := map[string]interface{}{
			"status":    "UP",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"checks": map[string]interface{}{
				"consumer": map[string]interface{}{
					"running":   consumer.IsRunning(),
					"processed": consumer.ProcessedCount(),
				},
				"engine": map[string]interface{}{
					"symbol_count": eng.SymbolCount(),
				},
				"publisher": map[string]interface{}{
					"pending": publisher.PendingCount(),
				},
			},
		}

		if !consumer.IsRunning() {
			status = http.StatusServiceUnavailable
			healthStatus["status"] = "DOWN"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(healthStatus)
	}).Methods("GET")

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if consumer.IsRunning() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("READY"))
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT READY"))
		}
	}).Methods("GET")

	router.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("LIVE"))
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler())

	return router
}
