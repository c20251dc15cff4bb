package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohamedkhairy/ta-engine/internal/api"
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

	logger.Info("Starting TA API service",
		logger.Int("port", cfg.API.Port),
		logger.Int("rate_limit_rps", cfg.API.RateLimitRPS),
		logger.Int("max_request_bars", cfg.API.MaxRequestBars),
	)

	// Initialize websocket hub
	hub := api.NewHub(api.HubConfig{
		PingInterval:   cfg.API.WSPingInterval,
		WriteTimeout:   cfg.API.WSWriteTimeout,
		MaxConnections: cfg.API.WSMaxConnection,
	})
	defer hub.Close()

	// Live updates over the websocket need a bar feed. Redis is optional
	// here: without it the service still serves batch calculations.
	var barConsumer *pubsub.BarConsumer
	redisClient, err := pubsub.NewClient(cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, websocket updates disabled",
			logger.ErrorField(err),
		)
	} else {
		defer redisClient.Close()

		specs, err := engine.SpecsFor(cfg.Stream.Indicators)
		if err != nil {
			logger.Fatal("Invalid indicator configuration",
				logger.ErrorField(err),
			)
		}

		eng := engine.New(specs)
		eng.SetRehydrateLimit(cfg.Stream.MaxBars)
		eng.SetOnResults(hub.Broadcast)

		barConsumer = pubsub.NewBarConsumer(redisClient, pubsub.BarConsumerConfig{
			Stream:        cfg.Stream.BarStream,
			ConsumerGroup: cfg.Stream.ConsumerGroup,
			ConsumerName:  fmt.Sprintf("%s-api", cfg.Stream.ConsumerName),
		}, eng)

		if err := barConsumer.Start(); err != nil {
			logger.Fatal("Failed to start bar consumer",
				logger.ErrorField(err),
			)
		}
		defer barConsumer.Stop()

		logger.Info("Websocket updates enabled",
			logger.String("stream", cfg.Stream.BarStream),
			logger.String("consumer_group", cfg.Stream.ConsumerGroup),
		)
	}

	// Set up router
	router := api.NewRouter(api.RouterConfig{
		RateLimitRPS: cfg.API.RateLimitRPS,
		MaxBars:      cfg.API.MaxRequestBars,
		Hub:          hub,
	})

	// Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server",
			logger.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server",
				logger.ErrorField(err),
			)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down TA API service")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down HTTP server",
			logger.ErrorField(err),
		)
	}

	logger.Info("TA API service stopped")
}
