// Command records-proxy exposes the record collection aggregate over HTTP.
//
// It serves GET /records?page=N&color=red&color=blue plus the usual
// operational endpoints: /health, /ready, and Prometheus /metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tallyhq/records-client/internal/config"
	"github.com/tallyhq/records-client/pkg/client"
	"github.com/tallyhq/records-client/pkg/logging"
	"github.com/tallyhq/records-client/pkg/query"
	"github.com/tallyhq/records-client/pkg/retriever"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (optional, environment overrides apply)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "records-proxy: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("records-proxy")

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	}

	r, err := retriever.New(retriever.Config{
		Client: client.Config{
			BaseURL:           cfg.Source.BaseURL,
			UserAgent:         cfg.Source.UserAgent,
			Redis:             redisClient,
			RequestsPerSecond: cfg.Source.RequestsPerSecond,
			Burst:             cfg.Source.Burst,
			Timeout:           cfg.Source.Timeout(),
		},
		CollectionPath: cfg.Source.CollectionPath,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create retriever")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/records", recordsHandler(r, logger))
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(redisClient))
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	go func() {
		logger.Info().
			Str("addr", cfg.Server.Addr).
			Str("source", cfg.Source.BaseURL).
			Str("user_agent", cfg.Source.UserAgent).
			Msg("Proxy listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Shutdown incomplete")
	}
	logger.Info().Msg("Proxy stopped")
}

// recordsHandler serves the aggregate view for one page of the collection.
// Retrieval never fails, so the handler always answers 200 with a result
// whose status field reports degradation.
func recordsHandler(r *retriever.Retriever, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		opts := query.Options{
			Page:   query.ParsePage(req.URL.Query().Get("page")),
			Colors: req.URL.Query()["color"],
		}

		// Bound the whole retrieval, not just the individual fetches.
		ctx, cancel := context.WithTimeout(req.Context(), 30*time.Second)
		defer cancel()

		result := r.Retrieve(ctx, opts)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			logger.Error().Err(err).Msg("Failed to write response")
		}
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports readiness. With a budget store configured, readiness
// requires Redis to answer a ping; without one there is nothing to wait for.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				http.Error(w, fmt.Sprintf("redis not ready: %v", err), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}
