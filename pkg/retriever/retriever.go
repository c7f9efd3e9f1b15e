// Package retriever composes transport, pagination, and aggregation into the
// one-call retrieval surface of the library.
package retriever

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tallyhq/records-client/pkg/aggregate"
	"github.com/tallyhq/records-client/pkg/client"
	"github.com/tallyhq/records-client/pkg/paginate"
	"github.com/tallyhq/records-client/pkg/query"
)

// Prometheus metrics for retrieval.
var (
	recordsRetrievalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "records_retrievals_total",
		Help: "Total retrievals by aggregate status",
	}, []string{"status"})

	recordsRetrieveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "records_retrieve_duration_seconds",
		Help:    "End-to-end duration of a neighborhood retrieval",
		Buckets: prometheus.DefBuckets,
	})
)

// Config assembles a Retriever.
type Config struct {
	// Client configures the HTTP transport.
	Client client.Config

	// CollectionPath overrides the endpoint path. Empty selects
	// paginate.DefaultCollectionPath.
	CollectionPath string
}

// DefaultConfig returns a retriever configuration with transport defaults for
// the given origin.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{Client: client.DefaultConfig(baseURL, userAgent)}
}

// Retriever is the library's top-level entry point.
type Retriever struct {
	orch   *paginate.Orchestrator
	logger zerolog.Logger
}

// New builds a Retriever. Configuration problems (bad base URL, missing
// user agent) surface here; Retrieve itself never returns an error.
func New(cfg Config) (*Retriever, error) {
	c, err := client.New(cfg.Client)
	if err != nil {
		return nil, err
	}

	fetcher := paginate.NewFetcher(c, cfg.CollectionPath)
	return &Retriever{
		orch:   paginate.NewOrchestrator(fetcher),
		logger: log.With().Str("component", "retriever").Logger(),
	}, nil
}

// Retrieve fetches the requested page together with its adjacency probes and
// aggregates the outcome.
//
// It never returns an error. Failed pages and probes are absorbed into the
// result (empty record fields, Status partial or failed) and logged here, so
// callers can always render something.
func (r *Retriever) Retrieve(ctx context.Context, opts query.Options) aggregate.Result {
	start := time.Now()

	neighborhood := r.orch.Fetch(ctx, opts)
	result := aggregate.Transform(neighborhood)

	duration := time.Since(start)
	recordsRetrieveDuration.Observe(duration.Seconds())
	recordsRetrievalsTotal.WithLabelValues(string(result.Status)).Inc()

	level := zerolog.DebugLevel
	if result.Status != aggregate.StatusOK {
		level = zerolog.WarnLevel
	}
	r.logger.WithLevel(level).
		Int("page", neighborhood.Page).
		Strs("colors", opts.Colors).
		Str("status", string(result.Status)).
		Int("records", len(result.IDs)).
		Int("probe_failures", neighborhood.ProbeFailures).
		Dur("duration", duration).
		Msg("Retrieval complete")

	return result
}
