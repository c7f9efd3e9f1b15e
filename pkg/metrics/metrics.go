// Package metrics provides the centralized Prometheus registry reference for
// the records client. All metrics are defined in their respective packages
// (client, ratelimit, paginate, retriever) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the records client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - records_requests_total{endpoint, status} (Counter): Total requests by endpoint and
//     HTTP status; synthetic statuses budget_blocked and network_error cover requests
//     that never produced a response
//   - records_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - records_errors_total{class} (Counter): Errors by class (client, server, redirect, network)
//   - records_pacing_wait_seconds (Histogram): Time spent waiting on the local request pacer
//
// Retry Metrics (pkg/client):
//   - records_retries_total{error_class} (Counter): Retry attempts by error class
//   - records_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - records_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Rate Limit Metrics (pkg/ratelimit):
//   - records_rate_limit_remaining (Gauge): Requests remaining in the upstream budget window
//   - records_rate_limit_blocks_total (Counter): Requests blocked due to critical budget
//   - records_rate_limit_throttles_total (Counter): Requests throttled due to warning budget
//
// Page Fetch Metrics (pkg/paginate):
//   - records_page_fetches_total{outcome} (Counter): Page fetches by outcome
//     (ok, network, status, redirect, malformed_body)
//   - records_empty_probes_total{direction} (Counter): Adjacency probes that found no
//     records, by direction (previous, next)
//
// Retrieval Metrics (pkg/retriever):
//   - records_retrievals_total{status} (Counter): Retrievals by aggregate status
//     (ok, partial, failed)
//   - records_retrieve_duration_seconds (Histogram): End-to-end retrieval duration
//
// Example Prometheus Queries:
//
//   # Page Fetch Failure Rate
//   sum(rate(records_page_fetches_total{outcome!="ok"}[5m])) /
//   sum(rate(records_page_fetches_total[5m]))
//
//   # Degraded Retrievals
//   rate(records_retrievals_total{status!="ok"}[5m])
//
//   # Budget Status
//   records_rate_limit_remaining < 10
//
//   # P95 Retrieval Latency
//   histogram_quantile(0.95, rate(records_retrieve_duration_seconds_bucket[5m]))
//
//   # Retry Pressure by Error Class
//   rate(records_retries_total[5m])
