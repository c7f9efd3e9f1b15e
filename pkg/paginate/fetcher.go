package paginate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/tallyhq/records-client/pkg/client"
	"github.com/tallyhq/records-client/pkg/query"
	"github.com/tallyhq/records-client/pkg/records"
)

// DefaultCollectionPath is the endpoint path serving the record collection.
const DefaultCollectionPath = "/records"

// Prometheus metrics for page fetching.
var recordsPageFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "records_page_fetches_total",
	Help: "Total page fetches by outcome",
}, []string{"outcome"})

// Getter is the transport dependency: one GET against an endpoint path that
// may carry a query string.
type Getter interface {
	Get(ctx context.Context, endpoint string) (*http.Response, error)
}

// FailureKind classifies why a page yielded no records.
type FailureKind string

const (
	// FailureNone marks a successful fetch.
	FailureNone FailureKind = ""

	// FailureNetwork marks a transport failure (no HTTP response).
	FailureNetwork FailureKind = "network"

	// FailureStatus marks an unsuccessful HTTP status in [400, 600).
	FailureStatus FailureKind = "status"

	// FailureRedirect marks a surfaced 3xx response. The endpoint never
	// redirects legitimately, so these are treated as failures.
	FailureRedirect FailureKind = "redirect"

	// FailureBody marks a 2xx response whose body did not decode as a
	// record array.
	FailureBody FailureKind = "malformed_body"
)

// PageResult is the outcome of fetching a single page. A failed fetch is a
// value, not an error: Records is empty, Failure says why, and StatusCode is
// kept for diagnostics when a response was received.
type PageResult struct {
	Page       int
	Records    []records.Record
	StatusCode int
	Failure    FailureKind
	Err        error
}

// OK reports whether the fetch succeeded.
func (r PageResult) OK() bool {
	return r.Failure == FailureNone
}

// HasRecords reports whether the page yielded at least one record.
func (r PageResult) HasRecords() bool {
	return len(r.Records) > 0
}

// Fetcher turns one page query into a PageResult. It never returns an error:
// every failure mode collapses into a no-value result so a bad page can
// degrade the aggregate instead of failing it.
type Fetcher struct {
	getter Getter
	path   string
}

// NewFetcher creates a fetcher for the given transport. An empty path selects
// DefaultCollectionPath.
func NewFetcher(getter Getter, path string) *Fetcher {
	if path == "" {
		path = DefaultCollectionPath
	}
	return &Fetcher{
		getter: getter,
		path:   path,
	}
}

// FetchPage fetches one page of the collection.
func (f *Fetcher) FetchPage(ctx context.Context, q query.PageQuery) PageResult {
	result := PageResult{Page: q.Page()}
	endpoint := f.path + "?" + q.Encode()

	resp, err := f.getter.Get(ctx, endpoint)
	if err != nil {
		// The transport retried already; whatever comes back here is final.
		// A retry-exhausted server error still carries its status code.
		result.Err = err
		result.Failure = FailureNetwork

		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
			result.StatusCode = apiErr.StatusCode
			result.Failure = FailureStatus
		}

		log.Warn().
			Err(err).
			Str("endpoint", f.path).
			Int("page", result.Page).
			Int("status_code", result.StatusCode).
			Str("failure", string(result.Failure)).
			Msg("Page fetch failed")
		recordsPageFetchesTotal.WithLabelValues(string(result.Failure)).Inc()
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		if err == nil {
			var recs []records.Record
			err = json.Unmarshal(body, &recs)
			if err == nil {
				result.Records = recs
				log.Debug().
					Str("endpoint", f.path).
					Int("page", result.Page).
					Int("offset", q.Offset).
					Int("count", len(recs)).
					Msg("Page fetched")
				recordsPageFetchesTotal.WithLabelValues("ok").Inc()
				return result
			}
		}
		result.Err = err
		result.Failure = FailureBody

	case resp.StatusCode >= 400:
		result.Failure = FailureStatus

	default:
		result.Failure = FailureRedirect
	}

	log.Warn().
		Str("endpoint", f.path).
		Int("page", result.Page).
		Int("status_code", result.StatusCode).
		Str("failure", string(result.Failure)).
		Msg("Page yielded no value")
	recordsPageFetchesTotal.WithLabelValues(string(result.Failure)).Inc()
	return result
}
