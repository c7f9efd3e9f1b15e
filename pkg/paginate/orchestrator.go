package paginate

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tallyhq/records-client/pkg/query"
	"github.com/tallyhq/records-client/pkg/records"
)

// Prometheus metrics for neighborhood orchestration.
var recordsEmptyProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "records_empty_probes_total",
	Help: "Total adjacency probes that returned zero records",
}, []string{"direction"})

// PageSource fetches one page of the collection. *Fetcher implements it; tests
// substitute canned sources.
type PageSource interface {
	FetchPage(ctx context.Context, q query.PageQuery) PageResult
}

// Result is the outcome of a neighborhood fetch around one page.
//
// Previous and Next are nil when the adjacent probe found no records (or
// failed), so a consumer can distinguish "no earlier page" from page number
// zero. Failed reports that the current page itself yielded no value; the
// probes are still honored in that case.
type Result struct {
	Page          int
	Records       []records.Record
	Previous      *int
	Next          *int
	Failed        bool
	StatusCode    int
	ProbeFailures int
}

// Orchestrator fetches a page together with probes of both adjacent pages so
// the caller learns whether neighbors exist without a second round trip.
type Orchestrator struct {
	source PageSource
}

// NewOrchestrator creates an orchestrator over the given page source.
func NewOrchestrator(source PageSource) *Orchestrator {
	return &Orchestrator{source: source}
}

// Fetch resolves opts and issues three fetches concurrently: the requested
// page and both adjacent pages. It waits for all three to settle; a slow or
// failing probe never cancels the others. For page 1 the previous probe asks
// for page 0, whose negative offset the endpoint answers with an empty page.
//
// Fetch never returns an error. A failed current page degrades to an empty
// record set with Failed set, and each failed probe counts as an absent
// neighbor.
func (o *Orchestrator) Fetch(ctx context.Context, opts query.Options) Result {
	base := query.Resolve(opts)
	page := base.Page()

	var prev, cur, next PageResult

	// The closures always return nil: errgroup here is a pure join, with no
	// cancellation path between the three fetches.
	var g errgroup.Group
	g.Go(func() error {
		prev = o.source.FetchPage(ctx, base.ForPage(page-1))
		return nil
	})
	g.Go(func() error {
		cur = o.source.FetchPage(ctx, base)
		return nil
	})
	g.Go(func() error {
		next = o.source.FetchPage(ctx, base.ForPage(page+1))
		return nil
	})
	g.Wait()

	result := Result{
		Page:       page,
		Records:    cur.Records,
		StatusCode: cur.StatusCode,
	}
	if result.Records == nil {
		result.Records = []records.Record{}
	}

	if !cur.OK() {
		result.Failed = true
		log.Warn().
			Int("page", page).
			Int("status_code", cur.StatusCode).
			Str("failure", string(cur.Failure)).
			Msg("Current page failed, degrading to empty record set")
	}

	if prev.HasRecords() {
		p := page - 1
		result.Previous = &p
	} else if prev.OK() {
		recordsEmptyProbesTotal.WithLabelValues("previous").Inc()
	} else {
		result.ProbeFailures++
	}

	if next.HasRecords() {
		n := page + 1
		result.Next = &n
	} else if next.OK() {
		recordsEmptyProbesTotal.WithLabelValues("next").Inc()
	} else {
		result.ProbeFailures++
	}

	if result.ProbeFailures > 0 {
		log.Warn().
			Int("page", page).
			Int("probe_failures", result.ProbeFailures).
			Msg("Adjacency probes failed, treating neighbors as absent")
	}

	log.Debug().
		Int("page", page).
		Int("count", len(result.Records)).
		Bool("failed", result.Failed).
		Bool("has_previous", result.Previous != nil).
		Bool("has_next", result.Next != nil).
		Msg("Neighborhood fetch complete")

	return result
}
