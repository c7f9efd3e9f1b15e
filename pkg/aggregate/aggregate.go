// Package aggregate projects a neighborhood fetch into the consumer-facing
// view: record ids in order, the open subset with primary-color marking, the
// closed-primary count, and the adjacent page numbers.
package aggregate

import (
	"github.com/tallyhq/records-client/pkg/paginate"
	"github.com/tallyhq/records-client/pkg/records"
)

// Status describes how complete a retrieval was.
type Status string

const (
	// StatusOK means the page and both probes succeeded.
	StatusOK Status = "ok"

	// StatusPartial means the page succeeded but at least one adjacency
	// probe failed, so a neighbor may exist that is reported as absent.
	StatusPartial Status = "partial"

	// StatusFailed means the current page itself yielded no value and the
	// record fields degrade to empty.
	StatusFailed Status = "failed"
)

// Result is the aggregate view of one page. Previous and Next marshal as
// null when absent; IDs and Open are never null, an empty page marshals as
// empty arrays.
type Result struct {
	Previous           *int             `json:"previousPage"`
	Next               *int             `json:"nextPage"`
	IDs                []int64          `json:"ids"`
	Open               []records.Record `json:"open"`
	ClosedPrimaryCount int              `json:"closedPrimaryCount"`
	Status             Status           `json:"status"`
}

// Transform builds the aggregate view from a neighborhood fetch. It is a pure
// projection and never mutates the input.
func Transform(in paginate.Result) Result {
	out := Result{
		IDs:  make([]int64, 0, len(in.Records)),
		Open: []records.Record{},
	}

	if in.Previous != nil {
		p := *in.Previous
		out.Previous = &p
	}
	if in.Next != nil {
		n := *in.Next
		out.Next = &n
	}

	for _, rec := range in.Records {
		out.IDs = append(out.IDs, rec.ID)

		if rec.IsOpen() {
			out.Open = append(out.Open, rec.WithPrimary())
		}
		if rec.IsClosed() && records.IsPrimaryColor(rec.Color) {
			out.ClosedPrimaryCount++
		}
	}

	switch {
	case in.Failed:
		out.Status = StatusFailed
	case in.ProbeFailures > 0:
		out.Status = StatusPartial
	default:
		out.Status = StatusOK
	}

	return out
}
