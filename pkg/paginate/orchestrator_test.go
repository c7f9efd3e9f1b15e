package paginate

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/tallyhq/records-client/pkg/query"
	"github.com/tallyhq/records-client/pkg/records"
)

// stubSource serves canned results keyed by page number and captures every
// query it sees.
type stubSource struct {
	mu      sync.Mutex
	pages   map[int]PageResult
	queries []query.PageQuery
}

func (s *stubSource) FetchPage(ctx context.Context, q query.PageQuery) PageResult {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()

	if r, ok := s.pages[q.Page()]; ok {
		return r
	}
	return PageResult{Page: q.Page(), StatusCode: 200, Records: []records.Record{}}
}

func (s *stubSource) seenOffsets() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	offsets := make([]int, 0, len(s.queries))
	for _, q := range s.queries {
		offsets = append(offsets, q.Offset)
	}
	sort.Ints(offsets)
	return offsets
}

func pageOf(page int, ids ...int64) PageResult {
	recs := make([]records.Record, 0, len(ids))
	for _, id := range ids {
		recs = append(recs, records.Record{ID: id, Color: "red", Disposition: records.DispositionOpen})
	}
	return PageResult{Page: page, StatusCode: 200, Records: recs}
}

func TestFetch_MiddlePageWithBothNeighbors(t *testing.T) {
	src := &stubSource{pages: map[int]PageResult{
		1: pageOf(1, 1),
		2: pageOf(2, 10, 11),
		3: pageOf(3, 20),
	}}
	orch := NewOrchestrator(src)

	result := orch.Fetch(context.Background(), query.Options{Page: 2})

	if result.Page != 2 {
		t.Errorf("Page = %d, want 2", result.Page)
	}
	if result.Failed {
		t.Error("Failed = true, want false")
	}
	if len(result.Records) != 2 || result.Records[0].ID != 10 || result.Records[1].ID != 11 {
		t.Errorf("Records = %+v, want ids [10 11] in order", result.Records)
	}
	if result.Previous == nil || *result.Previous != 1 {
		t.Errorf("Previous = %v, want 1", result.Previous)
	}
	if result.Next == nil || *result.Next != 3 {
		t.Errorf("Next = %v, want 3", result.Next)
	}
	if result.ProbeFailures != 0 {
		t.Errorf("ProbeFailures = %d, want 0", result.ProbeFailures)
	}
}

func TestFetch_LastPageHasNoNext(t *testing.T) {
	src := &stubSource{pages: map[int]PageResult{
		2: pageOf(2, 1),
		3: pageOf(3, 30),
		// page 4 falls through to the empty default
	}}
	orch := NewOrchestrator(src)

	result := orch.Fetch(context.Background(), query.Options{Page: 3})

	if result.Previous == nil || *result.Previous != 2 {
		t.Errorf("Previous = %v, want 2", result.Previous)
	}
	if result.Next != nil {
		t.Errorf("Next = %d, want nil", *result.Next)
	}
}

func TestFetch_FirstPageProbesPageZero(t *testing.T) {
	src := &stubSource{pages: map[int]PageResult{
		1: pageOf(1, 1, 2),
		2: pageOf(2, 3),
	}}
	orch := NewOrchestrator(src)

	result := orch.Fetch(context.Background(), query.Options{Page: 1})

	if result.Previous != nil {
		t.Errorf("Previous = %d, want nil", *result.Previous)
	}
	if result.Next == nil || *result.Next != 2 {
		t.Errorf("Next = %v, want 2", result.Next)
	}

	// The previous probe for page 1 targets page 0, and its negative offset
	// is forwarded untouched.
	if got, want := src.seenOffsets(), []int{-10, 0, 10}; len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("probe offsets = %v, want %v", got, want)
	}
}

func TestFetch_PageCoercion(t *testing.T) {
	tests := []struct {
		name string
		page int
	}{
		{name: "zero", page: 0},
		{name: "negative", page: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &stubSource{pages: map[int]PageResult{1: pageOf(1, 1)}}
			orch := NewOrchestrator(src)

			result := orch.Fetch(context.Background(), query.Options{Page: tt.page})

			if result.Page != 1 {
				t.Errorf("Page = %d, want 1", result.Page)
			}
			if got, want := src.seenOffsets(), []int{-10, 0, 10}; len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
				t.Errorf("probe offsets = %v, want %v", got, want)
			}
		})
	}
}

func TestFetch_FailedCurrentPageDegrades(t *testing.T) {
	src := &stubSource{pages: map[int]PageResult{
		1: pageOf(1, 1),
		2: {Page: 2, StatusCode: 500, Failure: FailureStatus},
		3: pageOf(3, 30),
	}}
	orch := NewOrchestrator(src)

	result := orch.Fetch(context.Background(), query.Options{Page: 2})

	if !result.Failed {
		t.Error("Failed = false, want true")
	}
	if result.Records == nil {
		t.Fatal("Records = nil, want empty slice")
	}
	if len(result.Records) != 0 {
		t.Errorf("len(Records) = %d, want 0", len(result.Records))
	}
	if result.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", result.StatusCode)
	}

	// Probes are honored even when the current page failed.
	if result.Previous == nil || *result.Previous != 1 {
		t.Errorf("Previous = %v, want 1", result.Previous)
	}
	if result.Next == nil || *result.Next != 3 {
		t.Errorf("Next = %v, want 3", result.Next)
	}
}

func TestFetch_FailedProbeTreatedAsAbsent(t *testing.T) {
	src := &stubSource{pages: map[int]PageResult{
		1: {Page: 1, Failure: FailureNetwork, Err: fmt.Errorf("dial tcp: connection refused")},
		2: pageOf(2, 10),
		3: pageOf(3, 30),
	}}
	orch := NewOrchestrator(src)

	result := orch.Fetch(context.Background(), query.Options{Page: 2})

	if result.Previous != nil {
		t.Errorf("Previous = %d, want nil for failed probe", *result.Previous)
	}
	if result.Next == nil || *result.Next != 3 {
		t.Errorf("Next = %v, want 3", result.Next)
	}
	if result.ProbeFailures != 1 {
		t.Errorf("ProbeFailures = %d, want 1", result.ProbeFailures)
	}
	if result.Failed {
		t.Error("Failed = true, want false when only a probe failed")
	}
}

func TestFetch_BothProbesFail(t *testing.T) {
	src := &stubSource{pages: map[int]PageResult{
		1: {Page: 1, Failure: FailureNetwork},
		2: pageOf(2, 10),
		3: {Page: 3, StatusCode: 503, Failure: FailureStatus},
	}}
	orch := NewOrchestrator(src)

	result := orch.Fetch(context.Background(), query.Options{Page: 2})

	if result.Previous != nil || result.Next != nil {
		t.Errorf("Previous = %v, Next = %v, want both nil", result.Previous, result.Next)
	}
	if result.ProbeFailures != 2 {
		t.Errorf("ProbeFailures = %d, want 2", result.ProbeFailures)
	}
	if result.Failed {
		t.Error("Failed = true, want false")
	}
	if len(result.Records) != 1 {
		t.Errorf("len(Records) = %d, want 1", len(result.Records))
	}
}

func TestFetch_NormalizesNilRecords(t *testing.T) {
	src := &stubSource{pages: map[int]PageResult{
		2: {Page: 2, StatusCode: 200, Records: nil},
	}}
	orch := NewOrchestrator(src)

	result := orch.Fetch(context.Background(), query.Options{Page: 2})

	if result.Records == nil {
		t.Fatal("Records = nil, want empty slice")
	}
	if result.Failed {
		t.Error("Failed = true, want false")
	}
}

// barrierSource blocks every fetch until released, so the test can prove all
// three fetches are in flight at the same time.
type barrierSource struct {
	arrived chan struct{}
	release chan struct{}
}

func (b *barrierSource) FetchPage(ctx context.Context, q query.PageQuery) PageResult {
	b.arrived <- struct{}{}
	<-b.release
	return PageResult{Page: q.Page(), StatusCode: 200, Records: []records.Record{}}
}

func TestFetch_LaunchesAllThreeConcurrently(t *testing.T) {
	src := &barrierSource{
		arrived: make(chan struct{}, 3),
		release: make(chan struct{}),
	}
	orch := NewOrchestrator(src)

	done := make(chan Result, 1)
	go func() {
		done <- orch.Fetch(context.Background(), query.Options{Page: 2})
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-src.arrived:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 3 fetches in flight, want all three concurrent", i)
		}
	}
	close(src.release)

	select {
	case result := <-done:
		if result.Page != 2 {
			t.Errorf("Page = %d, want 2", result.Page)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch() did not return after all fetches were released")
	}
}

// mixedSource fails the previous probe immediately while the other two pages
// take their time.
type mixedSource struct{}

func (mixedSource) FetchPage(ctx context.Context, q query.PageQuery) PageResult {
	if q.Page() == 1 {
		return PageResult{Page: 1, Failure: FailureNetwork, Err: fmt.Errorf("dial tcp: connection refused")}
	}
	time.Sleep(50 * time.Millisecond)
	return pageOf(q.Page(), int64(q.Page()*100))
}

func TestFetch_FailedProbeDoesNotCancelSiblings(t *testing.T) {
	orch := NewOrchestrator(mixedSource{})

	result := orch.Fetch(context.Background(), query.Options{Page: 2})

	if len(result.Records) != 1 {
		t.Errorf("len(Records) = %d, want 1 despite failed probe", len(result.Records))
	}
	if result.Next == nil {
		t.Error("Next = nil, want 3: the slow probe must still complete")
	}
	if result.Previous != nil {
		t.Errorf("Previous = %d, want nil", *result.Previous)
	}
	if result.ProbeFailures != 1 {
		t.Errorf("ProbeFailures = %d, want 1", result.ProbeFailures)
	}
}
