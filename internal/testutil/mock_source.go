// Package testutil provides testing utilities for the records client.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/tallyhq/records-client/pkg/records"
)

// DefaultCollectionPath is the path the default handler serves records on.
const DefaultCollectionPath = "/records"

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockSource is a configurable mock collection API for testing.
//
// Its default handler serves a seeded record set with real limit/offset
// pagination and color filtering, and rejects requests that omit the color[]
// key outright, mirroring the upstream contract. Custom handlers can replace
// any path.
type MockSource struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	seeded   []records.Record

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
	Queries           []url.Values
}

// NewMockSource creates a new mock collection server.
func NewMockSource() *MockSource {
	mock := &MockSource{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.Queries = append(mock.Queries, r.URL.Query())
		mock.mu.Unlock()

		// Check for custom handler
		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSource) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSource) Close() {
	m.server.Close()
}

// Reset clears all tracking counters and the seeded record set.
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.Queries = nil
	m.seeded = nil
}

// Seed replaces the record set served by the default collection handler.
// Records are served in seed order.
func (m *MockSource) Seed(recs ...records.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeded = append([]records.Record{}, recs...)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockSource) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple canned response for a path.
func (m *MockSource) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockSource) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// QueriesSeen returns a copy of every query string received, in arrival order.
func (m *MockSource) QueriesSeen() []url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]url.Values{}, m.Queries...)
}

// defaultHandler serves the seeded record set on the collection path with
// limit/offset pagination and color filtering.
func (m *MockSource) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-RateLimit-Remaining", "100")
	w.Header().Set("X-RateLimit-Reset", "60")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if r.URL.Path != DefaultCollectionPath {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "not found"}`))
		return
	}

	q := r.URL.Query()

	// The upstream endpoint rejects requests without the color filter key,
	// even when the filter is empty.
	colors, ok := q["color[]"]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "color filter is required"}`))
		return
	}

	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil {
		offset = 0
	}

	m.mu.RLock()
	filtered := filterByColor(m.seeded, colors)
	m.mu.RUnlock()

	// Negative offsets and offsets past the end yield an empty page.
	page := []records.Record{}
	if offset >= 0 && offset < len(filtered) {
		end := offset + limit
		if end > len(filtered) {
			end = len(filtered)
		}
		page = filtered[offset:end]
	}

	body, err := json.Marshal(page)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "marshal failure"}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// filterByColor keeps the records whose color is in the filter. A filter with
// no non-empty values keeps everything.
func filterByColor(recs []records.Record, colors []string) []records.Record {
	wanted := make(map[string]bool, len(colors))
	for _, c := range colors {
		if c != "" {
			wanted[c] = true
		}
	}
	if len(wanted) == 0 {
		return recs
	}

	filtered := make([]records.Record, 0, len(recs))
	for _, rec := range recs {
		if wanted[rec.Color] {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// NewHealthyResponse creates a standard 200 OK response with budget headers.
func NewHealthyResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "100",
			"X-RateLimit-Reset":     "60",
			"Content-Type":          "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "internal server error"}`,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "95",
			"X-RateLimit-Reset":     "60",
			"Content-Type":          "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response with a
// dwindling budget.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "rate limit exceeded"}`,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "5",
			"X-RateLimit-Reset":     "30",
			"Content-Type":          "application/json; charset=utf-8",
		},
	}
}

// NewRedirectResponse creates a 302 redirect, which the client surfaces
// instead of following.
func NewRedirectResponse(location string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusFound,
		Headers: map[string]string{
			"Location": location,
		},
	}
}

// NewMalformedResponse creates a 200 OK response whose body does not decode
// as a record array.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"unexpected": "shape"`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
