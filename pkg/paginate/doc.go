// Package paginate fetches pages of the record collection and probes the
// adjacent pages around a target.
//
// The collection endpoint serves fixed windows of 10 records addressed by
// limit/offset. Consumers rarely want a page in isolation: they want the page
// plus whether a previous and a next page exist. The orchestrator answers
// that in one round by issuing three concurrent fetches and joining all of
// them, with no cancellation between siblings.
//
// Example usage:
//
//	fetcher := paginate.NewFetcher(apiClient, "")
//	orch := paginate.NewOrchestrator(fetcher)
//	result := orch.Fetch(ctx, query.Options{Page: 2, Colors: []string{"red"}})
//
// The orchestrator:
//   - Resolves the requested page (anything below 1 coerces to 1)
//   - Fetches pages P-1, P, and P+1 concurrently
//   - Reports a neighbor only when its probe returned at least one record
//   - Degrades a failed current page to an empty record set instead of erroring
//   - Counts failed probes but never propagates them
//
// Fetch failures of every kind (transport, bad status, surfaced redirect,
// malformed body) collapse into no-value PageResults, so nothing in this
// package returns an error.
package paginate
