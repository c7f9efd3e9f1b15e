// Package query resolves user-facing retrieval options into the wire query
// understood by the collection endpoint: a fixed page size, a derived offset,
// and a color filter in list form.
package query

import (
	"net/url"
	"strconv"
)

// PageSize is the fixed number of records per page. The endpoint paginates
// in steps of ten; callers choose a page, never a page size.
const PageSize = 10

// Wire parameter names.
const (
	ParamLimit  = "limit"
	ParamOffset = "offset"

	// ParamColor uses the list form expected by the endpoint. The key must
	// be present on every request, even with no colors selected, and a
	// single color is still sent in list form.
	ParamColor = "color[]"
)

// Options are the caller-facing retrieval options.
type Options struct {
	// Page is the 1-based page to retrieve. Values below 1 are coerced to 1.
	Page int

	// Colors restricts the result to the given colors. Empty means no
	// restriction; the filter key is sent either way.
	Colors []string
}

// PageQuery is the resolved wire query for one page.
type PageQuery struct {
	Limit  int
	Offset int
	Colors []string
}

// Resolve maps options to the wire query for the requested page.
// Out-of-range pages are coerced to page 1, never rejected.
func Resolve(opts Options) PageQuery {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	return PageQuery{
		Limit:  PageSize,
		Offset: (page - 1) * PageSize,
		Colors: opts.Colors,
	}
}

// ParsePage interprets a raw page value from a flag or query string.
// Malformed or out-of-range input coerces to page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Page returns the 1-based page number this query addresses. An adjacency
// probe below the first page reports page 0.
func (q PageQuery) Page() int {
	return q.Offset/q.Limit + 1
}

// ForPage returns a query for page n with the same limit and color filter.
// n may be 0, which yields a negative offset; the probe is sent to the
// endpoint as-is and the endpoint decides how to answer it.
func (q PageQuery) ForPage(n int) PageQuery {
	return PageQuery{
		Limit:  q.Limit,
		Offset: (n - 1) * q.Limit,
		Colors: q.Colors,
	}
}

// Values renders the query as URL parameters. The color filter key is always
// emitted: with no colors selected it renders as a single empty list entry,
// which the endpoint requires in place of an absent key.
func (q PageQuery) Values() url.Values {
	values := url.Values{
		ParamLimit:  {strconv.Itoa(q.Limit)},
		ParamOffset: {strconv.Itoa(q.Offset)},
	}
	if len(q.Colors) == 0 {
		values[ParamColor] = []string{""}
		return values
	}
	values[ParamColor] = append([]string(nil), q.Colors...)
	return values
}

// Encode renders the query as a URL-encoded string, ready to append to the
// collection path.
func (q PageQuery) Encode() string {
	return q.Values().Encode()
}
