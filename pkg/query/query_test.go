package query

import (
	"net/url"
	"reflect"
	"testing"
)

func TestResolve_Offset(t *testing.T) {
	tests := []struct {
		name           string
		page           int
		expectedOffset int
	}{
		{
			name:           "page 1 starts at offset 0",
			page:           1,
			expectedOffset: 0,
		},
		{
			name:           "page 2 starts at offset 10",
			page:           2,
			expectedOffset: 10,
		},
		{
			name:           "page 3 starts at offset 20",
			page:           3,
			expectedOffset: 20,
		},
		{
			name:           "page 0 coerces to page 1",
			page:           0,
			expectedOffset: 0,
		},
		{
			name:           "negative page coerces to page 1",
			page:           -5,
			expectedOffset: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Resolve(Options{Page: tt.page})
			if q.Offset != tt.expectedOffset {
				t.Errorf("Resolve(page=%d).Offset = %d, want %d", tt.page, q.Offset, tt.expectedOffset)
			}
			if q.Limit != PageSize {
				t.Errorf("Resolve(page=%d).Limit = %d, want %d", tt.page, q.Limit, PageSize)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{
			name:     "numeric page passes through",
			raw:      "7",
			expected: 7,
		},
		{
			name:     "non-numeric coerces to 1",
			raw:      "abc",
			expected: 1,
		},
		{
			name:     "empty coerces to 1",
			raw:      "",
			expected: 1,
		},
		{
			name:     "zero coerces to 1",
			raw:      "0",
			expected: 1,
		},
		{
			name:     "negative coerces to 1",
			raw:      "-3",
			expected: 1,
		},
		{
			name:     "fractional coerces to 1",
			raw:      "2.5",
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePage(tt.raw); got != tt.expected {
				t.Errorf("ParsePage(%q) = %d, want %d", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestPageQuery_Values_ColorFilterAlwaysPresent(t *testing.T) {
	tests := []struct {
		name           string
		colors         []string
		expectedColors []string
	}{
		{
			name:           "no colors still emits the list key",
			colors:         nil,
			expectedColors: []string{""},
		},
		{
			name:           "single color stays in list form",
			colors:         []string{"red"},
			expectedColors: []string{"red"},
		},
		{
			name:           "multiple colors emit one entry each",
			colors:         []string{"red", "blue"},
			expectedColors: []string{"red", "blue"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := Resolve(Options{Page: 1, Colors: tt.colors}).Values()

			got, present := values[ParamColor]
			if !present {
				t.Fatalf("Values() missing %q key", ParamColor)
			}
			if !reflect.DeepEqual(got, tt.expectedColors) {
				t.Errorf("Values()[%q] = %v, want %v", ParamColor, got, tt.expectedColors)
			}
			if _, scalar := values["color"]; scalar {
				t.Error("Values() must not emit a bare color key")
			}
		})
	}
}

func TestPageQuery_Encode(t *testing.T) {
	q := Resolve(Options{Page: 2, Colors: []string{"red"}})

	encoded := q.Encode()
	parsed, err := url.ParseQuery(encoded)
	if err != nil {
		t.Fatalf("ParseQuery(%q) error = %v", encoded, err)
	}

	if got := parsed.Get(ParamLimit); got != "10" {
		t.Errorf("limit = %q, want %q", got, "10")
	}
	if got := parsed.Get(ParamOffset); got != "10" {
		t.Errorf("offset = %q, want %q", got, "10")
	}
	if got := parsed[ParamColor]; !reflect.DeepEqual(got, []string{"red"}) {
		t.Errorf("color[] = %v, want [red]", got)
	}
}

func TestPageQuery_Encode_EmptyFilterSurvivesWire(t *testing.T) {
	// url.Values drops keys with no entries on Encode, so the empty filter
	// must be modeled as a single empty entry to stay on the wire.
	encoded := Resolve(Options{Page: 1}).Encode()

	parsed, err := url.ParseQuery(encoded)
	if err != nil {
		t.Fatalf("ParseQuery(%q) error = %v", encoded, err)
	}
	if _, present := parsed[ParamColor]; !present {
		t.Fatalf("encoded query %q lost the %q key", encoded, ParamColor)
	}
}

func TestPageQuery_ForPage(t *testing.T) {
	base := Resolve(Options{Page: 1, Colors: []string{"blue"}})

	tests := []struct {
		name           string
		page           int
		expectedOffset int
	}{
		{
			name:           "next page",
			page:           2,
			expectedOffset: 10,
		},
		{
			name:           "page zero probe keeps its negative offset",
			page:           0,
			expectedOffset: -10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := base.ForPage(tt.page)
			if probe.Offset != tt.expectedOffset {
				t.Errorf("ForPage(%d).Offset = %d, want %d", tt.page, probe.Offset, tt.expectedOffset)
			}
			if probe.Limit != base.Limit {
				t.Errorf("ForPage(%d).Limit = %d, want %d", tt.page, probe.Limit, base.Limit)
			}
			if !reflect.DeepEqual(probe.Colors, base.Colors) {
				t.Errorf("ForPage(%d).Colors = %v, want %v", tt.page, probe.Colors, base.Colors)
			}
		})
	}
}

func TestPageQuery_Page(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		expected int
	}{
		{
			name:     "offset 0 is page 1",
			offset:   0,
			expected: 1,
		},
		{
			name:     "offset 20 is page 3",
			offset:   20,
			expected: 3,
		},
		{
			name:     "offset -10 is the page zero probe",
			offset:   -10,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := PageQuery{Limit: PageSize, Offset: tt.offset}
			if got := q.Page(); got != tt.expected {
				t.Errorf("Page() = %d, want %d", got, tt.expected)
			}
		})
	}
}
