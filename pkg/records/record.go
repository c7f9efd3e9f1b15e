// Package records defines the record model returned by the tally collection
// endpoint. Records carry an id, a color, and a disposition; any additional
// fields the endpoint sends are preserved verbatim and travel with the record
// through filtering and aggregation.
package records

import (
	"encoding/json"
)

// Disposition values used by the collection endpoint.
const (
	DispositionOpen   = "open"
	DispositionClosed = "closed"
)

// PrimaryColors is the fixed set of colors considered primary.
// Matching is exact and case-sensitive: "Red" is not primary.
var PrimaryColors = map[string]bool{
	"red":    true,
	"blue":   true,
	"yellow": true,
}

// IsPrimaryColor reports whether color is one of the primary colors.
func IsPrimaryColor(color string) bool {
	return PrimaryColors[color]
}

// Record is a single entry from the collection endpoint.
//
// ID, Color, and Disposition are the fields this client interprets.
// IsPrimary is derived locally from Color and never read from the wire.
// Extra holds every other field the endpoint sent, byte-for-byte, so
// unknown upstream fields survive a round trip through the aggregate.
type Record struct {
	ID          int64
	Color       string
	Disposition string
	IsPrimary   bool
	Extra       map[string]json.RawMessage
}

// wireRecord mirrors the interpreted subset of the JSON payload.
type wireRecord struct {
	ID          int64  `json:"id"`
	Color       string `json:"color"`
	Disposition string `json:"disposition"`
}

// Keys owned by the client. They are stripped from Extra on decode so the
// derived isPrimary value cannot be shadowed by a stale upstream field.
var ownedKeys = []string{"id", "color", "disposition", "isPrimary"}

// UnmarshalJSON decodes the interpreted fields and stashes everything else
// in Extra unmodified.
func (r *Record) UnmarshalJSON(data []byte) error {
	var wire wireRecord
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, key := range ownedKeys {
		delete(fields, key)
	}
	if len(fields) == 0 {
		fields = nil
	}

	r.ID = wire.ID
	r.Color = wire.Color
	r.Disposition = wire.Disposition
	r.IsPrimary = false
	r.Extra = fields
	return nil
}

// MarshalJSON emits the interpreted fields plus isPrimary, followed by the
// preserved extra fields. Keys are emitted in lexical order.
func (r Record) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(r.Extra)+len(ownedKeys))
	for key, value := range r.Extra {
		fields[key] = value
	}

	id, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}
	color, err := json.Marshal(r.Color)
	if err != nil {
		return nil, err
	}
	disposition, err := json.Marshal(r.Disposition)
	if err != nil {
		return nil, err
	}
	isPrimary, err := json.Marshal(r.IsPrimary)
	if err != nil {
		return nil, err
	}

	fields["id"] = id
	fields["color"] = color
	fields["disposition"] = disposition
	fields["isPrimary"] = isPrimary
	return json.Marshal(fields)
}

// WithPrimary returns a copy of the record with IsPrimary derived from Color.
func (r Record) WithPrimary() Record {
	r.IsPrimary = IsPrimaryColor(r.Color)
	return r
}

// IsOpen reports whether the record's disposition is open.
func (r Record) IsOpen() bool {
	return r.Disposition == DispositionOpen
}

// IsClosed reports whether the record's disposition is closed.
func (r Record) IsClosed() bool {
	return r.Disposition == DispositionClosed
}
