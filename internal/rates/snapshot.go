// Package rates holds the rate snapshot model and the pure conversion engine
// that derives metal prices and converts amounts between codes.
package rates

import "maps"

// Code identifies a currency or metal, e.g. "USD" or "XAU".
// Comparison is exact and case-sensitive.
type Code string

// Tracked metal codes.
const (
	Gold   Code = "XAU"
	Silver Code = "XAG"
)

// TrackedMetals lists the metals for which prices are derived, in display order.
var TrackedMetals = []Code{Gold, Silver}

// Snapshot is a point-in-time set of rates, each expressed as units of the
// code per one unit of Base. It is treated as immutable: callers replace a
// snapshot wholesale rather than mutating its Rates.
type Snapshot struct {
	Base      Code             `json:"base"`
	Rates     map[Code]float64 `json:"rates"`
	Timestamp int64            `json:"timestamp"`
}

// NewSnapshot builds a Snapshot owning a private copy of rates.
func NewSnapshot(base Code, rates map[Code]float64, timestamp int64) Snapshot {
	return Snapshot{
		Base:      base,
		Rates:     maps.Clone(rates),
		Timestamp: timestamp,
	}
}

// Rate returns the rate for code and whether it is present.
func (s Snapshot) Rate(code Code) (float64, bool) {
	r, ok := s.Rates[code]
	return r, ok
}

// IsZero reports whether the snapshot carries no rates at all.
func (s Snapshot) IsZero() bool {
	return s.Base == "" && len(s.Rates) == 0
}
