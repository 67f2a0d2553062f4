// Package markers records the pacer's emitted markers for telemetry and
// offline review. Records are written as a CBOR stream with integer keys.
package markers

import (
	"time"

	"github.com/sweeney/ddd-pacer/internal/pacing"
)

// Record is one marker occurrence.
// CBOR encoding uses integer keys for compactness.
type Record struct {
	// Time when the marker was emitted (nanosecond precision).
	Time time.Time `cbor:"1,keyasint"`

	// Session uniquely identifies the daemon run (UUID).
	Session string `cbor:"2,keyasint"`

	// Tick is the pacing clock tick the marker settled on.
	Tick uint64 `cbor:"3,keyasint"`

	// Marker identifies the output that was performed.
	Marker pacing.Marker `cbor:"4,keyasint"`
}

// Counts accumulates per-marker totals for a session.
type Counts struct {
	AP        uint64
	AS        uint64
	VP        uint64
	VS        uint64
	RateLimit uint64
}

// Add increments the counter for m.
func (c *Counts) Add(m pacing.Marker) {
	switch m {
	case pacing.MarkerAP:
		c.AP++
	case pacing.MarkerAS:
		c.AS++
	case pacing.MarkerVP:
		c.VP++
	case pacing.MarkerVS:
		c.VS++
	case pacing.MarkerRateLimit:
		c.RateLimit++
	}
}

// Total returns the number of markers counted.
func (c Counts) Total() uint64 {
	return c.AP + c.AS + c.VP + c.VS + c.RateLimit
}
