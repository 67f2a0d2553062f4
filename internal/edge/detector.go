// Package edge turns sampled input-line levels into discrete machine events.
// Like the pacing package it is pure logic: no hardware, no clocks.
package edge

import "github.com/sweeney/ddd-pacer/internal/pacing"

// Sample is one poll of the three input lines: the two cardiac sense lines
// and the synthetic pacing clock.
type Sample struct {
	VSense bool
	ASense bool
	Clock  bool
}

// Detector latches line levels between polls and emits an event for every
// level change. Both directions of a change emit: the sense lines carry
// pulses, and either boundary of a pulse marks chamber activity.
type Detector struct {
	baselined bool
	prev      Sample
}

// New returns a Detector that has not yet latched a baseline.
func New() *Detector {
	return &Detector{}
}

// Process compares s against the previous sample and returns the events the
// level changes imply, always in ventricular, atrial, clock order. The first
// call latches the baseline and returns nothing.
func (d *Detector) Process(s Sample) []pacing.Event {
	if !d.baselined {
		d.baselined = true
		d.prev = s
		return nil
	}
	var events []pacing.Event
	if s.VSense != d.prev.VSense {
		events = append(events, pacing.EventVentricularEdge)
	}
	if s.ASense != d.prev.ASense {
		events = append(events, pacing.EventAtrialEdge)
	}
	if s.Clock != d.prev.Clock {
		events = append(events, pacing.EventClockTick)
	}
	d.prev = s
	return events
}

// IsBaselined reports whether the detector has latched its first sample.
func (d *Detector) IsBaselined() bool {
	return d.baselined
}
