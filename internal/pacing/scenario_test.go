package pacing

import (
	"reflect"
	"testing"
)

// timedMarker pairs a marker with the 1-based clock tick it settled on.
type timedMarker struct {
	Tick   int
	Marker Marker
}

// runTicks dispatches n clock ticks and collects every emitted marker with
// the tick it settled on.
func runTicks(c *Controller, n int) []timedMarker {
	var out []timedMarker
	for i := 1; i <= n; i++ {
		for _, m := range c.Dispatch(EventClockTick) {
			out = append(out, timedMarker{Tick: i, Marker: m})
		}
	}
	return out
}

func assertTrace(t *testing.T, got, want []timedMarker) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("marker trace mismatch\n got: %v\nwant: %v", got, want)
	}
}

// An idle heart is paced at the lower rate: the rate ceiling expires first,
// the atrial escape interval paces the atrium at LRI-AVI, and the AV delay
// completes the cycle with a ventricular pace at the full lower-rate
// interval. Every ventricular pace restarts the cycle.
func TestIdleHeartPacedAtLowerRate(t *testing.T) {
	c, hw := newTestController(t)
	want := []timedMarker{
		{400, MarkerRateLimit},
		{850, MarkerAP},
		{1000, MarkerVP},
		{1400, MarkerRateLimit},
		{1850, MarkerAP},
		{2000, MarkerVP},
		{2400, MarkerRateLimit},
		{2850, MarkerAP},
		{3000, MarkerVP},
	}
	assertTrace(t, runTicks(c, 3000), want)

	wantCalls := []string{"AP", "VP", "AP", "VP", "AP", "VP"}
	if !reflect.DeepEqual(hw.Calls, wantCalls) {
		t.Errorf("hardware calls = %v, want %v", hw.Calls, wantCalls)
	}
	snap := c.Snapshot()
	if snap.Pending != ActionNone || snap.Lock != 0 || snap.BroadcastPending {
		t.Errorf("shared state not quiescent after run: %+v", snap)
	}
}

// An early atrial sense opens the AV window while the rate ceiling is still
// closed, so the expired window parks until the rate-limit broadcast and the
// ventricular pace lands exactly on the ceiling boundary, not at AVI.
func TestRateCeilingDefersVentricularPace(t *testing.T) {
	c, hw := newTestController(t)

	if got := c.Dispatch(EventAtrialEdge); !reflect.DeepEqual(got, []Marker{MarkerAS}) {
		t.Fatalf("atrial edge produced %v, want %v", got, []Marker{MarkerAS})
	}

	want := []timedMarker{
		{400, MarkerRateLimit},
		{400, MarkerVP},
		{800, MarkerRateLimit},
		{1250, MarkerAP},
		{1400, MarkerVP},
	}
	assertTrace(t, runTicks(c, 1400), want)

	wantCalls := []string{"AS_ACK", "VP", "AP", "VP"}
	if !reflect.DeepEqual(hw.Calls, wantCalls) {
		t.Errorf("hardware calls = %v, want %v", hw.Calls, wantCalls)
	}
}

// The AV window parks in its await state once expired.
func TestExpiredAVWindowParksUntilCeiling(t *testing.T) {
	c, _ := newTestController(t)
	c.Dispatch(EventAtrialEdge)
	runTicks(c, 150)
	if got := c.Snapshot().AVI; got != AVIAwaitRateLimit {
		t.Fatalf("AVI = %v at AV expiry below ceiling, want %v", got, AVIAwaitRateLimit)
	}
	runTicks(c, 249)
	if got := c.Snapshot().AVI; got != AVIAwaitRateLimit {
		t.Fatalf("AVI = %v one tick before the ceiling, want %v", got, AVIAwaitRateLimit)
	}
	got := runTicks(c, 1)
	want := []timedMarker{{1, MarkerRateLimit}, {1, MarkerVP}}
	assertTrace(t, got, want)
	if got := c.Snapshot().AVI; got != AVIIdle {
		t.Errorf("AVI = %v after the deferred pace, want %v", got, AVIIdle)
	}
}

// A storm of ventricular edges is throttled by the refractory window: one
// acknowledgement, then silence until the window reopens.
func TestVentricularStormThrottled(t *testing.T) {
	c, hw := newTestController(t)
	var ackTicks []int
	for tick := 0; tick < 400; tick++ {
		for _, m := range c.Dispatch(EventVentricularEdge) {
			if m == MarkerVS {
				ackTicks = append(ackTicks, tick)
			} else {
				t.Fatalf("unexpected marker %v at tick %d", m, tick)
			}
		}
		if got := c.Dispatch(EventClockTick); got != nil {
			t.Fatalf("clock tick %d produced %v during storm, want nothing", tick, got)
		}
	}
	want := []int{0, 150, 300}
	if !reflect.DeepEqual(ackTicks, want) {
		t.Errorf("acknowledgements at ticks %v, want %v", ackTicks, want)
	}
	if len(hw.Calls) != len(want) {
		t.Errorf("hardware calls = %v, want %d acknowledgements", hw.Calls, len(want))
	}
}
