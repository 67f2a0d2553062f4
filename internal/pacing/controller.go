package pacing

import (
	"fmt"
	"math"
)

// Controller is the dual-chamber timing state machine. Five peer regions
// share a single-slot output mailbox and an inter-chamber lock; a sixth
// engine region consumes the mailbox, performs the hardware output, and
// re-broadcasts the outcome to the peers. Dispatch runs each event to
// completion before returning, so all fields are owned by the dispatching
// goroutine. A Controller is not safe for concurrent use.
type Controller struct {
	cfg Intervals
	hw  Hardware

	avi   AVIState
	lri   LRIState
	pvarp PVARPState
	vrp   VRPState
	uri   URIState

	ctrAVI   uint32
	ctrLRI   uint32
	ctrPVARP uint32
	ctrVRP   uint32
	ctrURI   uint32

	markAVI   uint32
	markLRI   uint32
	markPVARP uint32
	markVRP   uint32
	markURI   uint32

	pending   Action
	lock      int
	broadcast bool
	uriExt    bool

	depth   int
	emitted []Marker
}

// New returns a Controller with every region in its initial state and all
// counters at zero. The zero value of each state enum is the initial state,
// so a fresh Controller needs no explicit entry work.
func New(cfg Intervals, hw Hardware) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pacing: %w", err)
	}
	if hw == nil {
		return nil, fmt.Errorf("pacing: hardware must not be nil")
	}
	return &Controller{cfg: cfg, hw: hw}, nil
}

// Intervals returns the programmed timing parameters.
func (c *Controller) Intervals() Intervals {
	return c.cfg
}

// Dispatch feeds one event through every region and then the engine,
// following broadcasts to completion before returning. It returns the
// markers emitted while the event settled, in emission order, or nil when
// the event produced no output. Callers supply only the externally sourced
// events (sense edges and clock ticks); the announce and broadcast events
// are generated internally.
func (c *Controller) Dispatch(ev Event) []Marker {
	c.depth++
	if ev == EventClockTick {
		c.ctrAVI = satIncr(c.ctrAVI)
		c.ctrLRI = satIncr(c.ctrLRI)
		c.ctrPVARP = satIncr(c.ctrPVARP)
		c.ctrVRP = satIncr(c.ctrVRP)
		c.ctrURI = satIncr(c.ctrURI)
	}
	c.stepAVI(ev)
	c.stepLRI(ev)
	c.stepPVARP(ev)
	c.stepVRP(ev)
	c.stepURI(ev)
	c.runEngine()
	c.depth--
	if c.depth > 0 {
		return nil
	}
	out := c.emitted
	c.emitted = nil
	return out
}

// runEngine consumes the output mailbox. Exactly one branch runs per pass;
// the event it broadcasts re-enters Dispatch, which runs the engine again,
// so chained work drains through recursion instead of a queue. Branch order
// is load-bearing: the ventricular sense acknowledgement outranks the
// rate-limit notification, which outranks everything else.
func (c *Controller) runEngine() {
	switch {
	case c.pending == ActionAckVentricularSense:
		c.pending = ActionBroadcast
		c.hw.AckVentricularSense()
		c.emit(MarkerVS)
		c.Dispatch(EventVentricularSensed)
	case c.pending == ActionRateLimit:
		c.pending = ActionBroadcast
		c.emit(MarkerRateLimit)
		c.Dispatch(EventRateLimit)
	case c.pending == ActionBroadcast:
		c.pending = ActionNone
		c.Dispatch(EventNeutral)
	case c.pending == ActionPaceAtrium:
		c.pending = ActionBroadcast
		c.hw.PaceAtrium()
		c.emit(MarkerAP)
		c.Dispatch(EventAtrialPaced)
	case c.pending == ActionAckAtrialSense:
		c.pending = ActionBroadcast
		c.hw.AckAtrialSense()
		c.emit(MarkerAS)
		c.Dispatch(EventAtrialSensed)
	case c.pending == ActionPaceVentricle:
		c.pending = ActionBroadcast
		c.hw.PaceVentricle()
		c.emit(MarkerVP)
		c.Dispatch(EventVentricularPaced)
	case c.broadcast:
		c.broadcast = false
		c.Dispatch(EventNeutral)
	}
}

// setPending claims the output mailbox. Every requesting transition guards
// on the mailbox being free first, so finding it occupied is a protocol
// violation in the machine itself and panics.
func (c *Controller) setPending(a Action) {
	if c.pending != ActionNone {
		panic(fmt.Sprintf("pacing: output mailbox holds %v while setting %v", c.pending, a))
	}
	c.pending = a
}

func (c *Controller) emit(m Marker) {
	c.emitted = append(c.emitted, m)
}

// satIncr advances a temporal counter, saturating at the maximum instead of
// wrapping so a quiescent machine cannot alias a fresh window.
func satIncr(v uint32) uint32 {
	if v == math.MaxUint32 {
		return v
	}
	return v + 1
}

// Snapshot returns a copy of the machine state. Take it between Dispatch
// calls; mid-dispatch the shared fields hold transient values. A quiescent
// snapshot always shows an empty mailbox, no owed broadcast, and the lock
// at zero.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		AVI:   c.avi,
		LRI:   c.lri,
		PVARP: c.pvarp,
		VRP:   c.vrp,
		URI:   c.uri,
		Counters: Counters{
			AVI:   c.ctrAVI,
			LRI:   c.ctrLRI,
			PVARP: c.ctrPVARP,
			VRP:   c.ctrVRP,
			URI:   c.ctrURI,
		},
		Pending:          c.pending,
		Lock:             c.lock,
		BroadcastPending: c.broadcast,
		URIExtended:      c.uriExt,
	}
}
