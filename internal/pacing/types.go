// Package pacing contains the pure DDD timing state machine for the pacer.
// This package has NO external dependencies (no GPIO, MQTT, OS, or timers).
// Time is modeled as discrete clock-tick events supplied by the caller.
package pacing

import "fmt"

// Event is one discrete input to the dispatcher. Exactly one event is active
// per Dispatch call; the engine re-broadcasts the synthetic ones (AP..CLK
// excluded) by calling Dispatch recursively, never by queueing.
type Event uint8

const (
	// EventVentricularEdge is a raw edge on the ventricular sense line.
	EventVentricularEdge Event = iota
	// EventAtrialEdge is a raw edge on the atrial sense line.
	EventAtrialEdge
	// EventAtrialPaced announces an atrial pace output (AP marker).
	EventAtrialPaced
	// EventAtrialSensed announces an acknowledged atrial sense (AS marker).
	EventAtrialSensed
	// EventVentricularPaced announces a ventricular pace output (VP marker).
	EventVentricularPaced
	// EventVentricularSensed announces an acknowledged ventricular sense (VS marker).
	EventVentricularSensed
	// EventRateLimit announces that the upper rate interval expired.
	EventRateLimit
	// EventNeutral is the no-op broadcast used to drain deferred resets.
	EventNeutral
	// EventClockTick advances all temporal counters by one.
	EventClockTick
)

// String returns the short marker-channel name for the event.
func (e Event) String() string {
	switch e {
	case EventVentricularEdge:
		return "V_EDGE"
	case EventAtrialEdge:
		return "A_EDGE"
	case EventAtrialPaced:
		return "AP"
	case EventAtrialSensed:
		return "AS"
	case EventVentricularPaced:
		return "VP"
	case EventVentricularSensed:
		return "VS"
	case EventRateLimit:
		return "RATE_LIMIT"
	case EventNeutral:
		return "NEUTRAL"
	case EventClockTick:
		return "CLK"
	default:
		return fmt.Sprintf("EVENT(%d)", uint8(e))
	}
}

// Action is the single-slot output mailbox value between the peer regions
// and the engine. At most one action may be pending at any time.
type Action uint8

const (
	ActionNone Action = iota
	// ActionPaceAtrium requests an atrial pace output.
	ActionPaceAtrium
	// ActionAckAtrialSense requests the atrial sense acknowledge output.
	ActionAckAtrialSense
	// ActionPaceVentricle requests a ventricular pace output.
	ActionPaceVentricle
	// ActionAckVentricularSense requests the ventricular sense acknowledge output.
	ActionAckVentricularSense
	// ActionRateLimit requests the upper-rate broadcast. No hardware output.
	ActionRateLimit
	// ActionBroadcast marks a consumed action whose activity broadcast is
	// still owed. Set only by the engine itself.
	ActionBroadcast
)

// String returns a short name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "NONE"
	case ActionPaceAtrium:
		return "AP"
	case ActionAckAtrialSense:
		return "AS_ACK"
	case ActionPaceVentricle:
		return "VP"
	case ActionAckVentricularSense:
		return "VS_ACK"
	case ActionRateLimit:
		return "RATE_LIMIT"
	case ActionBroadcast:
		return "BROADCAST"
	default:
		return fmt.Sprintf("ACTION(%d)", uint8(a))
	}
}

// Marker identifies an output the engine performed: the four marker-channel
// annotations plus the rate-limit notification (which has no hardware output).
type Marker uint8

const (
	MarkerAP Marker = iota
	MarkerAS
	MarkerVP
	MarkerVS
	MarkerRateLimit
)

// String returns the marker-channel name.
func (m Marker) String() string {
	switch m {
	case MarkerAP:
		return "AP"
	case MarkerAS:
		return "AS"
	case MarkerVP:
		return "VP"
	case MarkerVS:
		return "VS"
	case MarkerRateLimit:
		return "RATE_LIMIT"
	default:
		return fmt.Sprintf("MARKER(%d)", uint8(m))
	}
}

// AVIState is the atrioventricular-interval region state.
type AVIState uint8

const (
	// AVIIdle waits for atrial activity.
	AVIIdle AVIState = iota
	// AVITimingAV times the AV delay from the last atrial event.
	AVITimingAV
	// AVIAwaitRateLimit holds an expired AV delay until the upper-rate
	// broadcast arrives.
	AVIAwaitRateLimit
	// AVICommit holds the inter-chamber lock while the ventricular pace
	// request waits for the output slot.
	AVICommit
)

func (s AVIState) String() string {
	switch s {
	case AVIIdle:
		return "IDLE"
	case AVITimingAV:
		return "TIMING_AV"
	case AVIAwaitRateLimit:
		return "AWAIT_RATE_LIMIT"
	case AVICommit:
		return "COMMIT"
	default:
		return fmt.Sprintf("AVI(%d)", uint8(s))
	}
}

// LRIState is the lower-rate-interval region state.
type LRIState uint8

const (
	// LRITiming times the atrial escape interval.
	LRITiming LRIState = iota
	// LRIAtrialSensed suspends escape timing after an acknowledged atrial
	// sense until ventricular activity restarts the window.
	LRIAtrialSensed
)

func (s LRIState) String() string {
	switch s {
	case LRITiming:
		return "TIMING"
	case LRIAtrialSensed:
		return "ATRIAL_SENSED"
	default:
		return fmt.Sprintf("LRI(%d)", uint8(s))
	}
}

// PVARPState is the post-ventricular atrial refractory region state.
type PVARPState uint8

const (
	// PVARPSensing accepts atrial edges for acknowledgement.
	PVARPSensing PVARPState = iota
	// PVARPRefractory runs the post-ventricular window; atrial edges are
	// dropped while it is open.
	PVARPRefractory
	// PVARPCommit holds the inter-chamber lock while the atrial sense
	// acknowledge waits for the output slot.
	PVARPCommit
)

func (s PVARPState) String() string {
	switch s {
	case PVARPSensing:
		return "SENSING"
	case PVARPRefractory:
		return "REFRACTORY"
	case PVARPCommit:
		return "COMMIT"
	default:
		return fmt.Sprintf("PVARP(%d)", uint8(s))
	}
}

// VRPState is the ventricular refractory region state.
type VRPState uint8

const (
	// VRPSensing accepts ventricular edges for acknowledgement.
	VRPSensing VRPState = iota
	// VRPRefractory runs the post-ventricular window; ventricular edges are
	// dropped while it is open.
	VRPRefractory
	// VRPCommit holds the inter-chamber lock while the ventricular sense
	// acknowledge waits for the output slot.
	VRPCommit
)

func (s VRPState) String() string {
	switch s {
	case VRPSensing:
		return "SENSING"
	case VRPRefractory:
		return "REFRACTORY"
	case VRPCommit:
		return "COMMIT"
	default:
		return fmt.Sprintf("VRP(%d)", uint8(s))
	}
}

// URIState is the upper-rate-interval region state.
type URIState uint8

const (
	// URIBelowCeiling times the gap since the last ventricular event.
	URIBelowCeiling URIState = iota
	// URIExtended marks that the ceiling expired; AV-delay expiry may pace
	// directly while this holds.
	URIExtended
)

func (s URIState) String() string {
	switch s {
	case URIBelowCeiling:
		return "BELOW_CEILING"
	case URIExtended:
		return "EXTENDED"
	default:
		return fmt.Sprintf("URI(%d)", uint8(s))
	}
}

// Intervals holds the five programmed timing parameters, in clock ticks.
// They are fixed at initialization; the state machine never mutates them.
type Intervals struct {
	AVI   uint32 // atrioventricular delay
	LRI   uint32 // lower rate interval
	PVARP uint32 // post-ventricular atrial refractory period
	VRP   uint32 // ventricular refractory period
	URI   uint32 // upper rate interval
}

// DefaultIntervals returns the nominal DDD programming.
func DefaultIntervals() Intervals {
	return Intervals{AVI: 150, LRI: 1000, PVARP: 200, VRP: 150, URI: 400}
}

// Validate checks that every interval is usable. All five must be positive,
// and LRI must exceed AVI so the atrial escape interval (LRI-AVI) is
// reachable.
func (iv Intervals) Validate() error {
	named := []struct {
		name string
		v    uint32
	}{
		{"AVI", iv.AVI},
		{"LRI", iv.LRI},
		{"PVARP", iv.PVARP},
		{"VRP", iv.VRP},
		{"URI", iv.URI},
	}
	for _, n := range named {
		if n.v == 0 {
			return fmt.Errorf("%s interval must be positive", n.name)
		}
	}
	if iv.LRI <= iv.AVI {
		return fmt.Errorf("LRI (%d) must exceed AVI (%d)", iv.LRI, iv.AVI)
	}
	return nil
}

// Hardware performs the pacing outputs. Calls are fire-and-forget: the state
// machine never observes a result, so implementations must not block and
// should report faults through their own channels.
type Hardware interface {
	PaceAtrium()
	AckAtrialSense()
	PaceVentricle()
	AckVentricularSense()
}

// Counters is a read-only copy of the five temporal counters.
type Counters struct {
	AVI   uint32
	LRI   uint32
	PVARP uint32
	VRP   uint32
	URI   uint32
}

// Snapshot is a point-in-time copy of the controller state, safe to hold
// after the controller moves on. Taken between Dispatch calls the shared
// fields always show the quiescent values (no pending action, no owed
// broadcast, lock at zero).
type Snapshot struct {
	AVI   AVIState
	LRI   LRIState
	PVARP PVARPState
	VRP   VRPState
	URI   URIState

	Counters Counters

	Pending          Action
	Lock             int
	BroadcastPending bool
	URIExtended      bool
}
