package pacing

// The five region steps below run in fixed order on every dispatched event.
// Branch order inside each step is significant: a timer guard that holds
// wins over an event match in the same state. Timer guards are level
// conditions on the counters, not reactions to the clock event, so they can
// fire on whichever event arrives once the counter reaches its target.

// stepAVI advances the atrioventricular-delay region. The AV window opens on
// atrial activity and normally ends in a ventricular pace; an intrinsic
// ventricular sense cancels it. When the window expires below the rate
// ceiling the pace is deferred until the rate-limit broadcast releases it.
func (c *Controller) stepAVI(ev Event) {
	switch c.avi {
	case AVIIdle:
		if ev == EventAtrialPaced || ev == EventAtrialSensed {
			c.markAVI = 0
			c.avi = AVITimingAV
			c.ctrAVI = 0
		}
	case AVITimingAV:
		expired := c.ctrAVI == c.markAVI+c.cfg.AVI
		switch {
		case c.pending == ActionNone && c.lock == 0 && !c.uriExt && expired:
			c.avi = AVIAwaitRateLimit
		case c.pending == ActionNone && c.lock == 0 && c.uriExt && expired:
			c.setPending(ActionPaceVentricle)
			c.avi = AVIIdle
		case ev == EventVentricularSensed:
			c.avi = AVIIdle
		}
	case AVIAwaitRateLimit:
		if ev == EventRateLimit {
			c.lock++
			c.broadcast = true
			c.avi = AVICommit
		}
	case AVICommit:
		if c.pending == ActionNone {
			c.setPending(ActionPaceVentricle)
			c.broadcast = true
			c.lock--
			c.avi = AVIIdle
		}
	}
}

// stepLRI advances the lower-rate region. It times the atrial escape
// interval (LRI minus AVI) from the last ventricular event and requests an
// atrial pace when it runs out. An acknowledged atrial sense suspends the
// window until ventricular activity restarts it.
func (c *Controller) stepLRI(ev Event) {
	switch c.lri {
	case LRITiming:
		switch {
		case c.pending == ActionNone && c.lock == 0 && c.ctrLRI == c.markLRI+c.cfg.LRI-c.cfg.AVI:
			c.setPending(ActionPaceAtrium)
			c.markLRI = 0
			c.ctrLRI = 0
		case ev == EventVentricularPaced || ev == EventVentricularSensed:
			c.markLRI = 0
			c.ctrLRI = 0
		case ev == EventAtrialSensed:
			c.lri = LRIAtrialSensed
		}
	case LRIAtrialSensed:
		if ev == EventVentricularPaced || ev == EventVentricularSensed {
			c.markLRI = 0
			c.lri = LRITiming
			c.ctrLRI = 0
		}
	}
}

// stepPVARP advances the post-ventricular atrial refractory region. Atrial
// edges inside the window are dropped; outside it they are acknowledged
// through the output slot under the inter-chamber lock.
func (c *Controller) stepPVARP(ev Event) {
	switch c.pvarp {
	case PVARPSensing:
		switch {
		case ev == EventVentricularPaced || ev == EventVentricularSensed:
			c.markPVARP = 0
			c.pvarp = PVARPRefractory
			c.ctrPVARP = 0
		case ev == EventAtrialEdge:
			c.lock++
			c.broadcast = true
			c.pvarp = PVARPCommit
		}
	case PVARPRefractory:
		if c.pending == ActionNone && c.lock == 0 && c.ctrPVARP == c.markPVARP+c.cfg.PVARP {
			c.pvarp = PVARPSensing
		}
	case PVARPCommit:
		if c.pending == ActionNone {
			c.setPending(ActionAckAtrialSense)
			c.broadcast = true
			c.lock--
			c.pvarp = PVARPSensing
		}
	}
}

// stepVRP advances the ventricular refractory region. A ventricular edge in
// the sensing state is acknowledged under the inter-chamber lock and the
// acknowledgement itself opens the next refractory window. Edges inside the
// window are dropped.
func (c *Controller) stepVRP(ev Event) {
	switch c.vrp {
	case VRPSensing:
		switch {
		case ev == EventVentricularEdge:
			c.markVRP = 0
			c.lock++
			c.broadcast = true
			c.vrp = VRPCommit
		case ev == EventVentricularPaced:
			c.markVRP = 0
			c.vrp = VRPRefractory
			c.ctrVRP = 0
		}
	case VRPRefractory:
		if c.pending == ActionNone && c.lock == 0 && c.ctrVRP == c.markVRP+c.cfg.VRP {
			c.vrp = VRPSensing
		}
	case VRPCommit:
		if c.pending == ActionNone {
			c.setPending(ActionAckVentricularSense)
			c.markVRP = 0
			c.broadcast = true
			c.lock--
			c.vrp = VRPRefractory
			c.ctrVRP = 0
		}
	}
}

// stepURI advances the upper-rate region. Ventricular activity restarts the
// ceiling interval; when the interval elapses with no ventricular event the
// region raises the rate-limit broadcast and holds the extension flag until
// the next ventricular event clears it.
func (c *Controller) stepURI(ev Event) {
	switch c.uri {
	case URIBelowCeiling:
		switch {
		case ev == EventVentricularPaced || ev == EventVentricularSensed:
			c.markURI = 0
			c.ctrURI = 0
		case c.pending == ActionNone && c.lock == 0 && c.ctrURI == c.markURI+c.cfg.URI:
			c.setPending(ActionRateLimit)
			c.broadcast = true
			c.uriExt = true
			c.uri = URIExtended
		}
	case URIExtended:
		if ev == EventVentricularPaced || ev == EventVentricularSensed {
			c.markURI = 0
			c.broadcast = true
			c.uriExt = false
			c.uri = URIBelowCeiling
			c.ctrURI = 0
		}
	}
}
