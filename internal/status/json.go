package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Session       string       `json:"session"`
	Ready         bool         `json:"ready"`
	Ticks         uint64       `json:"ticks"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Regions       RegionsJSON  `json:"regions"`
	Counters      CountersJSON `json:"counters"`
	Pending       string       `json:"pending"`
	Lock          int          `json:"lock"`
	URIExtended   bool         `json:"uri_extended"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"marker_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// RegionsJSON reports the state name of each timing region.
type RegionsJSON struct {
	AVI   string `json:"avi"`
	LRI   string `json:"lri"`
	PVARP string `json:"pvarp"`
	VRP   string `json:"vrp"`
	URI   string `json:"uri"`
}

// CountersJSON reports the tick count of each region counter.
type CountersJSON struct {
	AVI   uint32 `json:"avi"`
	LRI   uint32 `json:"lri"`
	PVARP uint32 `json:"pvarp"`
	VRP   uint32 `json:"vrp"`
	URI   uint32 `json:"uri"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of marker counts.
type CountsJSON struct {
	AP        uint64 `json:"ap"`
	AS        uint64 `json:"as"`
	VP        uint64 `json:"vp"`
	VS        uint64 `json:"vs"`
	RateLimit uint64 `json:"rate_limit"`
	Total     uint64 `json:"total"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64         `json:"poll_ms"`
	HeartbeatMs int64         `json:"heartbeat_ms"`
	Broker      string        `json:"broker"`
	HTTPPort    string        `json:"http_port"`
	MarkerLog   string        `json:"marker_log,omitempty"`
	Intervals   IntervalsJSON `json:"intervals"`
}

// IntervalsJSON is the JSON representation of the pacing intervals.
type IntervalsJSON struct {
	AVI   uint32 `json:"avi"`
	LRI   uint32 `json:"lri"`
	PVARP uint32 `json:"pvarp"`
	VRP   uint32 `json:"vrp"`
	URI   uint32 `json:"uri"`
}

func buildInner(snap Snapshot) StatusInner {
	p := snap.Pacing
	return StatusInner{
		Session:       snap.Session,
		Ready:         snap.Baselined,
		Ticks:         snap.Ticks,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Regions: RegionsJSON{
			AVI:   p.AVI.String(),
			LRI:   p.LRI.String(),
			PVARP: p.PVARP.String(),
			VRP:   p.VRP.String(),
			URI:   p.URI.String(),
		},
		Counters: CountersJSON{
			AVI:   p.Counters.AVI,
			LRI:   p.Counters.LRI,
			PVARP: p.Counters.PVARP,
			VRP:   p.Counters.VRP,
			URI:   p.Counters.URI,
		},
		Pending:     p.Pending.String(),
		Lock:        p.Lock,
		URIExtended: p.URIExtended,
		MQTT:        MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			AP:        snap.Counts.AP,
			AS:        snap.Counts.AS,
			VP:        snap.Counts.VP,
			VS:        snap.Counts.VS,
			RateLimit: snap.Counts.RateLimit,
			Total:     snap.Counts.Total(),
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
			MarkerLog:   snap.Config.MarkerLog,
			Intervals: IntervalsJSON{
				AVI:   snap.Config.Intervals.AVI,
				LRI:   snap.Config.Intervals.LRI,
				PVARP: snap.Config.Intervals.PVARP,
				VRP:   snap.Config.Intervals.VRP,
				URI:   snap.Config.Intervals.URI,
			},
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
