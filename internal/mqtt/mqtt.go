// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/ddd-pacer/internal/markers"
)

// Topic is the MQTT topic for marker events.
const Topic = "cardiac/pacer/markers"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "cardiac/pacer/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a marker record to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(rec markers.Record) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Pacer MarkerPayload `json:"pacer"`
}

// MarkerPayload contains the marker event details.
type MarkerPayload struct {
	Timestamp string `json:"timestamp"`
	Session   string `json:"session"`
	Tick      uint64 `json:"tick"`
	Marker    string `json:"marker"`
}

// FormatPayload creates the JSON payload for a marker record.
func FormatPayload(rec markers.Record) ([]byte, error) {
	payload := Payload{
		Pacer: MarkerPayload{
			Timestamp: rec.Time.UTC().Format(time.RFC3339Nano),
			Session:   rec.Session,
			Tick:      rec.Tick,
			Marker:    rec.Marker.String(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (SHUTDOWN, HEARTBEAT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
