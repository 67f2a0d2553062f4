package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/ddd-pacer/internal/markers"
	"github.com/sweeney/ddd-pacer/internal/pacing"
	"github.com/sweeney/ddd-pacer/internal/status"
)

const testSession = "4fa2b970-3c5e-4f2a-9dd0-6b12a9c4e901"

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:      1,
		HeartbeatMs: 60000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPPort:    ":8080",
		Intervals:   pacing.DefaultIntervals(),
	}
	tr := status.NewTracker(start, testSession, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func pacedSnapshot() pacing.Snapshot {
	return pacing.Snapshot{
		AVI:   pacing.AVITimingAV,
		LRI:   pacing.LRIAtrialSensed,
		PVARP: pacing.PVARPRefractory,
		VRP:   pacing.VRPRefractory,
		URI:   pacing.URIBelowCeiling,
		Counters: pacing.Counters{
			AVI: 10, LRI: 10, PVARP: 10, VRP: 10, URI: 10,
		},
	}
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(pacedSnapshot(), true, 10, markers.Counts{VP: 5, AP: 2})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Regions.AVI != "TIMING_AV" {
		t.Errorf("Regions.AVI: got %q, want TIMING_AV", sj.Status.Regions.AVI)
	}
	if sj.Status.Counters.LRI != 10 {
		t.Errorf("Counters.LRI: got %d, want 10", sj.Status.Counters.LRI)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if sj.Status.Ticks != 10 {
		t.Errorf("Ticks: got %d, want 10", sj.Status.Ticks)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.VP != 5 {
		t.Errorf("Counts.VP: got %d, want 5", sj.Status.Counts.VP)
	}
	if sj.Status.Counts.AP != 2 {
		t.Errorf("Counts.AP: got %d, want 2", sj.Status.Counts.AP)
	}
	if sj.Status.Session != testSession {
		t.Errorf("Session: got %q, want %q", sj.Status.Session, testSession)
	}
	if sj.Status.Config.PollMs != 1 {
		t.Errorf("Config.PollMs: got %d, want 1", sj.Status.Config.PollMs)
	}
	if sj.Status.Config.Intervals.URI != 400 {
		t.Errorf("Config.Intervals.URI: got %d, want 400", sj.Status.Config.Intervals.URI)
	}
}

func TestJSONInitialStatesBeforeBaseline(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Status.Ready {
		t.Error("expected Ready=false before baseline")
	}
	if sj.Status.Regions.AVI != "IDLE" {
		t.Errorf("Regions.AVI: got %q, want IDLE", sj.Status.Regions.AVI)
	}
	if sj.Status.Regions.VRP != "SENSING" {
		t.Errorf("Regions.VRP: got %q, want SENSING", sj.Status.Regions.VRP)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(pacedSnapshot(), true, 10, markers.Counts{})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "TIMING_AV") {
		t.Error("expected AVI region state in HTML body")
	}
	if !strings.Contains(string(body), testSession) {
		t.Error("expected session ID in HTML body")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	// Initially not baselined
	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.Ready {
		t.Error("expected Ready=false initially")
	}

	// Update state
	tr.Update(pacedSnapshot(), true, 99, markers.Counts{VS: 1})
	tr.SetMQTTConnected(true)

	// Should reflect new state
	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if !sj2.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if sj2.Status.Regions.LRI != "ATRIAL_SENSED" {
		t.Errorf("Regions.LRI: got %q, want ATRIAL_SENSED", sj2.Status.Regions.LRI)
	}
	if sj2.Status.Counts.VS != 1 {
		t.Errorf("Counts.VS: got %d, want 1", sj2.Status.Counts.VS)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
