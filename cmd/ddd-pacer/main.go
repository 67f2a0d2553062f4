// Command ddd-pacer runs a dual-chamber pacing controller: it polls the
// GPIO sense lines, drives the timing state machine, toggles the pace
// output lines, and publishes pacing markers to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/ddd-pacer/internal/config"
	"github.com/sweeney/ddd-pacer/internal/edge"
	"github.com/sweeney/ddd-pacer/internal/gpio"
	"github.com/sweeney/ddd-pacer/internal/markers"
	"github.com/sweeney/ddd-pacer/internal/mqtt"
	"github.com/sweeney/ddd-pacer/internal/pacing"
	"github.com/sweeney/ddd-pacer/internal/status"
	"github.com/sweeney/ddd-pacer/internal/web"
)

func main() {
	defaults := config.Default()

	configPath := flag.String("config", "", "YAML config file (flags override file values)")
	poll := flag.Duration("poll", time.Duration(defaults.PollMs)*time.Millisecond, "Sense polling interval, one clock tick per poll")
	heartbeat := flag.Duration("heartbeat", time.Duration(defaults.HeartbeatMs)*time.Millisecond, "Heartbeat interval (0 to disable)")
	broker := flag.String("broker", defaults.Broker, "MQTT broker address")
	avi := flag.Uint("avi", uint(defaults.Intervals.AVI), "AV delay in ticks")
	lri := flag.Uint("lri", uint(defaults.Intervals.LRI), "Lower rate interval in ticks")
	pvarp := flag.Uint("pvarp", uint(defaults.Intervals.PVARP), "Post-ventricular atrial refractory period in ticks")
	vrp := flag.Uint("vrp", uint(defaults.Intervals.VRP), "Ventricular refractory period in ticks")
	uri := flag.Uint("uri", uint(defaults.Intervals.URI), "Upper rate interval in ticks")
	pinVSense := flag.Int("pin-vsense", defaults.Pins.VSense, "BCM pin number for the ventricular sense input")
	pinASense := flag.Int("pin-asense", defaults.Pins.ASense, "BCM pin number for the atrial sense input")
	pinAP := flag.Int("pin-ap", defaults.Pins.AP, "BCM pin number for the atrial pace output")
	pinVP := flag.Int("pin-vp", defaults.Pins.VP, "BCM pin number for the ventricular pace output")
	pinAS := flag.Int("pin-as", defaults.Pins.AS, "BCM pin number for the atrial sense ack output")
	pinVS := flag.Int("pin-vs", defaults.Pins.VS, "BCM pin number for the ventricular sense ack output")
	markerLog := flag.String("marker-log", defaults.MarkerLog, "CBOR marker log path (empty to disable)")
	httpAddr := flag.String("http", defaults.HTTPAddr, "HTTP status address (empty to disable)")
	printState := flag.Bool("print-state", false, "Print current sense line state and exit")

	flag.Parse()

	cfg := defaults
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		cfg = loaded
	}

	// Explicitly set flags win over file values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "poll":
			cfg.PollMs = int64(*poll / time.Millisecond)
		case "heartbeat":
			cfg.HeartbeatMs = int64(*heartbeat / time.Millisecond)
		case "broker":
			cfg.Broker = *broker
		case "avi":
			cfg.Intervals.AVI = uint32(*avi)
		case "lri":
			cfg.Intervals.LRI = uint32(*lri)
		case "pvarp":
			cfg.Intervals.PVARP = uint32(*pvarp)
		case "vrp":
			cfg.Intervals.VRP = uint32(*vrp)
		case "uri":
			cfg.Intervals.URI = uint32(*uri)
		case "pin-vsense":
			cfg.Pins.VSense = *pinVSense
		case "pin-asense":
			cfg.Pins.ASense = *pinASense
		case "pin-ap":
			cfg.Pins.AP = *pinAP
		case "pin-vp":
			cfg.Pins.VP = *pinVP
		case "pin-as":
			cfg.Pins.AS = *pinAS
		case "pin-vs":
			cfg.Pins.VS = *pinVS
		case "marker-log":
			cfg.MarkerLog = *markerLog
		case "http":
			cfg.HTTPAddr = *httpAddr
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, printState bool) error {
	// Initialize GPIO sense lines
	gpioReader, err := gpio.NewRealReader(cfg.Pins.VSense, cfg.Pins.ASense)
	if err != nil {
		return fmt.Errorf("init gpio reader: %w", err)
	}
	defer gpioReader.Close()

	// Print state mode
	if printState {
		v, a, err := gpioReader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("VSENSE: %s, ASENSE: %s\n", levelString(v), levelString(a))
		return nil
	}

	// Initialize GPIO pace outputs
	pacer, err := gpio.NewRealPacer(cfg.Pins.AP, cfg.Pins.VP, cfg.Pins.AS, cfg.Pins.VS)
	if err != nil {
		return fmt.Errorf("init gpio pacer: %w", err)
	}
	defer pacer.Close()

	// Initialize the timing controller
	ctrl, err := pacing.New(cfg.Intervals.Pacing(), pacer)
	if err != nil {
		return fmt.Errorf("init controller: %w", err)
	}

	session := uuid.New().String()

	// Marker log
	var sink markers.Sink = markers.NoopSink{}
	if cfg.MarkerLog != "" {
		fileLog, err := markers.NewFileLog(cfg.MarkerLog)
		if err != nil {
			return fmt.Errorf("open marker log: %w", err)
		}
		defer fileLog.Close()
		sink = fileLog
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.Broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), session, status.Config{
		PollMs:      cfg.PollMs,
		HeartbeatMs: cfg.HeartbeatMs,
		Broker:      cfg.Broker,
		HTTPPort:    cfg.HTTPAddr,
		MarkerLog:   cfg.MarkerLog,
		Intervals:   cfg.Intervals.Pacing(),
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	poll := time.Duration(cfg.PollMs) * time.Millisecond
	heartbeat := time.Duration(cfg.HeartbeatMs) * time.Millisecond
	iv := cfg.Intervals
	log.Printf("started: session=%s poll=%v broker=%s heartbeat=%v avi=%d lri=%d pvarp=%d vrp=%d uri=%d",
		session, poll, cfg.Broker, heartbeat, iv.AVI, iv.LRI, iv.PVARP, iv.VRP, iv.URI)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, gpioReader, publisher, publisher, tracker, sink, session, heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(ctrl *pacing.Controller, reader gpio.Reader, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, sink markers.Sink, session string, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	detector := edge.New()

	var (
		ticks      uint64
		counts     markers.Counts
		clockLevel bool
		gpioDown   bool
	)
	lastActivity := startTime
	lastBeat := startTime

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			v, a, err := reader.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				// One GPIO_ERROR event per outage, not per failed poll.
				if !gpioDown {
					gpioDown = true
					gpioEvent := mqtt.SystemEvent{
						Timestamp: t,
						Event:     "GPIO_ERROR",
						Reason:    err.Error(),
					}
					if pubErr := publisher.PublishSystem(gpioEvent); pubErr != nil {
						log.Printf("failed to publish gpio error event: %v", pubErr)
					}
				}
				continue
			}
			gpioDown = false

			// Every poll advances the synthetic clock line by one
			// half-cycle; the detector turns each flip into a clock tick.
			clockLevel = !clockLevel

			events := detector.Process(edge.Sample{VSense: v, ASense: a, Clock: clockLevel})

			for _, ev := range events {
				if ev == pacing.EventClockTick {
					ticks++
				}
				for _, m := range ctrl.Dispatch(ev) {
					counts.Add(m)
					lastActivity = t
					log.Printf("marker: %s (tick=%d)", m, ticks)

					rec := markers.Record{
						Time:    t,
						Session: session,
						Tick:    ticks,
						Marker:  m,
					}
					sink.Record(rec)
					if err := publisher.Publish(rec); err != nil {
						log.Printf("publish error: %v", err)
						// Don't crash on publish failure
					}
				}
			}

			if !detector.IsBaselined() {
				// Still waiting for baseline
				continue
			}

			// Heartbeat fires only after a full quiet interval
			if heartbeat > 0 && t.Sub(lastActivity) >= heartbeat && t.Sub(lastBeat) >= heartbeat {
				lastBeat = t
				log.Printf("heartbeat: uptime=%v ticks=%d markers=%d", t.Sub(startTime).Truncate(time.Second), ticks, counts.Total())

				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					tracker.Update(ctrl.Snapshot(), detector.IsBaselined(), ticks, counts)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(ctrl.Snapshot(), detector.IsBaselined(), ticks, counts)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func levelString(high bool) string {
	if high {
		return "HIGH"
	}
	return "LOW"
}
