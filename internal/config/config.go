// Package config loads and validates the daemon configuration file.
//
// Interval values are expressed in clock ticks of the poll loop (with
// the default 1ms poll a tick is one millisecond). Fields absent from
// the file keep their defaults; command-line flags override file
// values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/ddd-pacer/internal/gpio"
	"github.com/sweeney/ddd-pacer/internal/pacing"
)

// Config holds every runtime option of the daemon.
type Config struct {
	PollMs      int64  `yaml:"poll_ms"`
	HeartbeatMs int64  `yaml:"heartbeat_ms"`
	Broker      string `yaml:"broker"`
	HTTPAddr    string `yaml:"http"`
	MarkerLog   string `yaml:"marker_log"`

	Intervals Intervals `yaml:"intervals"`
	Pins      Pins      `yaml:"pins"`
}

// Intervals holds the five pacing intervals in clock ticks.
type Intervals struct {
	AVI   uint32 `yaml:"avi"`
	LRI   uint32 `yaml:"lri"`
	PVARP uint32 `yaml:"pvarp"`
	VRP   uint32 `yaml:"vrp"`
	URI   uint32 `yaml:"uri"`
}

// Pacing converts the file representation into the controller's form.
func (i Intervals) Pacing() pacing.Intervals {
	return pacing.Intervals{
		AVI:   i.AVI,
		LRI:   i.LRI,
		PVARP: i.PVARP,
		VRP:   i.VRP,
		URI:   i.URI,
	}
}

// Pins holds the BCM pin assignments for the two sense inputs and the
// four pace/ack outputs.
type Pins struct {
	VSense int `yaml:"vsense"`
	ASense int `yaml:"asense"`
	AP     int `yaml:"ap"`
	VP     int `yaml:"vp"`
	AS     int `yaml:"as"`
	VS     int `yaml:"vs"`
}

func (p Pins) validate() error {
	for _, f := range []struct {
		name string
		pin  int
	}{
		{"vsense", p.VSense},
		{"asense", p.ASense},
		{"ap", p.AP},
		{"vp", p.VP},
		{"as", p.AS},
		{"vs", p.VS},
	} {
		if f.pin < 0 {
			return fmt.Errorf("pin %s cannot be negative, got %d", f.name, f.pin)
		}
	}
	return nil
}

// Default returns the configuration used when no file or flags are
// given.
func Default() Config {
	iv := pacing.DefaultIntervals()
	return Config{
		PollMs:      1,
		HeartbeatMs: 60_000,
		Broker:      "tcp://localhost:1883",
		HTTPAddr:    ":8080",
		MarkerLog:   "",
		Intervals: Intervals{
			AVI:   iv.AVI,
			LRI:   iv.LRI,
			PVARP: iv.PVARP,
			VRP:   iv.VRP,
			URI:   iv.URI,
		},
		Pins: Pins{
			VSense: gpio.DefaultPinVSense,
			ASense: gpio.DefaultPinASense,
			AP:     gpio.DefaultPinAP,
			VP:     gpio.DefaultPinVP,
			AS:     gpio.DefaultPinAS,
			VS:     gpio.DefaultPinVS,
		},
	}
}

// Validate checks the configuration for values the daemon cannot run
// with.
func (c *Config) Validate() error {
	if err := c.Intervals.Pacing().Validate(); err != nil {
		return fmt.Errorf("intervals: %w", err)
	}
	if err := c.Pins.validate(); err != nil {
		return err
	}
	if c.PollMs <= 0 {
		return fmt.Errorf("poll_ms must be positive, got %d", c.PollMs)
	}
	if c.HeartbeatMs < 0 {
		return fmt.Errorf("heartbeat_ms cannot be negative, got %d", c.HeartbeatMs)
	}
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	return nil
}

// Load reads a YAML configuration file over the defaults, so fields
// the file omits keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
