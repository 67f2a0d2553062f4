//go:build linux

package gpio

import (
	"fmt"
	"log"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads the sense lines from actual hardware using the Linux
// GPIO character device.
type RealReader struct {
	chip   *gpiocdev.Chip
	vsense *gpiocdev.Line
	asense *gpiocdev.Line
}

// NewRealReader requests the two sense pins as inputs.
func NewRealReader(pinVSense, pinASense int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Request lines as input with pull-down so a disconnected sense lead
	// reads as a quiet chamber rather than floating.
	vLine, err := chip.RequestLine(pinVSense, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request ventricular sense pin %d: %w", pinVSense, err)
	}

	aLine, err := chip.RequestLine(pinASense, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		vLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request atrial sense pin %d: %w", pinASense, err)
	}

	return &RealReader{
		chip:   chip,
		vsense: vLine,
		asense: aLine,
	}, nil
}

// Read returns the levels of the ventricular and atrial sense lines.
func (r *RealReader) Read() (bool, bool, error) {
	vRaw, err := r.vsense.Value()
	if err != nil {
		return false, false, fmt.Errorf("read ventricular sense pin: %w", err)
	}

	aRaw, err := r.asense.Value()
	if err != nil {
		return false, false, fmt.Errorf("read atrial sense pin: %w", err)
	}

	return vRaw != 0, aRaw != 0, nil
}

// Close releases GPIO resources. Pins are reconfigured to input with
// pull-down (matching Pi boot defaults) before closing so external sense
// hardware sees a clean state across restarts.
func (r *RealReader) Close() error {
	var errs []error

	for _, line := range []*gpiocdev.Line{r.vsense, r.asense} {
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure sense pin: %w", err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sense pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealPacer drives the four marker lines on actual hardware. Outputs start
// low and flip on every call.
type RealPacer struct {
	chip *gpiocdev.Chip
	ap   *outputLine
	vp   *outputLine
	as   *outputLine
	vs   *outputLine
}

type outputLine struct {
	line  *gpiocdev.Line
	name  string
	level int
}

func (o *outputLine) toggle() {
	o.level ^= 1
	if err := o.line.SetValue(o.level); err != nil {
		log.Printf("gpio: %s output pin: %v", o.name, err)
	}
}

// NewRealPacer requests the four output pins, all driven low.
func NewRealPacer(pinAP, pinVP, pinAS, pinVS int) (*RealPacer, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	p := &RealPacer{chip: chip}
	requests := []struct {
		name string
		pin  int
		dst  **outputLine
	}{
		{"AP", pinAP, &p.ap},
		{"VP", pinVP, &p.vp},
		{"AS", pinAS, &p.as},
		{"VS", pinVS, &p.vs},
	}
	for _, req := range requests {
		line, err := chip.RequestLine(req.pin, gpiocdev.AsOutput(0))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("request %s output pin %d: %w", req.name, req.pin, err)
		}
		*req.dst = &outputLine{line: line, name: req.name}
	}
	return p, nil
}

func (p *RealPacer) PaceAtrium()          { p.ap.toggle() }
func (p *RealPacer) AckAtrialSense()      { p.as.toggle() }
func (p *RealPacer) PaceVentricle()       { p.vp.toggle() }
func (p *RealPacer) AckVentricularSense() { p.vs.toggle() }

// Close releases GPIO resources. Output pins are returned to inputs with
// pull-down so nothing keeps driving the marker lines after shutdown.
func (p *RealPacer) Close() error {
	var errs []error

	for _, o := range []*outputLine{p.ap, p.vp, p.as, p.vs} {
		if o == nil {
			continue
		}
		if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", o.name, err))
		}
		if err := o.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", o.name, err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

var (
	_ Reader = (*RealReader)(nil)
	_ Pacer  = (*RealPacer)(nil)
)
