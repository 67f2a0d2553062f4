//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(pinVSense, pinASense int) (*RealReader, error) {
	return nil, errUnsupported
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() (bool, bool, error) {
	return false, false, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}

// RealPacer is not available on non-Linux platforms.
type RealPacer struct{}

// NewRealPacer returns an error on non-Linux platforms.
func NewRealPacer(pinAP, pinVP, pinAS, pinVS int) (*RealPacer, error) {
	return nil, errUnsupported
}

func (p *RealPacer) PaceAtrium()          {}
func (p *RealPacer) AckAtrialSense()      {}
func (p *RealPacer) PaceVentricle()       {}
func (p *RealPacer) AckVentricularSense() {}

// Close is not implemented on non-Linux platforms.
func (p *RealPacer) Close() error {
	return nil
}
