// Package gpio connects the pacer to its sense and marker lines with a
// hardware abstraction. The real implementation uses the Linux GPIO
// character device. The fake implementations allow testing without hardware.
package gpio

// Reader reads the cardiac sense inputs.
type Reader interface {
	// Read returns the levels of the ventricular and atrial sense lines.
	// The lines idle low; a sense pulse drives them high.
	Read() (vsense, asense bool, err error)

	// Close releases GPIO resources.
	Close() error
}

// Pacer drives the pace and acknowledge outputs. Each call flips its line
// level, so every output appears as an edge to the monitoring hardware.
// Calls are fire-and-forget; output faults are logged, not returned.
type Pacer interface {
	PaceAtrium()
	AckAtrialSense()
	PaceVentricle()
	AckVentricularSense()

	// Close releases GPIO resources, returning the output lines to inputs.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinVSense = 17 // ventricular sense input
	DefaultPinASense = 27 // atrial sense input
	DefaultPinAP     = 22 // atrial pace output
	DefaultPinVP     = 23 // ventricular pace output
	DefaultPinAS     = 24 // atrial sense acknowledge output
	DefaultPinVS     = 25 // ventricular sense acknowledge output
)
