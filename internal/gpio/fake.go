package gpio

import "errors"

// FakeReader is a test double that returns scripted sense-line levels.
type FakeReader struct {
	// Samples contains scripted line levels to return.
	// Each call to Read() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// Sample represents a single reading of the two sense lines.
type Sample struct {
	V bool // ventricular sense level
	A bool // atrial sense level
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (bool, bool, error) {
	if f.ReadError != nil {
		return false, false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample.V, sample.A, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakePacer records pacing outputs in call order.
type FakePacer struct {
	// Calls lists the outputs performed, oldest first.
	Calls []string

	// Closed tracks if Close was called
	Closed bool
}

func (f *FakePacer) PaceAtrium()          { f.Calls = append(f.Calls, "AP") }
func (f *FakePacer) AckAtrialSense()      { f.Calls = append(f.Calls, "AS") }
func (f *FakePacer) PaceVentricle()       { f.Calls = append(f.Calls, "VP") }
func (f *FakePacer) AckVentricularSense() { f.Calls = append(f.Calls, "VS") }

// Close marks the pacer as closed.
func (f *FakePacer) Close() error {
	f.Closed = true
	return nil
}

// Reset clears all recorded calls.
func (f *FakePacer) Reset() {
	f.Calls = nil
	f.Closed = false
}

var (
	_ Reader = (*FakeReader)(nil)
	_ Pacer  = (*FakePacer)(nil)
)
