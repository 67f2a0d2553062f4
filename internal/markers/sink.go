package markers

// Sink receives marker records as they are emitted.
// Implementations must be safe for concurrent use and should return quickly;
// the pacing loop calls Record inline.
type Sink interface {
	Record(rec Record)
}

// NoopSink discards all records. Use when the marker log is disabled.
// NoopSink is safe for concurrent use and usable as a zero value.
type NoopSink struct{}

// Record discards the record.
func (NoopSink) Record(Record) {}

// Compile-time interface satisfaction check.
var _ Sink = NoopSink{}
