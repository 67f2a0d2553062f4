package markers

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLog writes marker records to a file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
type FileLog struct {
	file    *os.File
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

// NewFileLog creates a FileLog that writes to the specified path.
// If the file exists, new records are appended. The file is created with
// permissions 0644 if it doesn't exist.
func NewFileLog(path string) (*FileLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLog{
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Record writes one record to the log file.
// Encoding errors are ignored; the marker log must not disrupt pacing.
func (l *FileLog) Record(rec Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	_ = l.encoder.Encode(rec)
}

// Close closes the log file.
// It is safe to call Close multiple times.
// After Close is called, subsequent Record calls are silently ignored.
func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

// Compile-time interface satisfaction check.
var _ Sink = (*FileLog)(nil)
