package markers

import (
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/sweeney/ddd-pacer/internal/pacing"
)

// Filter specifies criteria for filtering marker records.
// Empty/nil fields match all records for that criterion.
type Filter struct {
	// Session filters by exact session ID match.
	Session string

	// Marker filters by marker kind.
	Marker *pacing.Marker

	// TimeStart filters records at or after this time.
	TimeStart *time.Time

	// TimeEnd filters records before this time.
	TimeEnd *time.Time
}

// matches returns true if the record matches all filter criteria.
func (f *Filter) matches(rec Record) bool {
	if f.Session != "" && rec.Session != f.Session {
		return false
	}
	if f.Marker != nil && rec.Marker != *f.Marker {
		return false
	}
	if f.TimeStart != nil && rec.Time.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !rec.Time.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// Reader reads marker records from a CBOR-encoded log file.
// It provides an iterator interface for streaming large files.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader creates a Reader that reads all records from the specified file.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader creates a Reader that reads records matching the filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		file:    f,
		decoder: NewDecoder(f),
		filter:  filter,
	}, nil
}

// Next returns the next record that matches the filter.
// Returns io.EOF when no more records are available.
func (r *Reader) Next() (Record, error) {
	for {
		var rec Record
		if err := r.decoder.Decode(&rec); err != nil {
			if err == io.EOF {
				return Record{}, io.EOF
			}
			return Record{}, err
		}

		if r.filter.matches(rec) {
			return rec, nil
		}
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
