// Package timestamp reconstructs absolute FIT timestamps from compressed record headers.
package timestamp

import (
	"github.com/arloliu/fitstream/errs"
	"github.com/arloliu/fitstream/format"
)

// Rolling tracks the last absolute timestamp seen in a stream.
//
// The zero value holds no context; Apply fails until Set has been called.
type Rolling struct {
	last  uint32
	valid bool
}

// Set records an absolute timestamp decoded from a timestamp field.
func (r *Rolling) Set(ts uint32) {
	r.last = ts
	r.valid = true
}

// Apply resolves a compressed 5-bit time offset against the last known timestamp
// and makes the result the new reference.
//
// The low 5 bits of the reference are replaced with offset; when offset is smaller
// than the replaced bits the counter wrapped, and one 32-second period is added.
//
// Returns errs.ErrNoTimestampContext if no absolute timestamp has been seen.
func (r *Rolling) Apply(offset uint8) (uint32, error) {
	if !r.valid {
		return 0, errs.ErrNoTimestampContext
	}

	offset &= format.TimeOffsetMask
	prev := uint8(r.last & format.TimeOffsetMask)

	ts := (r.last &^ format.TimeOffsetMask) | uint32(offset)
	if offset < prev {
		ts += format.TimeOffsetPeriod
	}
	r.last = ts

	return ts, nil
}

// Last returns the current reference timestamp, if any.
func (r *Rolling) Last() (uint32, bool) {
	return r.last, r.valid
}

// Reset drops the reference timestamp.
func (r *Rolling) Reset() {
	r.last = 0
	r.valid = false
}
