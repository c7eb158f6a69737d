package decoder

import (
	"fmt"
	"time"

	"github.com/arloliu/fitstream/errs"
	"github.com/arloliu/fitstream/format"
	"github.com/arloliu/fitstream/section"
	"github.com/arloliu/fitstream/value"
)

// Event is one step of a decoded stream: *HeaderEvent, *DefinitionEvent,
// *DataEvent or *ChecksumEvent.
//
// Events are owned by the Decoder and overwritten by the next call to Next.
type Event interface {
	isEvent()
}

// HeaderEvent is produced once, after the file header has been validated.
type HeaderEvent struct {
	Header section.FileHeader
}

// DefinitionEvent reports a definition record bound to a local slot.
type DefinitionEvent struct {
	// Offset is the stream offset of the record header byte.
	Offset int64
	// Definition is the installed layout, owned by the decoder's table.
	Definition *section.MessageDefinition
}

// Local returns the local message slot.
func (e *DefinitionEvent) Local() uint8 {
	return e.Definition.LocalMessage
}

// Global returns the global message number.
func (e *DefinitionEvent) Global() uint16 {
	return e.Definition.GlobalMessage
}

// Fields returns the field descriptors in declaration order.
func (e *DefinitionEvent) Fields() []section.FieldDescriptor {
	return e.Definition.Fields()
}

// DataEvent carries the decoded fields of one data record.
//
// Values alias the source buffer and are valid until the next call to Next.
type DataEvent struct {
	// Offset is the stream offset of the record header byte.
	Offset int64
	// Definition is the layout the record was decoded with.
	Definition *section.MessageDefinition
	// Values holds one entry per field, in definition order.
	Values []value.Value
	// Timestamp is the absolute timestamp of the record, in seconds since the FIT epoch.
	// Only meaningful when HasTimestamp is set.
	Timestamp    uint32
	HasTimestamp bool
	// Compressed reports whether the record used a compressed timestamp header.
	Compressed bool
	// TimeOffset is the 5-bit offset of a compressed timestamp header.
	TimeOffset uint8
}

// Local returns the local message slot.
func (e *DataEvent) Local() uint8 {
	return e.Definition.LocalMessage
}

// Global returns the global message number.
func (e *DataEvent) Global() uint16 {
	return e.Definition.GlobalMessage
}

// Field returns the first value with the given field number.
func (e *DataEvent) Field(number uint8) (value.Value, bool) {
	for _, v := range e.Values {
		if v.Number == number {
			return v, true
		}
	}

	return value.Value{}, false
}

// Time returns the record timestamp as a UTC time.
func (e *DataEvent) Time() (time.Time, bool) {
	if !e.HasTimestamp {
		return time.Time{}, false
	}

	return format.TimeFromFIT(e.Timestamp), true
}

// ChecksumEvent is the last event of a stream and reports file integrity.
//
// A mismatch does not invalidate events produced before it; callers decide
// whether to discard them.
type ChecksumEvent struct {
	Match    bool
	Computed uint16
	Found    uint16
}

// Err returns an error wrapping errs.ErrChecksumMismatch when the checksum did not match.
func (e *ChecksumEvent) Err() error {
	if e.Match {
		return nil
	}

	return fmt.Errorf("%w: computed 0x%04X, found 0x%04X", errs.ErrChecksumMismatch, e.Computed, e.Found)
}

func (*HeaderEvent) isEvent()     {}
func (*DefinitionEvent) isEvent() {}
func (*DataEvent) isEvent()       {}
func (*ChecksumEvent) isEvent()   {}
