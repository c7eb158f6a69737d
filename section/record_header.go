package section

import (
	"fmt"

	"github.com/arloliu/fitstream/errs"
)

// HeaderKind distinguishes the two record header shapes.
type HeaderKind uint8

const (
	// HeaderNormal is a normal header selecting a definition or data record for one of 16 slots.
	HeaderNormal HeaderKind = iota
	// HeaderCompressed is a compressed timestamp header introducing a data record for one of 4 slots.
	HeaderCompressed
)

func (k HeaderKind) String() string {
	switch k {
	case HeaderNormal:
		return "Normal"
	case HeaderCompressed:
		return "CompressedTimestamp"
	default:
		return "Unknown"
	}
}

// Record header bit layout.
//
//	Normal:     bit 7 = 0, bit 6 definition, bit 5 developer flag (definition) or
//	            reserved (data), bit 4 reserved, bits 0-3 local message slot
//	Compressed: bit 7 = 1, bits 5-6 local message slot, bits 0-4 time offset
const (
	CompressedMask    = 0x80
	DefinitionMask    = 0x40
	DeveloperDataMask = 0x20
	ReservedMask      = 0x10
	LocalMessageMask  = 0x0F

	CompressedLocalShift = 5
	CompressedLocalMask  = 0x03
	TimeOffsetMask       = 0x1F
)

// RecordHeader is the single byte preceding every record.
//
// It is a tagged union over HeaderKind; accessors for the other shape return zero.
type RecordHeader uint8

// Kind returns the header shape.
func (h RecordHeader) Kind() HeaderKind {
	if h&CompressedMask != 0 {
		return HeaderCompressed
	}

	return HeaderNormal
}

// IsCompressed reports whether this is a compressed timestamp header.
func (h RecordHeader) IsCompressed() bool {
	return h.Kind() == HeaderCompressed
}

// IsDefinition reports whether a normal header introduces a definition record.
func (h RecordHeader) IsDefinition() bool {
	return h.Kind() == HeaderNormal && h&DefinitionMask != 0
}

// IsData reports whether the header introduces a data record.
func (h RecordHeader) IsData() bool {
	return !h.IsDefinition()
}

// LocalMessage returns the local message slot (0-15 normal, 0-3 compressed).
func (h RecordHeader) LocalMessage() uint8 {
	switch h.Kind() {
	case HeaderCompressed:
		return (uint8(h) >> CompressedLocalShift) & CompressedLocalMask
	default:
		return uint8(h) & LocalMessageMask
	}
}

// TimeOffset returns the 5-bit time offset of a compressed header, or 0.
func (h RecordHeader) TimeOffset() uint8 {
	if h.Kind() != HeaderCompressed {
		return 0
	}

	return uint8(h) & TimeOffsetMask
}

// HasDeveloperData reports whether a definition header announces developer field definitions.
//
// This is the only place the developer-data bit position is encoded.
func (h RecordHeader) HasDeveloperData() bool {
	return h.IsDefinition() && h&DeveloperDataMask != 0
}

// ReservedBits returns the reserved bits that are set, if any.
func (h RecordHeader) ReservedBits() uint8 {
	if h.Kind() != HeaderNormal {
		return 0
	}

	reserved := uint8(h) & ReservedMask
	if !h.IsDefinition() {
		reserved |= uint8(h) & DeveloperDataMask
	}

	return reserved
}

// String returns a compact human readable form of the header.
func (h RecordHeader) String() string {
	switch {
	case h.IsCompressed():
		return fmt.Sprintf("compressed(local=%d, offset=%d)", h.LocalMessage(), h.TimeOffset())
	case h.IsDefinition():
		return fmt.Sprintf("definition(local=%d)", h.LocalMessage())
	default:
		return fmt.Sprintf("data(local=%d)", h.LocalMessage())
	}
}

// NewDefinitionHeader builds a normal definition record header.
func NewDefinitionHeader(local uint8) RecordHeader {
	return RecordHeader(DefinitionMask | local&LocalMessageMask)
}

// NewDataHeader builds a normal data record header.
func NewDataHeader(local uint8) RecordHeader {
	return RecordHeader(local & LocalMessageMask)
}

// NewCompressedHeader builds a compressed timestamp header.
func NewCompressedHeader(local, offset uint8) RecordHeader {
	return RecordHeader(CompressedMask |
		(local&CompressedLocalMask)<<CompressedLocalShift |
		offset&TimeOffsetMask)
}

// ParseRecordHeader classifies a record header byte and validates it.
//
// Parameters:
//   - b: The header byte
//   - strict: Whether set reserved bits are reported
//
// Returns:
//   - RecordHeader: The classified header (valid even when an error is returned)
//   - error: errs.ErrDeveloperDataUnsupported for a definition announcing developer
//     fields, errs.ErrReservedBitSet for reserved bits in strict mode
func ParseRecordHeader(b byte, strict bool) (RecordHeader, error) {
	h := RecordHeader(b)

	if h.HasDeveloperData() {
		return h, fmt.Errorf("%w: local message %d", errs.ErrDeveloperDataUnsupported, h.LocalMessage())
	}

	if strict {
		if reserved := h.ReservedBits(); reserved != 0 {
			return h, fmt.Errorf("%w: header 0x%02X, bits 0x%02X", errs.ErrReservedBitSet, b, reserved)
		}
	}

	return h, nil
}
