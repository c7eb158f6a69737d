package format

import "time"

// Protocol constants shared by the header parser and the decoder engine.
const (
	// Signature is the data type tag carried at bytes 8-11 of every file header.
	Signature = ".FIT"

	HeaderSizeLegacy = 12 // HeaderSizeLegacy is the header size without a header checksum.
	HeaderSize       = 14 // HeaderSize is the header size with a trailing header checksum.
	ChecksumSize     = 2  // ChecksumSize is the size of the trailing file checksum.

	// MaxLocalMessages is the number of local message slots reachable from a normal header.
	MaxLocalMessages = 16
	// MaxCompressedLocalMessages is the number of slots reachable from a compressed timestamp header.
	MaxCompressedLocalMessages = 4
	// MaxFieldCount is the largest field count a definition record can declare.
	MaxFieldCount = 255

	// DefinitionFixedSize is the size of the fixed part of a definition record body.
	DefinitionFixedSize = 5
	// FieldDescriptorSize is the size of a single field descriptor in a definition record.
	FieldDescriptorSize = 3

	// TimestampFieldNumber is the field number reserved for absolute timestamps in any message.
	TimestampFieldNumber = 253
	// TimeOffsetMask selects the 5-bit offset of a compressed timestamp header.
	TimeOffsetMask = 0x1F
	// TimeOffsetPeriod is the rollover period of a compressed timestamp offset, in seconds.
	TimeOffsetPeriod = 32
)

// Epoch is the FIT time origin: 1989-12-31T00:00:00Z.
var Epoch = time.Date(1989, time.December, 31, 0, 0, 0, 0, time.UTC)

// epochUnix is Epoch expressed in Unix seconds.
const epochUnix = 631065600

// TimeFromFIT converts a FIT timestamp (seconds since Epoch) into a UTC time.
func TimeFromFIT(ts uint32) time.Time {
	return time.Unix(epochUnix+int64(ts), 0).UTC()
}

// TimeToFIT converts a time into FIT seconds since Epoch.
//
// Times before Epoch or beyond the uint32 range are clamped.
func TimeToFIT(t time.Time) uint32 {
	secs := t.Unix() - epochUnix
	if secs < 0 {
		return 0
	}
	if secs > 0xFFFFFFFF {
		return 0xFFFFFFFF
	}

	return uint32(secs)
}
