package format

import "math"

type (
	// BaseType is the base type tag carried by every field descriptor.
	//
	// Bit 7 marks an endian-capable (multi-byte) type, bits 0-4 hold the base
	// type number.
	BaseType uint8
	// Architecture is the byte order declared by a definition record.
	Architecture uint8
	// Kind classifies a base type by how its element bits are interpreted.
	Kind uint8
	// CompressionType identifies an outer compression wrapper around a FIT stream.
	CompressionType uint8
)

const (
	Enum    BaseType = 0x00 // Enum is an 8-bit enumeration.
	Sint8   BaseType = 0x01 // Sint8 is a signed 8-bit integer.
	Uint8   BaseType = 0x02 // Uint8 is an unsigned 8-bit integer.
	Sint16  BaseType = 0x83 // Sint16 is a signed 16-bit integer.
	Uint16  BaseType = 0x84 // Uint16 is an unsigned 16-bit integer.
	Sint32  BaseType = 0x85 // Sint32 is a signed 32-bit integer.
	Uint32  BaseType = 0x86 // Uint32 is an unsigned 32-bit integer.
	String  BaseType = 0x07 // String is a null-terminated UTF-8 string.
	Float32 BaseType = 0x88 // Float32 is an IEEE 754 single precision float.
	Float64 BaseType = 0x89 // Float64 is an IEEE 754 double precision float.
	Uint8z  BaseType = 0x0A // Uint8z is an unsigned 8-bit integer with zero as invalid value.
	Uint16z BaseType = 0x8B // Uint16z is an unsigned 16-bit integer with zero as invalid value.
	Uint32z BaseType = 0x8C // Uint32z is an unsigned 32-bit integer with zero as invalid value.
	Byte    BaseType = 0x0D // Byte is an opaque byte array.
	Sint64  BaseType = 0x8E // Sint64 is a signed 64-bit integer.
	Uint64  BaseType = 0x8F // Uint64 is an unsigned 64-bit integer.
	Uint64z BaseType = 0x90 // Uint64z is an unsigned 64-bit integer with zero as invalid value.

	LittleEndian Architecture = 0 // LittleEndian is the default FIT architecture.
	BigEndian    Architecture = 1 // BigEndian is the alternative FIT architecture.

	KindUnsigned Kind = 0x1 // KindUnsigned covers unsigned integers and enums.
	KindSigned   Kind = 0x2 // KindSigned covers two's complement integers.
	KindFloat    Kind = 0x3 // KindFloat covers IEEE 754 floats.
	KindString   Kind = 0x4 // KindString covers null-terminated strings.
	KindBytes    Kind = 0x5 // KindBytes covers opaque byte arrays.

	CompressionNone CompressionType = 0x1 // CompressionNone represents a plain FIT stream.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 stream compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 frame compression.
	CompressionGzip CompressionType = 0x5 // CompressionGzip represents gzip compression.
)

// endianCapableMask marks base types whose multi-byte values depend on byte order.
const endianCapableMask = 0x80

type baseTypeInfo struct {
	name    string
	size    int
	kind    Kind
	invalid uint64
}

// baseTypes is indexed by the raw tag; unknown tags have a zero size.
var baseTypes = [256]baseTypeInfo{
	Enum:    {"enum", 1, KindUnsigned, 0xFF},
	Sint8:   {"sint8", 1, KindSigned, 0x7F},
	Uint8:   {"uint8", 1, KindUnsigned, 0xFF},
	Sint16:  {"sint16", 2, KindSigned, 0x7FFF},
	Uint16:  {"uint16", 2, KindUnsigned, 0xFFFF},
	Sint32:  {"sint32", 4, KindSigned, 0x7FFFFFFF},
	Uint32:  {"uint32", 4, KindUnsigned, 0xFFFFFFFF},
	String:  {"string", 1, KindString, 0x00},
	Float32: {"float32", 4, KindFloat, 0xFFFFFFFF},
	Float64: {"float64", 8, KindFloat, math.MaxUint64},
	Uint8z:  {"uint8z", 1, KindUnsigned, 0x00},
	Uint16z: {"uint16z", 2, KindUnsigned, 0x0000},
	Uint32z: {"uint32z", 4, KindUnsigned, 0x00000000},
	Byte:    {"byte", 1, KindBytes, 0xFF},
	Sint64:  {"sint64", 8, KindSigned, math.MaxInt64},
	Uint64:  {"uint64", 8, KindUnsigned, math.MaxUint64},
	Uint64z: {"uint64z", 8, KindUnsigned, 0},
}

// ParseBaseType validates a raw base type tag.
//
// Returns false if the tag is outside the recognized set.
func ParseBaseType(tag uint8) (BaseType, bool) {
	t := BaseType(tag)

	return t, baseTypes[t].size != 0
}

// IsKnown returns whether the base type is part of the recognized set.
func (t BaseType) IsKnown() bool {
	return baseTypes[t].size != 0
}

// Size returns the width in bytes of a single element, or 0 for unknown types.
func (t BaseType) Size() int {
	return baseTypes[t].size
}

// Kind returns how the element bits are interpreted.
func (t BaseType) Kind() Kind {
	return baseTypes[t].kind
}

// InvalidBits returns the raw element bit pattern reserved as "no value".
func (t BaseType) InvalidBits() uint64 {
	return baseTypes[t].invalid
}

// IsEndianCapable returns whether multi-byte elements depend on the declared architecture.
func (t BaseType) IsEndianCapable() bool {
	return t&endianCapableMask != 0
}

// Number returns the base type number without the endian capability bit.
func (t BaseType) Number() uint8 {
	return uint8(t) & 0x1F
}

func (t BaseType) String() string {
	if info := baseTypes[t]; info.size != 0 {
		return info.name
	}

	return "Unknown"
}

func (a Architecture) String() string {
	switch a {
	case LittleEndian:
		return "LittleEndian"
	case BigEndian:
		return "BigEndian"
	default:
		return "Unknown"
	}
}

func (k Kind) String() string {
	switch k {
	case KindUnsigned:
		return "Unsigned"
	case KindSigned:
		return "Signed"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionGzip:
		return "Gzip"
	default:
		return "Unknown"
	}
}
