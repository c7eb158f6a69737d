package value

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/fitstream/endian"
	"github.com/arloliu/fitstream/format"
	"github.com/arloliu/fitstream/section"
)

// Value is a typed view over the bytes of one field of a data record.
type Value struct {
	// Number is the field number from the definition.
	Number uint8

	declared format.BaseType
	baseType format.BaseType
	raw      []byte
	engine   endian.EndianEngine
}

// New creates a Value over raw for the given field descriptor.
//
// raw must hold exactly desc.Size bytes; engine is the definition's byte order.
func New(desc section.FieldDescriptor, raw []byte, engine endian.EndianEngine) Value {
	bt := desc.BaseType
	if width := bt.Size(); width == 0 || len(raw)%width != 0 {
		bt = format.Byte
	}

	return Value{
		Number:   desc.Number,
		declared: desc.BaseType,
		baseType: bt,
		raw:      raw,
		engine:   engine,
	}
}

// BaseType returns the base type used to interpret the bytes.
//
// It differs from DeclaredType only when the field size is not a multiple of
// the declared width, in which case it is format.Byte.
func (v Value) BaseType() format.BaseType {
	return v.baseType
}

// DeclaredType returns the base type tag from the definition record.
func (v Value) DeclaredType() format.BaseType {
	return v.declared
}

// Kind returns the kind of the effective base type.
func (v Value) Kind() format.Kind {
	return v.baseType.Kind()
}

// Len returns the number of elements.
func (v Value) Len() int {
	if w := v.baseType.Size(); w > 0 {
		return len(v.raw) / w
	}

	return 0
}

// IsArray reports whether the field holds more than one element.
//
// Strings are never arrays.
func (v Value) IsArray() bool {
	return v.Kind() != format.KindString && v.Len() > 1
}

// Raw returns the field bytes exactly as stored in the record.
func (v Value) Raw() []byte {
	return v.raw
}

// bits returns element i as raw bits in the definition's byte order.
func (v Value) bits(i int) uint64 {
	w := v.baseType.Size()
	return endian.Bits(v.engine, v.raw[i*w:], w)
}

// ValidAt reports whether element i holds a value.
func (v Value) ValidAt(i int) bool {
	if i < 0 || i >= v.Len() {
		return false
	}

	switch v.Kind() {
	case format.KindString, format.KindBytes:
		return v.Valid()
	default:
		return v.bits(i) != v.baseType.InvalidBits()
	}
}

// Valid reports whether the field holds at least one value.
func (v Value) Valid() bool {
	switch v.Kind() {
	case format.KindString:
		return len(v.raw) > 0 && v.raw[0] != 0
	case format.KindBytes:
		for _, b := range v.raw {
			if b != 0xFF {
				return true
			}
		}

		return false
	default:
		for i := range v.Len() {
			if v.ValidAt(i) {
				return true
			}
		}

		return false
	}
}

// Uint returns element i as an unsigned integer.
//
// Returns false if the element is invalid or the kind is not unsigned or bytes.
func (v Value) Uint(i int) (uint64, bool) {
	switch v.Kind() {
	case format.KindUnsigned, format.KindBytes:
		if !v.ValidAt(i) {
			return 0, false
		}

		return v.bits(i), true
	default:
		return 0, false
	}
}

// Int returns element i as a signed integer.
//
// Signed kinds are sign-extended; unsigned elements are returned when they fit
// in an int64. Returns false for invalid elements and other kinds.
func (v Value) Int(i int) (int64, bool) {
	if !v.ValidAt(i) {
		return 0, false
	}

	bits := v.bits(i)

	switch v.Kind() {
	case format.KindSigned:
		switch v.baseType.Size() {
		case 1:
			return int64(int8(bits)), true
		case 2:
			return int64(int16(bits)), true
		case 4:
			return int64(int32(bits)), true
		default:
			return int64(bits), true
		}
	case format.KindUnsigned, format.KindBytes:
		if bits > math.MaxInt64 {
			return 0, false
		}

		return int64(bits), true
	default:
		return 0, false
	}
}

// Float returns element i as a float64, converting integers.
//
// Returns false for invalid elements and for strings.
func (v Value) Float(i int) (float64, bool) {
	if !v.ValidAt(i) {
		return 0, false
	}

	switch v.Kind() {
	case format.KindFloat:
		if v.baseType.Size() == 4 {
			return float64(math.Float32frombits(uint32(v.bits(i)))), true
		}

		return math.Float64frombits(v.bits(i)), true
	case format.KindSigned:
		n, _ := v.Int(i)
		return float64(n), true
	case format.KindUnsigned, format.KindBytes:
		return float64(v.bits(i)), true
	default:
		return 0, false
	}
}

// Text returns a string field up to its first NUL byte.
//
// Returns false for non-string kinds and invalid strings.
func (v Value) Text() (string, bool) {
	if v.Kind() != format.KindString || !v.Valid() {
		return "", false
	}

	s := v.raw
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}

	return string(s), true
}

// Any returns the field as a native Go value.
//
// Scalars map to the matching sized type (uint8 for enum and byte, int16 for
// sint16, float32 for float32 and so on). Arrays map to a slice of that type
// holding only the valid elements, byte fields to []byte, and strings to string.
// Returns nil when the field holds no value.
//
// Unlike the other accessors, Any allocates for arrays, bytes and strings.
func (v Value) Any() any {
	if !v.Valid() {
		return nil
	}

	switch v.Kind() {
	case format.KindString:
		s, _ := v.Text()
		return s
	case format.KindBytes:
		return bytes.Clone(v.raw)
	}

	if !v.IsArray() {
		return v.scalar(0)
	}

	switch v.baseType {
	case format.Enum, format.Uint8, format.Uint8z:
		return collect[uint8](v)
	case format.Sint8:
		return collect[int8](v)
	case format.Uint16, format.Uint16z:
		return collect[uint16](v)
	case format.Sint16:
		return collect[int16](v)
	case format.Uint32, format.Uint32z:
		return collect[uint32](v)
	case format.Sint32:
		return collect[int32](v)
	case format.Uint64, format.Uint64z:
		return collect[uint64](v)
	case format.Sint64:
		return collect[int64](v)
	case format.Float32:
		return collect[float32](v)
	case format.Float64:
		return collect[float64](v)
	default:
		return nil
	}
}

// scalar converts element i to its native type. The element must be valid.
func (v Value) scalar(i int) any {
	bits := v.bits(i)

	switch v.baseType {
	case format.Enum, format.Uint8, format.Uint8z:
		return uint8(bits)
	case format.Sint8:
		return int8(bits)
	case format.Uint16, format.Uint16z:
		return uint16(bits)
	case format.Sint16:
		return int16(bits)
	case format.Uint32, format.Uint32z:
		return uint32(bits)
	case format.Sint32:
		return int32(bits)
	case format.Uint64, format.Uint64z:
		return bits
	case format.Sint64:
		return int64(bits)
	case format.Float32:
		return math.Float32frombits(uint32(bits))
	case format.Float64:
		return math.Float64frombits(bits)
	default:
		return nil
	}
}

func collect[T any](v Value) []T {
	out := make([]T, 0, v.Len())
	for i := range v.Len() {
		if v.ValidAt(i) {
			out = append(out, v.scalar(i).(T))
		}
	}

	return out
}

// String formats the value for display. Invalid elements print as "-".
func (v Value) String() string {
	if !v.Valid() {
		return "-"
	}

	switch v.Kind() {
	case format.KindString:
		s, _ := v.Text()
		return fmt.Sprintf("%q", s)
	case format.KindBytes:
		return fmt.Sprintf("%x", v.raw)
	}

	if !v.IsArray() {
		return fmt.Sprint(v.scalar(0))
	}

	var sb strings.Builder
	sb.WriteByte('[')
	for i := range v.Len() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if v.ValidAt(i) {
			fmt.Fprint(&sb, v.scalar(i))
		} else {
			sb.WriteByte('-')
		}
	}
	sb.WriteByte(']')

	return sb.String()
}
