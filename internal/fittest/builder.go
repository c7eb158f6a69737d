// Package fittest builds FIT byte streams for tests.
package fittest

import (
	"github.com/arloliu/fitstream/endian"
	"github.com/arloliu/fitstream/format"
	"github.com/arloliu/fitstream/internal/crc"
	"github.com/arloliu/fitstream/internal/pool"
	"github.com/arloliu/fitstream/section"
)

// Builder accumulates records and frames them with a header and trailing CRC.
//
// Builder methods never fail; invalid input is written as given so malformed
// streams can be produced on purpose.
type Builder struct {
	records       *pool.ByteBuffer
	legacy        bool
	zeroHeaderCRC bool
	corruptCRC    bool
	dataSize      int // overrides the computed payload length when >= 0
}

// NewBuilder creates a Builder producing a 14-byte header with CRC.
func NewBuilder() *Builder {
	return &Builder{
		records:  pool.NewByteBuffer(pool.RecordBufferDefaultSize),
		dataSize: -1,
	}
}

// Field is shorthand for a field descriptor.
func Field(number, size uint8, bt format.BaseType) section.FieldDescriptor {
	return section.FieldDescriptor{Number: number, Size: size, BaseType: bt}
}

// Legacy switches to the 12-byte header without header CRC.
func (b *Builder) Legacy() *Builder {
	b.legacy = true
	return b
}

// ZeroHeaderCRC writes 0 into the header CRC field.
func (b *Builder) ZeroHeaderCRC() *Builder {
	b.zeroHeaderCRC = true
	return b
}

// DataSize forces the declared payload length.
func (b *Builder) DataSize(n int) *Builder {
	b.dataSize = n
	return b
}

// CorruptCRC flips the last byte of the trailing file CRC.
func (b *Builder) CorruptCRC() *Builder {
	b.corruptCRC = true
	return b
}

// Definition appends a definition record.
func (b *Builder) Definition(local uint8, arch format.Architecture, global uint16, fields ...section.FieldDescriptor) *Builder {
	return b.definition(byte(section.NewDefinitionHeader(local)), arch, global, fields)
}

// DeveloperDefinition appends a definition record whose header announces developer fields.
func (b *Builder) DeveloperDefinition(local uint8, global uint16, fields ...section.FieldDescriptor) *Builder {
	header := byte(section.NewDefinitionHeader(local)) | section.DeveloperDataMask
	b.definition(header, format.LittleEndian, global, fields)
	// developer field count and one developer field descriptor
	b.records.MustWrite([]byte{1, 0, 1, 0})

	return b
}

func (b *Builder) definition(header byte, arch format.Architecture, global uint16, fields []section.FieldDescriptor) *Builder {
	b.records.MustWriteByte(header)
	b.records.MustWriteByte(0)
	b.records.MustWriteByte(byte(arch))

	var g [2]byte
	endian.ForArchitecture(arch).PutUint16(g[:], global)
	b.records.MustWrite(g[:])
	b.records.MustWriteByte(byte(len(fields)))

	for _, f := range fields {
		b.records.MustWrite([]byte{f.Number, f.Size, byte(f.BaseType)})
	}

	return b
}

// Data appends a normal data record whose body is the concatenation of fields.
func (b *Builder) Data(local uint8, fields ...[]byte) *Builder {
	b.records.MustWriteByte(byte(section.NewDataHeader(local)))
	for _, f := range fields {
		b.records.MustWrite(f)
	}

	return b
}

// CompressedData appends a data record with a compressed timestamp header.
func (b *Builder) CompressedData(local, offset uint8, fields ...[]byte) *Builder {
	b.records.MustWriteByte(byte(section.NewCompressedHeader(local, offset)))
	for _, f := range fields {
		b.records.MustWrite(f)
	}

	return b
}

// Raw appends bytes verbatim to the record section.
func (b *Builder) Raw(p ...byte) *Builder {
	b.records.MustWrite(p)
	return b
}

// Records returns the record section built so far.
func (b *Builder) Records() []byte {
	return b.records.Bytes()
}

// Header returns the file header for the current record section.
func (b *Builder) Header() []byte {
	size := b.records.Len()
	if b.dataSize >= 0 {
		size = b.dataSize
	}

	h := section.NewFileHeader(uint32(size))
	if b.legacy {
		h.Size = format.HeaderSizeLegacy
		h.HasCRC = false
	}

	out := h.Bytes()
	if b.zeroHeaderCRC && h.HasCRC {
		out[12], out[13] = 0, 0
	}

	return out
}

// Bytes returns the complete stream: header, records and trailing CRC.
func (b *Builder) Bytes() []byte {
	header := b.Header()

	out := make([]byte, 0, len(header)+b.records.Len()+format.ChecksumSize)
	out = append(out, header...)
	out = append(out, b.records.Bytes()...)

	sum := crc.Checksum(out)
	if b.corruptCRC {
		sum ^= 0xFF00
	}

	return append(out, byte(sum), byte(sum>>8))
}

// Encode returns v as bt in the given byte order.
func Encode(arch format.Architecture, bt format.BaseType, v uint64) []byte {
	out := make([]byte, bt.Size())
	endian.PutBits(endian.ForArchitecture(arch), out, bt.Size(), v)

	return out
}

// U8 returns a single byte field.
func U8(v uint8) []byte {
	return []byte{v}
}

// U16 returns v as little-endian uint16 bytes.
func U16(v uint16) []byte {
	return Encode(format.LittleEndian, format.Uint16, uint64(v))
}

// I16 returns v as little-endian sint16 bytes.
func I16(v int16) []byte {
	return Encode(format.LittleEndian, format.Sint16, uint64(uint16(v)))
}

// U32 returns v as little-endian uint32 bytes.
func U32(v uint32) []byte {
	return Encode(format.LittleEndian, format.Uint32, uint64(v))
}

// I32 returns v as little-endian sint32 bytes.
func I32(v int32) []byte {
	return Encode(format.LittleEndian, format.Sint32, uint64(uint32(v)))
}

// Str returns s NUL padded to size bytes.
func Str(s string, size int) []byte {
	out := make([]byte, size)
	copy(out, s)

	return out
}
