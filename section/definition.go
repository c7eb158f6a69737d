package section

import (
	"fmt"

	"github.com/arloliu/fitstream/endian"
	"github.com/arloliu/fitstream/errs"
	"github.com/arloliu/fitstream/format"
	"github.com/arloliu/fitstream/internal/hash"
)

// FieldDescriptor is one 3-byte entry of a definition record.
type FieldDescriptor struct {
	// Number identifies the field within its message. It is opaque to the decoder,
	// except for format.TimestampFieldNumber.
	Number uint8 // byte offset 0
	// Size is the number of bytes the field occupies in data records.
	Size uint8 // byte offset 1
	// BaseType is the declared base type tag.
	BaseType format.BaseType // byte offset 2
}

// Elements returns how many base type elements the field holds.
//
// A size that is not a multiple of the base width is treated as a byte array,
// so Elements returns Size in that case.
func (d FieldDescriptor) Elements() int {
	width := d.BaseType.Size()
	if width == 0 || int(d.Size)%width != 0 {
		return int(d.Size)
	}

	return int(d.Size) / width
}

// IsTimestamp reports whether the field carries the message's absolute timestamp.
func (d FieldDescriptor) IsTimestamp() bool {
	return d.Number == format.TimestampFieldNumber && d.Size == 4 &&
		(d.BaseType == format.Uint32 || d.BaseType == format.Uint32z)
}

// MessageDefinition is the layout bound to a local message slot.
//
// The field slice is owned by the DefinitionTable and reused on redefinition;
// callers must not retain it across a redefinition of the same slot.
type MessageDefinition struct {
	// LocalMessage is the slot this definition is bound to.
	LocalMessage uint8
	// Architecture is the byte order of multi-byte values in matching data records.
	Architecture format.Architecture
	// GlobalMessage is the global message number.
	GlobalMessage uint16

	fields         []FieldDescriptor
	dataSize       int
	timestampIndex int
	engine         endian.EndianEngine
}

// Fields returns the ordered field descriptors.
func (m *MessageDefinition) Fields() []FieldDescriptor {
	return m.fields
}

// NumFields returns the number of field descriptors.
func (m *MessageDefinition) NumFields() int {
	return len(m.fields)
}

// DataSize returns the body length of a data record using this definition.
func (m *MessageDefinition) DataSize() int {
	return m.dataSize
}

// TimestampIndex returns the index of the absolute timestamp field, or -1.
func (m *MessageDefinition) TimestampIndex() int {
	return m.timestampIndex
}

// Engine returns the byte order engine for this definition's architecture.
func (m *MessageDefinition) Engine() endian.EndianEngine {
	return m.engine
}

// Equal reports whether two definitions describe the same layout for the same slot.
func (m *MessageDefinition) Equal(other *MessageDefinition) bool {
	if m == nil || other == nil {
		return m == other
	}

	if m.LocalMessage != other.LocalMessage || m.Architecture != other.Architecture ||
		m.GlobalMessage != other.GlobalMessage || len(m.fields) != len(other.fields) {
		return false
	}

	for i := range m.fields {
		if m.fields[i] != other.fields[i] {
			return false
		}
	}

	return true
}

// Fingerprint returns an xxHash64 of the layout, independent of the local slot.
//
// Two definitions with the same architecture, global message and field list share
// a fingerprint even when bound to different slots.
func (m *MessageDefinition) Fingerprint() uint64 {
	var d hash.Digest
	d.Reset()

	var buf [format.DefinitionFixedSize]byte
	buf[1] = byte(m.Architecture)
	endian.GetLittleEndianEngine().PutUint16(buf[2:4], m.GlobalMessage)
	buf[4] = byte(len(m.fields))
	_, _ = d.Write(buf[:])

	var fb [format.FieldDescriptorSize]byte
	for _, f := range m.fields {
		fb[0], fb[1], fb[2] = f.Number, f.Size, byte(f.BaseType)
		_, _ = d.Write(fb[:])
	}

	return d.Sum64()
}

// Bytes serializes the definition record body (without the record header).
func (m *MessageDefinition) Bytes() []byte {
	b := make([]byte, format.DefinitionFixedSize, format.DefinitionFixedSize+format.FieldDescriptorSize*len(m.fields))
	b[1] = byte(m.Architecture)
	endian.ForArchitecture(m.Architecture).PutUint16(b[2:4], m.GlobalMessage)
	b[4] = byte(len(m.fields))

	for _, f := range m.fields {
		b = append(b, f.Number, f.Size, byte(f.BaseType))
	}

	return b
}

// DefinitionFixed is the fixed 5-byte prefix of a definition record body.
type DefinitionFixed struct {
	Reserved      uint8              // byte offset 0
	Architecture  format.Architecture // byte offset 1
	GlobalMessage uint16             // byte offset 2-3, in the declared architecture
	FieldCount    uint8              // byte offset 4
}

// ParseDefinitionFixed parses the fixed prefix of a definition record body.
//
// Returns errs.ErrTruncatedRecord if data holds fewer than 5 bytes.
func ParseDefinitionFixed(data []byte) (DefinitionFixed, error) {
	if len(data) < format.DefinitionFixedSize {
		return DefinitionFixed{}, fmt.Errorf("%w: definition needs %d bytes, got %d",
			errs.ErrTruncatedRecord, format.DefinitionFixedSize, len(data))
	}

	arch := format.Architecture(data[1])
	if arch != format.LittleEndian {
		arch = format.BigEndian
	}

	return DefinitionFixed{
		Reserved:      data[0],
		Architecture:  arch,
		GlobalMessage: endian.ForArchitecture(arch).Uint16(data[2:4]),
		FieldCount:    data[4],
	}, nil
}

// DefinitionTable holds the active definition of every local message slot.
//
// All field storage is allocated once by NewDefinitionTable; defining, redefining
// and looking up slots never allocates.
//
// Note: DefinitionTable is NOT thread-safe.
type DefinitionTable struct {
	slots     [format.MaxLocalMessages]MessageDefinition
	defined   [format.MaxLocalMessages]bool
	slab      []FieldDescriptor
	maxFields int
}

// NewDefinitionTable creates a table whose definitions may hold at most maxFields fields.
//
// maxFields is clamped to 1..format.MaxFieldCount.
func NewDefinitionTable(maxFields int) *DefinitionTable {
	maxFields = max(1, min(maxFields, format.MaxFieldCount))

	t := &DefinitionTable{
		slab:      make([]FieldDescriptor, format.MaxLocalMessages*maxFields),
		maxFields: maxFields,
	}
	for i := range t.slots {
		t.slots[i].fields = t.slab[i*maxFields : i*maxFields : (i+1)*maxFields]
	}

	return t
}

// Capacity returns the maximum field count per definition.
func (t *DefinitionTable) Capacity() int {
	return t.maxFields
}

// Define installs a definition for a local slot, replacing any prior one.
//
// Parameters:
//   - local: Local message slot, 0-15
//   - fixed: Parsed fixed prefix of the definition record
//   - fieldData: The FieldCount*3 bytes of field descriptors
//
// Returns:
//   - *MessageDefinition: The installed definition, owned by the table
//   - error: errs.ErrTooManyFields, errs.ErrUnknownBaseType, errs.ErrTruncatedRecord
//     or errs.ErrInvalidLocalSlot. On error the slot is left empty.
func (t *DefinitionTable) Define(local uint8, fixed DefinitionFixed, fieldData []byte) (*MessageDefinition, error) {
	if int(local) >= format.MaxLocalMessages {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidLocalSlot, local)
	}

	t.defined[local] = false
	count := int(fixed.FieldCount)

	if count > t.maxFields {
		return nil, fmt.Errorf("%w: local message %d declares %d fields, capacity %d",
			errs.ErrTooManyFields, local, count, t.maxFields)
	}

	if len(fieldData) < count*format.FieldDescriptorSize {
		return nil, fmt.Errorf("%w: %d field descriptors need %d bytes, got %d",
			errs.ErrTruncatedRecord, count, count*format.FieldDescriptorSize, len(fieldData))
	}

	def := &t.slots[local]
	fields := def.fields[:count]
	dataSize := 0
	timestampIndex := -1

	for i := range count {
		raw := fieldData[i*format.FieldDescriptorSize : (i+1)*format.FieldDescriptorSize]

		bt, ok := format.ParseBaseType(raw[2])
		if !ok {
			return nil, fmt.Errorf("%w: 0x%02X for field %d of local message %d",
				errs.ErrUnknownBaseType, raw[2], raw[0], local)
		}

		fields[i] = FieldDescriptor{Number: raw[0], Size: raw[1], BaseType: bt}
		dataSize += int(raw[1])

		if timestampIndex < 0 && fields[i].IsTimestamp() {
			timestampIndex = i
		}
	}

	def.LocalMessage = local
	def.Architecture = fixed.Architecture
	def.GlobalMessage = fixed.GlobalMessage
	def.fields = fields
	def.dataSize = dataSize
	def.timestampIndex = timestampIndex
	def.engine = endian.ForArchitecture(fixed.Architecture)
	t.defined[local] = true

	return def, nil
}

// Lookup returns the definition bound to a local slot.
func (t *DefinitionTable) Lookup(local uint8) (*MessageDefinition, bool) {
	if int(local) >= format.MaxLocalMessages || !t.defined[local] {
		return nil, false
	}

	return &t.slots[local], true
}

// Defined returns the number of slots currently holding a definition.
func (t *DefinitionTable) Defined() int {
	n := 0
	for _, ok := range t.defined {
		if ok {
			n++
		}
	}

	return n
}

// Clear empties every slot, keeping the allocated storage.
func (t *DefinitionTable) Clear() {
	for i := range t.defined {
		t.defined[i] = false
	}
}
