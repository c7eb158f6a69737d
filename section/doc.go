// Package section defines the low-level binary structures of a FIT stream.
//
// This package provides the foundational types that describe the physical layout
// of FIT data: the file header, the single-byte record header and definition
// records together with the fixed-capacity table that binds them to local
// message slots.
//
// # File Structure
//
//	┌─────────────────────────────────────────────────────────┐
//	│ File Header (12 or 14 bytes)                            │
//	│  - Size, protocol and profile versions                  │
//	│  - DataSize (4 bytes): length of the record section     │
//	│  - ".FIT" signature                                     │
//	│  - Header CRC (2 bytes, 14-byte headers only)           │
//	├─────────────────────────────────────────────────────────┤
//	│ Records (DataSize bytes)                                │
//	│  - 1-byte record header                                 │
//	│  - Definition body or data body                         │
//	├─────────────────────────────────────────────────────────┤
//	│ File CRC (2 bytes, little-endian)                       │
//	└─────────────────────────────────────────────────────────┘
//
// # Header Format
//
//	Bytes  | Field            | Type    | Description
//	-------|------------------|---------|---------------------------------
//	0      | Size             | uint8   | 12 or 14
//	1      | ProtocolVersion  | uint8   | major << 4 | minor
//	2-3    | ProfileVersion   | uint16  | little-endian
//	4-7    | DataSize         | uint32  | little-endian
//	8-11   | DataType         | [4]byte | ".FIT"
//	12-13  | CRC              | uint16  | CRC of bytes 0-11, 0 if not computed
//
// # Record Header
//
//	Normal header (bit 7 = 0):
//	  Bit 6:    1 = definition record, 0 = data record
//	  Bit 5:    developer fields present (definition), reserved (data)
//	  Bit 4:    reserved
//	  Bits 0-3: local message slot
//
//	Compressed timestamp header (bit 7 = 1):
//	  Bits 5-6: local message slot (0-3)
//	  Bits 0-4: time offset in seconds
//
// # Definition Record
//
//	Bytes  | Field          | Description
//	-------|----------------|----------------------------------------
//	0      | Reserved       |
//	1      | Architecture   | 0 = little-endian, 1 = big-endian
//	2-3    | GlobalMessage  | in the declared architecture
//	4      | FieldCount     |
//	5-     | Fields         | FieldCount × {number, size, base type}
//
// # Thread Safety
//
// FileHeader, RecordHeader and FieldDescriptor are immutable value types and are
// safe for concurrent use. DefinitionTable is owned by a single decoder.
package section
