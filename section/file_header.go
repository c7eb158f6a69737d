package section

import (
	"fmt"

	"github.com/arloliu/fitstream/endian"
	"github.com/arloliu/fitstream/errs"
	"github.com/arloliu/fitstream/format"
	"github.com/arloliu/fitstream/internal/crc"
)

// FileHeader is the fixed preamble of a FIT file.
//
// All multi-byte header fields are little-endian regardless of the architecture
// declared by later definition records.
type FileHeader struct {
	// Size is the header length in bytes, 12 or 14.
	Size uint8 // byte offset 0
	// ProtocolVersion packs the protocol major version in the high nibble and the minor in the low nibble.
	ProtocolVersion uint8 // byte offset 1
	// ProfileVersion is the profile version multiplied by 100 (or 1000 for newer SDKs).
	ProfileVersion uint16 // byte offset 2-3
	// DataSize is the length of the record section, excluding header and trailing checksum.
	DataSize uint32 // byte offset 4-7
	// DataType is the format signature, always ".FIT".
	DataType [4]byte // byte offset 8-11
	// CRC is the header checksum over bytes 0-11. Only meaningful when HasCRC is set.
	CRC uint16 // byte offset 12-13
	// HasCRC reports whether the header is 14 bytes long and carries a CRC field.
	HasCRC bool
}

// IsValidHeaderSize reports whether b is a header size the parser understands.
func IsValidHeaderSize(b byte) bool {
	return b == format.HeaderSizeLegacy || b == format.HeaderSize
}

// ProtocolMajor returns the protocol major version.
func (h FileHeader) ProtocolMajor() uint8 {
	return h.ProtocolVersion >> 4
}

// ProtocolMinor returns the protocol minor version.
func (h FileHeader) ProtocolMinor() uint8 {
	return h.ProtocolVersion & 0x0F
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing exactly the header, whose length is given by data[0]
//   - checkCRC: Whether a non-zero header CRC must match the computed one
//
// Returns:
//   - error: An error wrapping errs.ErrMalformedHeader for an unknown size, a
//     truncated header, a wrong signature or a header checksum mismatch
func (h *FileHeader) Parse(data []byte, checkCRC bool) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: %w: empty input", errs.ErrMalformedHeader, errs.ErrTruncatedHeader)
	}

	size := data[0]
	if !IsValidHeaderSize(size) {
		return fmt.Errorf("%w: %w: %d", errs.ErrMalformedHeader, errs.ErrUnknownHeaderSize, size)
	}

	if len(data) < int(size) {
		return fmt.Errorf("%w: %w: need %d bytes, got %d", errs.ErrMalformedHeader, errs.ErrTruncatedHeader, size, len(data))
	}

	engine := endian.GetLittleEndianEngine()

	h.Size = size
	h.ProtocolVersion = data[1]
	h.ProfileVersion = engine.Uint16(data[2:4])
	h.DataSize = engine.Uint32(data[4:8])
	copy(h.DataType[:], data[8:12])
	h.HasCRC = size == format.HeaderSize
	h.CRC = 0

	if string(h.DataType[:]) != format.Signature {
		return fmt.Errorf("%w: %w: %q", errs.ErrMalformedHeader, errs.ErrInvalidSignature, h.DataType[:])
	}

	if h.HasCRC {
		h.CRC = engine.Uint16(data[12:14])
		// A zero header CRC means the writer did not compute one.
		if checkCRC && h.CRC != 0 {
			if calculated := crc.Checksum(data[:format.HeaderSizeLegacy]); calculated != h.CRC {
				return fmt.Errorf("%w: %w: calculated 0x%04X, found 0x%04X",
					errs.ErrMalformedHeader, errs.ErrHeaderChecksum, calculated, h.CRC)
			}
		}
	}

	return nil
}

// Bytes serializes the header. When HasCRC is set the header CRC is recomputed.
func (h FileHeader) Bytes() []byte {
	size := format.HeaderSizeLegacy
	if h.HasCRC {
		size = format.HeaderSize
	}

	b := make([]byte, size)
	engine := endian.GetLittleEndianEngine()

	b[0] = byte(size)
	b[1] = h.ProtocolVersion
	engine.PutUint16(b[2:4], h.ProfileVersion)
	engine.PutUint32(b[4:8], h.DataSize)
	copy(b[8:12], h.DataType[:])

	if h.HasCRC {
		engine.PutUint16(b[12:14], crc.Checksum(b[:format.HeaderSizeLegacy]))
	}

	return b
}

// NewFileHeader creates a 14-byte header for a record section of dataSize bytes.
func NewFileHeader(dataSize uint32) FileHeader {
	h := FileHeader{
		Size:            format.HeaderSize,
		ProtocolVersion: 0x20,
		ProfileVersion:  2132,
		DataSize:        dataSize,
		HasCRC:          true,
	}
	copy(h.DataType[:], format.Signature)

	return h
}

// ParseFileHeader parses a FileHeader from a byte slice, verifying the header CRC.
//
// Parameters:
//   - data: Byte slice starting with the header (may be longer than the header)
//
// Returns:
//   - FileHeader: Parsed header struct
//   - error: An error wrapping errs.ErrMalformedHeader
func ParseFileHeader(data []byte) (FileHeader, error) {
	h := FileHeader{}
	if err := h.Parse(data, true); err != nil {
		return FileHeader{}, err
	}

	return h, nil
}
