// Package endian provides byte order selection for FIT definition records.
//
// Every FIT definition record declares the architecture of the data records
// that follow it. This package maps that declaration onto an EndianEngine, a
// combination of the ByteOrder and AppendByteOrder interfaces from
// encoding/binary, so decoders read multi-byte values in place without copying.
//
// # Basic Usage
//
//	engine := endian.ForArchitecture(def.Architecture)
//	v := engine.Uint16(raw[0:2])
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"

	"github.com/arloliu/fitstream/format"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// ForArchitecture returns the engine matching a definition record's architecture byte.
//
// Any non-zero architecture is treated as big-endian, matching the FIT SDK.
func ForArchitecture(arch format.Architecture) EndianEngine {
	if arch == format.LittleEndian {
		return binary.LittleEndian
	}

	return binary.BigEndian
}

// ArchitectureOf returns the FIT architecture byte for an engine.
func ArchitectureOf(engine EndianEngine) format.Architecture {
	if engine == GetBigEndianEngine() {
		return format.BigEndian
	}

	return format.LittleEndian
}

// Bits reads an element of 1, 2, 4 or 8 bytes from the start of b as raw bits.
//
// It returns 0 for any other width. The caller guarantees len(b) >= size.
func Bits(engine EndianEngine, b []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(engine.Uint16(b))
	case 4:
		return uint64(engine.Uint32(b))
	case 8:
		return engine.Uint64(b)
	default:
		return 0
	}
}

// PutBits writes the low size bytes of bits into b. It is the inverse of Bits.
func PutBits(engine EndianEngine, b []byte, size int, bits uint64) {
	switch size {
	case 1:
		b[0] = byte(bits)
	case 2:
		engine.PutUint16(b, uint16(bits))
	case 4:
		engine.PutUint32(b, uint32(bits))
	case 8:
		engine.PutUint64(b, bits)
	}
}
