// Package errs defines the sentinel errors returned by fitstream.
//
// Every failure reported by the decoder wraps exactly one of the kind sentinels
// below, so callers can discriminate with errors.Is regardless of the detail
// added at the call site.
package errs

import "errors"

// Header errors. All of them are fatal and stop decoding before any record is produced.
var (
	ErrMalformedHeader     = errors.New("malformed file header")
	ErrInvalidSignature    = errors.New("invalid file signature")
	ErrUnknownHeaderSize   = errors.New("unknown file header size")
	ErrTruncatedHeader     = errors.New("truncated file header")
	ErrHeaderChecksum      = errors.New("file header checksum mismatch")
	ErrInvalidHeaderLength = errors.New("invalid header data length")
)

// Record errors.
var (
	ErrReservedBitSet           = errors.New("reserved record header bit set")
	ErrTooManyFields            = errors.New("definition exceeds field capacity")
	ErrUnknownBaseType          = errors.New("unknown base type")
	ErrUndefinedLocalSlot       = errors.New("undefined local message slot")
	ErrTruncatedRecord          = errors.New("truncated record")
	ErrNoTimestampContext       = errors.New("compressed timestamp without prior absolute timestamp")
	ErrDeveloperDataUnsupported = errors.New("developer data is not supported")
	ErrInvalidLocalSlot         = errors.New("local message slot out of range")
)

// Integrity errors.
var (
	ErrChecksumMismatch = errors.New("file checksum mismatch")
)

// Support errors for configuration, sources and the mapping layer.
var (
	ErrInvalidOption          = errors.New("invalid option")
	ErrUnsupportedCompression = errors.New("unsupported compression type")
	ErrInvalidTarget          = errors.New("invalid mapping target")
)
