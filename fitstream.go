// Package fitstream decodes FIT (Flexible and Interoperable Data Transfer) files,
// the binary activity format written by fitness and navigation devices.
//
// The heart of the module is a pull-based, allocation-free stream decoder
// (package decoder) that validates the file header, tracks the per-slot message
// definitions declared mid-stream, decodes field values against their base
// types and byte order, reconstructs compressed timestamps and verifies the
// trailing CRC.
//
// # Core Features
//
//   - One event per Next call: header, definition, data and checksum events
//   - Zero-copy field values with per-element invalid-sentinel handling
//   - Fixed memory footprint chosen at construction (WithMaxFields)
//   - Compressed timestamp headers resolved against the last absolute timestamp
//   - Transparent .gz, .zst, .s2 and .lz4 input (package compress)
//   - Struct mapping through fit/fitmsg tags (package mapping)
//
// # Basic Usage
//
// Collecting records into structs:
//
//	type Record struct {
//	    Timestamp time.Time `fit:"timestamp"`
//	    HeartRate *uint8    `fit:"3"`
//	    Speed     *uint16   `fit:"6"`
//	}
//
//	type Activity struct {
//	    Records []Record `fitmsg:"20"`
//	}
//
//	var act Activity
//	if err := fitstream.DecodeFile("ride.fit.gz", &act); err != nil {
//	    log.Fatal(err)
//	}
//
// Walking the raw event stream:
//
//	dec, _ := fitstream.NewDecoder(data)
//	for ev, err := range dec.All() {
//	    if err != nil {
//	        return err
//	    }
//	    if rec, ok := ev.(*decoder.DataEvent); ok {
//	        fmt.Println(rec.Global(), rec.Values)
//	    }
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the decoder,
// source and mapping packages. For fine-grained control use them directly.
package fitstream

import (
	"fmt"
	"io"

	"github.com/arloliu/fitstream/compress"
	"github.com/arloliu/fitstream/decoder"
	"github.com/arloliu/fitstream/mapping"
	"github.com/arloliu/fitstream/section"
	"github.com/arloliu/fitstream/source"
)

// NewDecoder creates a decoder over an in-memory FIT file.
//
// The decoder aliases data; it must not be modified while decoding.
//
// Parameters:
//   - data: A complete, uncompressed FIT file
//   - opts: Decoder options (decoder.WithStrict, decoder.WithMaxFields, ...)
//
// Returns:
//   - *decoder.Decoder: The decoder, positioned before the file header
//   - error: errs.ErrInvalidOption for invalid options
//
// Example:
//
//	dec, err := fitstream.NewDecoder(data, decoder.WithStrict(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewDecoder(data []byte, opts ...decoder.Option) (*decoder.Decoder, error) {
	return decoder.New(source.NewBytes(data), opts...)
}

// DecodeBytes decodes a FIT file held in memory into target.
//
// Compressed input (gzip, zstd, s2, lz4) is detected and decompressed first.
// target is a pointer to a struct whose fields carry fitmsg tags; see package
// mapping for the rules.
//
// Returns:
//   - error: The decode or mapping failure. When only the file checksum is wrong,
//     target is fully populated and the error wraps errs.ErrChecksumMismatch.
func DecodeBytes(data []byte, target any, opts ...decoder.Option) error {
	plain, _, err := compress.Decompress(data)
	if err != nil {
		return err
	}

	dec, err := NewDecoder(plain, opts...)
	if err != nil {
		return err
	}

	return mapping.Collect(dec, target)
}

// DecodeFile decodes the FIT file at path into target.
//
// Plain files are memory mapped; compressed files are decompressed in memory.
// Error semantics follow DecodeBytes.
func DecodeFile(path string, target any, opts ...decoder.Option) (err error) {
	f, err := source.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	dec, err := decoder.New(f, opts...)
	if err != nil {
		return err
	}

	return mapping.Collect(dec, target)
}

// DecodeReader decodes a FIT stream read from r into target.
//
// Compressed streams are detected and decompressed on the fly. Only one record
// is buffered at a time. Error semantics follow DecodeBytes.
func DecodeReader(r io.Reader, target any, opts ...decoder.Option) error {
	src, _, err := source.OpenReader(r)
	if err != nil {
		return err
	}
	defer src.Close()

	dec, err := decoder.New(src, opts...)
	if err != nil {
		return err
	}

	return mapping.Collect(dec, target)
}

// Unmarshal copies a single data record into a struct with fit tags.
//
// It is a shorthand for mapping.Unmarshal.
func Unmarshal(ev *decoder.DataEvent, target any) error {
	return mapping.Unmarshal(ev, target)
}

// DefinitionID returns the layout fingerprint (64-bit xxHash) of a definition.
//
// Definitions with the same architecture, global message and fields share an ID
// regardless of the local slot they were bound to.
func DefinitionID(def *section.MessageDefinition) uint64 {
	return def.Fingerprint()
}
