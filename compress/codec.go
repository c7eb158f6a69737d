package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arloliu/fitstream/errs"
	"github.com/arloliu/fitstream/format"
)

// Compressor compresses a complete FIT file into a self-describing archive.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a complete FIT file from its archive.
//
// Thread Safety: Decompressor implementations are safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or invalid
	//   - Returns error if data was compressed with an incompatible algorithm
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// Magic prefixes of the supported archive formats.
var (
	gzipMagic   = []byte{0x1F, 0x8B}
	zstdMagic   = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic    = []byte{0x04, 0x22, 0x4D, 0x18}
	s2Magic     = []byte{0xFF, 0x06, 0x00, 0x00, 'S', '2', 's', 'T', 'w', 'O'}
	snappyMagic = []byte{0xFF, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y'}
)

// SniffSize is the number of leading bytes Detect needs to recognize every format.
const SniffSize = 10

// Detect identifies the archive format from the leading bytes of a file.
//
// Returns format.CompressionNone when no known magic matches, which includes
// plain FIT files.
func Detect(prefix []byte) format.CompressionType {
	switch {
	case bytes.HasPrefix(prefix, gzipMagic):
		return format.CompressionGzip
	case bytes.HasPrefix(prefix, zstdMagic):
		return format.CompressionZstd
	case bytes.HasPrefix(prefix, lz4Magic):
		return format.CompressionLZ4
	case bytes.HasPrefix(prefix, s2Magic), bytes.HasPrefix(prefix, snappyMagic):
		return format.CompressionS2
	default:
		return format.CompressionNone
	}
}

// CreateCodec is a factory function that creates a Codec based on the specified compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, LZ4 or Gzip)
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: errs.ErrUnsupportedCompression for unknown types
func CreateCodec(compressionType format.CompressionType) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	case format.CompressionGzip:
		return NewGzipCompressor(), nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
	format.CompressionGzip: NewGzipCompressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}

// Decompress detects the archive format of data and decompresses it.
//
// Plain data is returned unchanged together with format.CompressionNone.
func Decompress(data []byte) ([]byte, format.CompressionType, error) {
	ct := Detect(data)

	codec, err := GetCodec(ct)
	if err != nil {
		return nil, ct, err
	}

	out, err := codec.Decompress(data)
	if err != nil {
		return nil, ct, fmt.Errorf("%s decompression failed: %w", ct, err)
	}

	return out, ct, nil
}

// NewReader wraps r with a streaming decompressor for the given type.
//
// Closing the returned reader releases decoder resources; it does not close r.
func NewReader(compressionType format.CompressionType, r io.Reader) (io.ReadCloser, error) {
	switch compressionType {
	case format.CompressionNone:
		return io.NopCloser(r), nil
	case format.CompressionZstd:
		return newZstdReader(r)
	case format.CompressionS2:
		return newS2Reader(r), nil
	case format.CompressionLZ4:
		return newLZ4Reader(r), nil
	case format.CompressionGzip:
		return newGzipReader(r)
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
	}
}
