package compress

// ZstdCompressor provides Zstandard frame compression.
//
// Archives carry the standard zstd frame magic, so Detect recognizes them.
// The pure Go implementation from klauspost/compress is used by default; build
// with the gozstd tag and cgo enabled to switch to the libzstd binding.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(fitData)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
