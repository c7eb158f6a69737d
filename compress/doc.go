// Package compress provides the archive codecs used to read compressed FIT files.
//
// Devices and exporters commonly ship activity files wrapped in a general
// purpose compressor (.fit.gz, .fit.zst, ...). The decoder core only ever sees
// plain FIT bytes; this package sits in front of it and restores them.
//
// # Supported Formats
//
//   - None: plain FIT data, passed through unchanged
//   - Gzip: RFC 1952 members, klauspost/compress/gzip
//   - Zstd: zstd frames, klauspost/compress/zstd (or libzstd via the gozstd build tag)
//   - S2: S2 and Snappy framed streams, klauspost/compress/s2
//   - LZ4: LZ4 frames, pierrec/lz4/v4
//
// # Detection
//
// Every supported archive starts with a fixed magic, so the format is sniffed
// from the first SniffSize bytes:
//
//	ct := compress.Detect(data[:compress.SniffSize])
//	plain, ct, err := compress.Decompress(data)
//
// A plain FIT file begins with its header size byte (12 or 14) and never
// matches any magic.
//
// # Streaming
//
// NewReader wraps an io.Reader with the matching streaming decoder, which lets
// the source package decode large archives without materializing them:
//
//	rc, err := compress.NewReader(format.CompressionGzip, f)
//	if err != nil {
//	    return err
//	}
//	defer rc.Close()
//
// # Thread Safety
//
// All codec implementations are safe for concurrent use. Zstd encoders and
// decoders as well as LZ4 writers are pooled internally.
package compress
