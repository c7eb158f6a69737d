package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/s2"
)

// S2Compressor produces S2 framed streams, which also decode Snappy framed input.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses the input data as an S2 stream.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := s2.NewWriter(&buf, s2.WriterConcurrency(1))
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress decompresses an S2 or Snappy framed stream.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return io.ReadAll(s2.NewReader(bytes.NewReader(data)))
}

func newS2Reader(r io.Reader) io.ReadCloser {
	return io.NopCloser(s2.NewReader(r))
}
