package source

import (
	"fmt"
	"io"

	"github.com/arloliu/fitstream/internal/pool"
)

// Reader is a Source over an io.Reader.
//
// It owns one grow-only record buffer taken from the shared pool; call Close
// to hand it back. Reader never reads ahead of the bytes requested.
//
// Note: Reader is NOT thread-safe.
type Reader struct {
	r   io.Reader
	buf *pool.ByteBuffer
	off int64
}

var _ Source = (*Reader)(nil)

// NewReader creates a Source reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:   r,
		buf: pool.GetRecordBuffer(),
	}
}

// Next implements Source.
func (r *Reader) Next(n int) ([]byte, error) {
	if r.buf == nil {
		return nil, io.ErrClosedPipe
	}
	if n < 0 {
		return nil, fmt.Errorf("source: negative read size %d", n)
	}

	b := r.buf.Resize(n)
	read, err := io.ReadFull(r.r, b)
	r.off += int64(read)
	if err != nil {
		return nil, err
	}

	return b, nil
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.off
}

// Close releases the record buffer. It does not close the underlying reader.
func (r *Reader) Close() error {
	if r.buf != nil {
		pool.PutRecordBuffer(r.buf)
		r.buf = nil
	}

	return nil
}
