package source

import (
	"fmt"
	"io"
)

// Source is a forward-only cursor over a FIT byte stream.
type Source interface {
	// Next returns the next n bytes of the stream.
	//
	// The returned slice is valid until the next call to Next. When the
	// stream ends before n bytes are available, Next returns io.EOF if no
	// byte was left and io.ErrUnexpectedEOF otherwise.
	Next(n int) ([]byte, error)
}

// Bytes is a zero-copy Source over an in-memory buffer.
//
// Slices returned by Next alias the buffer and remain valid for as long as
// the buffer does.
type Bytes struct {
	data []byte
	off  int
}

var _ Source = (*Bytes)(nil)

// NewBytes creates a cursor positioned at the start of data.
func NewBytes(data []byte) *Bytes {
	return &Bytes{data: data}
}

// Next implements Source.
func (b *Bytes) Next(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("source: negative read size %d", n)
	}

	remaining := len(b.data) - b.off
	if n > remaining {
		b.off = len(b.data)
		if remaining == 0 && n > 0 {
			return nil, io.EOF
		}

		return nil, io.ErrUnexpectedEOF
	}

	out := b.data[b.off : b.off+n : b.off+n]
	b.off += n

	return out, nil
}

// Offset returns the number of bytes consumed so far.
func (b *Bytes) Offset() int {
	return b.off
}

// Remaining returns the number of unread bytes.
func (b *Bytes) Remaining() int {
	return len(b.data) - b.off
}

// Reset repositions the cursor at the start of data.
func (b *Bytes) Reset(data []byte) {
	b.data = data
	b.off = 0
}
