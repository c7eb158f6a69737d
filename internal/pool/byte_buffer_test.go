package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(128)

	require.NotNil(t, bb)
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 128, bb.Cap())
}

func TestByteBuffer_Write(t *testing.T) {
	bb := NewByteBuffer(4)

	bb.MustWrite([]byte("he"))
	bb.MustWriteByte('l')
	n, err := bb.Write([]byte("lo"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []byte("hello"), bb.Bytes())

	var out bytes.Buffer
	written, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(5), written)
	require.Equal(t, "hello", out.String())

	capBefore := bb.Cap()
	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.Equal(t, capBefore, bb.Cap())
}

func TestByteBuffer_Resize(t *testing.T) {
	bb := NewByteBuffer(8)

	b := bb.Resize(4)
	require.Len(t, b, 4)
	require.Equal(t, 8, bb.Cap())

	b = bb.Resize(100)
	require.Len(t, b, 100)
	require.GreaterOrEqual(t, bb.Cap(), 100)

	b = bb.Resize(0)
	require.Empty(t, b)
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("sufficient capacity", func(t *testing.T) {
		bb := NewByteBuffer(64)
		bb.Grow(32)
		require.Equal(t, 64, bb.Cap())
	})

	t.Run("small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(16)
		bb.MustWrite([]byte("abc"))
		bb.Grow(100)
		require.Equal(t, 3+RecordBufferDefaultSize, bb.Cap())
		require.Equal(t, []byte("abc"), bb.Bytes())
	})

	t.Run("large request", func(t *testing.T) {
		bb := NewByteBuffer(16)
		bb.Grow(RecordBufferDefaultSize * 2)
		require.GreaterOrEqual(t, bb.Cap(), RecordBufferDefaultSize*2)
	})

	t.Run("large buffer grows by a quarter", func(t *testing.T) {
		bb := NewByteBuffer(8 * RecordBufferDefaultSize)
		bb.Resize(8 * RecordBufferDefaultSize)
		bb.Grow(1)
		require.Equal(t, 10*RecordBufferDefaultSize, bb.Cap())
	})
}

func TestByteBufferPool(t *testing.T) {
	p := NewByteBufferPool(32, 64)

	bb := p.Get()
	require.NotNil(t, bb)
	require.Equal(t, 32, bb.Cap())

	bb.MustWrite([]byte("data"))
	p.Put(bb)
	p.Put(nil)

	oversized := NewByteBuffer(128)
	p.Put(oversized)

	got := p.Get()
	require.Equal(t, 0, got.Len())
	require.LessOrEqual(t, got.Cap(), 64)
}

func TestDefaultPools(t *testing.T) {
	rb := GetRecordBuffer()
	require.Equal(t, 0, rb.Len())
	require.GreaterOrEqual(t, rb.Cap(), RecordBufferDefaultSize)
	PutRecordBuffer(rb)

	sb := GetStreamBuffer()
	require.Equal(t, 0, sb.Len())
	require.GreaterOrEqual(t, sb.Cap(), StreamBufferDefaultSize)
	PutStreamBuffer(sb)
}
