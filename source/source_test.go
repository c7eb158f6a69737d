package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fitstream/compress"
	"github.com/arloliu/fitstream/format"
	"github.com/arloliu/fitstream/internal/fittest"
)

func sampleStream() []byte {
	return fittest.NewBuilder().
		Definition(0, format.LittleEndian, 20, fittest.Field(0, 4, format.Uint32)).
		Data(0, fittest.U32(7)).
		Bytes()
}

// readAll drains a source in chunks of size n, which must divide its length.
func readAll(t *testing.T, src Source, n int) []byte {
	t.Helper()

	var out []byte
	for {
		b, err := src.Next(n)
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, b...)
	}
}

func TestBytes_Next(t *testing.T) {
	src := NewBytes([]byte{1, 2, 3, 4, 5})

	b, err := src.Next(2)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, b)
	require.Equal(t, 2, src.Offset())
	require.Equal(t, 3, src.Remaining())

	b, err = src.Next(0)
	require.NoError(t, err)
	require.Empty(t, b)

	_, err = src.Next(4)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Equal(t, 0, src.Remaining())

	_, err = src.Next(1)
	require.ErrorIs(t, err, io.EOF)

	_, err = src.Next(-1)
	require.Error(t, err)

	src.Reset([]byte{9})
	b, err = src.Next(1)
	require.NoError(t, err)
	require.Equal(t, []byte{9}, b)
}

func TestBytes_ZeroCopy(t *testing.T) {
	data := []byte{1, 2, 3}
	src := NewBytes(data)

	b, err := src.Next(3)
	require.NoError(t, err)
	require.Same(t, &data[0], &b[0])
	require.Equal(t, 3, cap(b))
}

func TestReader_Next(t *testing.T) {
	data := sampleStream()
	r := NewReader(bytes.NewReader(data))

	require.Equal(t, data, readAll(t, r, 3))
	require.Equal(t, int64(len(data)), r.Offset())
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err := r.Next(1)
	require.Error(t, err)
}

func TestReader_ShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2, 3}))
	defer r.Close()

	_, err := r.Next(5)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = r.Next(1)
	require.ErrorIs(t, err, io.EOF)
}

func TestReader_LargeRecord(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 70_000)
	r := NewReader(bytes.NewReader(data))
	defer r.Close()

	b, err := r.Next(len(data))
	require.NoError(t, err)
	require.Equal(t, data, b)
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func TestOpenFile(t *testing.T) {
	data := sampleStream()
	path := writeTemp(t, "activity.fit", data)

	f, err := OpenFile(path)
	require.NoError(t, err)
	require.Equal(t, len(data), f.Len())
	require.Equal(t, format.CompressionNone, f.Compression())
	require.Equal(t, data, readAll(t, f, 5))
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
}

func TestOpenFile_Empty(t *testing.T) {
	path := writeTemp(t, "empty.fit", nil)

	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Next(1)
	require.ErrorIs(t, err, io.EOF)
}

func TestOpenFile_Missing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.fit"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Open(filepath.Join(t.TempDir(), "missing.fit"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_Compressed(t *testing.T) {
	data := sampleStream()

	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionGzip,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := compress.GetCodec(ct)
			require.NoError(t, err)
			archived, err := codec.Compress(data)
			require.NoError(t, err)

			// the extension is irrelevant, the content is sniffed
			path := writeTemp(t, "activity.bin", archived)

			f, err := Open(path)
			require.NoError(t, err)
			defer f.Close()

			require.Equal(t, ct, f.Compression())
			require.Equal(t, data, readAll(t, f, 5))
		})
	}
}

func TestOpen_CorruptArchive(t *testing.T) {
	archived := append([]byte{0x1F, 0x8B}, bytes.Repeat([]byte{0}, 16)...)
	path := writeTemp(t, "broken.fit.gz", archived)

	_, err := Open(path)
	require.Error(t, err)
}

func TestOpenReader(t *testing.T) {
	data := sampleStream()

	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionGzip,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := compress.GetCodec(ct)
			require.NoError(t, err)
			archived, err := codec.Compress(data)
			require.NoError(t, err)

			r, detected, err := OpenReader(bytes.NewReader(archived))
			require.NoError(t, err)
			require.Equal(t, ct, detected)

			require.Equal(t, data, readAll(t, r, 6))
			require.NoError(t, r.Close())
		})
	}

	t.Run("short input", func(t *testing.T) {
		r, detected, err := OpenReader(bytes.NewReader([]byte{14, 0x20}))
		require.NoError(t, err)
		require.Equal(t, format.CompressionNone, detected)
		require.Equal(t, []byte{14, 0x20}, readAll(t, r, 1))
		require.NoError(t, r.Close())
	})
}
