package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fitstream/errs"
	"github.com/arloliu/fitstream/format"
)

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
	format.CompressionGzip,
}

// fitLike returns a payload shaped like a FIT file: a 14-byte header followed by
// repeating records.
func fitLike(size int) []byte {
	data := []byte{14, 0x20, 0x54, 0x08, 0, 0, 0, 0, '.', 'F', 'I', 'T', 0, 0}
	for i := 0; len(data) < size; i++ {
		data = append(data, 0x00, byte(i), 0x00, 0x00, byte(i>>8))
	}

	return data[:size]
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		prefix []byte
		want   format.CompressionType
	}{
		{"gzip", []byte{0x1F, 0x8B, 0x08}, format.CompressionGzip},
		{"zstd", []byte{0x28, 0xB5, 0x2F, 0xFD, 0x00}, format.CompressionZstd},
		{"lz4", []byte{0x04, 0x22, 0x4D, 0x18, 0x64}, format.CompressionLZ4},
		{"s2", []byte("\xff\x06\x00\x00S2sTwO"), format.CompressionS2},
		{"snappy", []byte("\xff\x06\x00\x00sNaPpY"), format.CompressionS2},
		{"plain fit 14", []byte{14, 0x20, 0x54, 0x08}, format.CompressionNone},
		{"plain fit 12", []byte{12, 0x10}, format.CompressionNone},
		{"empty", nil, format.CompressionNone},
		{"short gzip", []byte{0x1F}, format.CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Detect(tt.prefix))
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	for _, ct := range allTypes {
		for _, size := range []int{14, 1024, 64 * 1024} {
			t.Run(fmt.Sprintf("%s/%d", ct, size), func(t *testing.T) {
				codec, err := CreateCodec(ct)
				require.NoError(t, err)

				data := fitLike(size)
				compressed, err := codec.Compress(data)
				require.NoError(t, err)
				require.Equal(t, ct, Detect(compressed))

				restored, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, data, restored)

				auto, detected, err := Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, ct, detected)
				require.Equal(t, data, auto)
			})
		}
	}
}

func TestAllCodecs_EmptyDecompress(t *testing.T) {
	for _, ct := range allTypes[1:] {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			out, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Empty(t, out)
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	garbage := []byte("definitely not compressed data, just some text")

	for _, ct := range allTypes[1:] {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			_, err = codec.Decompress(garbage)
			require.Error(t, err)
		})
	}
}

func TestNewReader(t *testing.T) {
	data := fitLike(32 * 1024)

	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			rc, err := NewReader(ct, bytes.NewReader(compressed))
			require.NoError(t, err)

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			require.Equal(t, data, got)
		})
	}
}

func TestUnsupportedCompression(t *testing.T) {
	_, err := CreateCodec(format.CompressionType(0x7F))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)

	_, err = GetCodec(format.CompressionType(0))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)

	_, err = NewReader(format.CompressionType(0x7F), bytes.NewReader(nil))
	require.ErrorIs(t, err, errs.ErrUnsupportedCompression)
}

func TestDecompress_Plain(t *testing.T) {
	data := fitLike(100)

	out, ct, err := Decompress(data)
	require.NoError(t, err)
	require.Equal(t, format.CompressionNone, ct)
	require.Equal(t, data, out)
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	data := fitLike(8 * 1024)

	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			var wg sync.WaitGroup
			errCh := make(chan error, 8)
			for range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for range 10 {
						compressed, err := codec.Compress(data)
						if err != nil {
							errCh <- err
							return
						}
						restored, err := codec.Decompress(compressed)
						if err != nil {
							errCh <- err
							return
						}
						if !bytes.Equal(data, restored) {
							errCh <- fmt.Errorf("%s: round trip mismatch", ct)
							return
						}
					}
				}()
			}
			wg.Wait()
			close(errCh)

			for err := range errCh {
				require.NoError(t, err)
			}
		})
	}
}
