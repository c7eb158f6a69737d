package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		id     uint64
	}{
		{"empty", nil, 0xef46db3751d8e999},
		{"short", []string{"test"}, 0x4fdcca5ddb678139},
		{"chunked", []string{"this is a longer ", "test string", " to hash"}, 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Digest
			d.Reset()
			for _, c := range tt.chunks {
				n, err := d.Write([]byte(c))
				require.NoError(t, err)
				require.Equal(t, len(c), n)
			}
			require.Equal(t, tt.id, d.Sum64())
		})
	}
}

func TestDigest_Reset(t *testing.T) {
	var d Digest
	d.Reset()
	_, _ = d.Write([]byte("another test string"))
	require.Equal(t, uint64(0x212a22f593810bec), d.Sum64())

	d.Reset()
	require.Equal(t, uint64(0xef46db3751d8e999), d.Sum64())
}
