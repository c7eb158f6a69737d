package timestamp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fitstream/errs"
)

func TestRolling_NoContext(t *testing.T) {
	var r Rolling

	_, ok := r.Last()
	require.False(t, ok)

	_, err := r.Apply(3)
	require.ErrorIs(t, err, errs.ErrNoTimestampContext)
}

func TestRolling_Apply(t *testing.T) {
	tests := []struct {
		name   string
		last   uint32
		offset uint8
		want   uint32
	}{
		{"same offset", 1000, 1000 & 0x1F, 1000},
		{"forward within period", 0x1000_0000, 5, 0x1000_0005},
		{"wraparound", 0x1000_001D, 3, 0x1000_001D + 6},
		{"offset above mask bits", 0x40, 0xE2, 0x42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Rolling
			r.Set(tt.last)

			got, err := r.Apply(tt.offset)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			last, ok := r.Last()
			require.True(t, ok)
			require.Equal(t, tt.want, last)
		})
	}
}

func TestRolling_WrapAdvancesOnePeriod(t *testing.T) {
	var r Rolling
	base := uint32(960 + 29) // low 5 bits = 29
	r.Set(base)

	got, err := r.Apply(3)
	require.NoError(t, err)
	// one 32-second period plus (3 - 29)
	require.Equal(t, base+32+3-29, got)
}

func TestRolling_Sequence(t *testing.T) {
	var r Rolling
	r.Set(100) // low bits 4

	for _, step := range []struct {
		offset uint8
		want   uint32
	}{
		{6, 102},
		{31, 127},
		{0, 128},
		{0, 128},
		{2, 130},
	} {
		got, err := r.Apply(step.offset)
		require.NoError(t, err)
		require.Equal(t, step.want, got)
	}

	r.Reset()
	_, err := r.Apply(1)
	require.ErrorIs(t, err, errs.ErrNoTimestampContext)
}
