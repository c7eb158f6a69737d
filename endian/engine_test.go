package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fitstream/format"
)

func TestForArchitecture(t *testing.T) {
	require.Equal(t, binary.LittleEndian, ForArchitecture(format.LittleEndian))
	require.Equal(t, binary.BigEndian, ForArchitecture(format.BigEndian))
	require.Equal(t, binary.BigEndian, ForArchitecture(format.Architecture(7)))
}

func TestArchitectureOf(t *testing.T) {
	require.Equal(t, format.LittleEndian, ArchitectureOf(GetLittleEndianEngine()))
	require.Equal(t, format.BigEndian, ArchitectureOf(GetBigEndianEngine()))
}

func TestBits(t *testing.T) {
	require := require.New(t)

	le := GetLittleEndianEngine()
	be := GetBigEndianEngine()
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

	require.Equal(uint64(0x01), Bits(le, data, 1))
	require.Equal(uint64(0x0201), Bits(le, data, 2))
	require.Equal(uint64(0x0102), Bits(be, data, 2))
	require.Equal(uint64(0x04030201), Bits(le, data, 4))
	require.Equal(uint64(0x01020304), Bits(be, data, 4))
	require.Equal(uint64(0x0807060504030201), Bits(le, data, 8))
	require.Equal(uint64(0x0102030405060708), Bits(be, data, 8))
	require.Equal(uint64(0), Bits(le, data, 3))
}

func TestPutBits_RoundTrip(t *testing.T) {
	for _, engine := range []EndianEngine{GetLittleEndianEngine(), GetBigEndianEngine()} {
		for _, size := range []int{1, 2, 4, 8} {
			buf := make([]byte, 8)
			want := uint64(0xA1B2C3D4E5F60718) >> (64 - 8*size)
			PutBits(engine, buf, size, want)
			require.Equal(t, want, Bits(engine, buf, size), "size %d", size)
		}
	}
}
