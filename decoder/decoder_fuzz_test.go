//go:build fuzz

package decoder

import (
	"errors"
	"io"
	"testing"

	"github.com/arloliu/fitstream/format"
	"github.com/arloliu/fitstream/internal/fittest"
	"github.com/arloliu/fitstream/source"
)

func FuzzDecoder(f *testing.F) {
	f.Add(scenarioStream().Bytes())
	f.Add(benchmarkStream(20))
	f.Add(fittest.NewBuilder().
		Definition(1, format.BigEndian, 3, fittest.Field(2, 3, format.Uint16)).
		CompressedData(1, 4, []byte{1, 2, 3}).
		Bytes())
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		d, err := New(source.NewBytes(data), WithMaxFields(32))
		if err != nil {
			t.Fatal(err)
		}

		for i := 0; ; i++ {
			ev, err := d.Next()
			if err != nil {
				if errors.Is(err, io.EOF) && d.State() != StateDone {
					t.Fatalf("io.EOF in state %s", d.State())
				}
				return
			}
			if data, ok := ev.(*DataEvent); ok {
				for _, v := range data.Values {
					_ = v.String()
					_ = v.Any()
				}
			}
			if i > len(data) {
				t.Fatalf("more events than input bytes")
			}
		}
	})
}
