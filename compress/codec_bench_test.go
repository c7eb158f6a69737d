package compress

import (
	"testing"
)

func BenchmarkAllCodecs_Decompress(b *testing.B) {
	data := fitLike(256 * 1024)

	for _, ct := range allTypes {
		codec, err := GetCodec(ct)
		if err != nil {
			b.Fatal(err)
		}

		compressed, err := codec.Compress(data)
		if err != nil {
			b.Fatal(err)
		}

		b.Run(ct.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				if _, err := codec.Decompress(compressed); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDetect(b *testing.B) {
	prefix := []byte("\xff\x06\x00\x00S2sTwO")

	for b.Loop() {
		_ = Detect(prefix)
	}
}
