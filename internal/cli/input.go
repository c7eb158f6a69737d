package cli

import (
	"io"

	"github.com/arloliu/fitstream/format"
	"github.com/arloliu/fitstream/source"
)

// stdinPath selects standard input as the FIT source.
const stdinPath = "-"

type input struct {
	source.Source
	compression format.CompressionType
	close       func() error
}

func (in *input) Close() error {
	return in.close()
}

// openInput opens a plain or compressed FIT file, or stdin for "-".
func openInput(path string, stdin io.Reader) (*input, error) {
	if path == stdinPath {
		sr, ct, err := source.OpenReader(stdin)
		if err != nil {
			return nil, err
		}

		return &input{Source: sr, compression: ct, close: sr.Close}, nil
	}

	f, err := source.Open(path)
	if err != nil {
		return nil, err
	}

	return &input{Source: f, compression: f.Compression(), close: f.Close}, nil
}
