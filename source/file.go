package source

import (
	"bufio"
	"fmt"
	"io"

	"github.com/arloliu/fitstream/compress"
	"github.com/arloliu/fitstream/format"
)

// File is a Source over the whole content of a file.
//
// Plain files are memory mapped where the platform allows it; compressed
// files opened through Open hold the decompressed bytes in memory.
type File struct {
	Bytes

	release     func() error
	compression format.CompressionType
}

var _ Source = (*File)(nil)

// OpenFile maps the file at path without interpreting its content.
func OpenFile(path string) (*File, error) {
	data, release, err := mapFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &File{
		Bytes:       Bytes{data: data},
		release:     release,
		compression: format.CompressionNone,
	}, nil
}

// Open opens the file at path, decompressing it when it is a known archive.
//
// The archive format is sniffed from the content, not the file extension.
func Open(path string) (*File, error) {
	f, err := OpenFile(path)
	if err != nil {
		return nil, err
	}

	ct := compress.Detect(f.data)
	if ct == format.CompressionNone {
		return f, nil
	}

	plain, _, err := compress.Decompress(f.data)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &File{
		Bytes:       Bytes{data: plain},
		release:     func() error { return nil },
		compression: ct,
	}, nil
}

// Compression returns the archive format the file was stored in.
func (f *File) Compression() format.CompressionType {
	return f.compression
}

// Len returns the size of the (decompressed) content.
func (f *File) Len() int {
	return len(f.data)
}

// Close releases the mapping. Slices returned by Next must not be used afterwards.
func (f *File) Close() error {
	if f.release == nil {
		return nil
	}

	err := f.release()
	f.release = nil
	f.Reset(nil)

	return err
}

// OpenReader wraps r, sniffing and streaming through a decompressor when the
// input is a known archive.
//
// Closing the returned Reader releases both its buffer and the decompressor.
func OpenReader(r io.Reader) (*StreamReader, format.CompressionType, error) {
	br := bufio.NewReader(r)

	prefix, err := br.Peek(compress.SniffSize)
	if err != nil && err != io.EOF {
		return nil, format.CompressionNone, fmt.Errorf("sniff input: %w", err)
	}

	ct := compress.Detect(prefix)

	rc, err := compress.NewReader(ct, br)
	if err != nil {
		return nil, ct, err
	}

	return &StreamReader{Reader: NewReader(rc), closer: rc}, ct, nil
}

// StreamReader is a Reader that owns a decompression stage.
type StreamReader struct {
	*Reader

	closer io.Closer
}

// Close releases the record buffer and the decompressor.
func (s *StreamReader) Close() error {
	_ = s.Reader.Close()

	return s.closer.Close()
}
