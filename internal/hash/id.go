package hash

import "github.com/cespare/xxhash/v2"

// Digest is a streaming xxHash64 digest.
//
// Call Reset before the first Write; a reset digest can be reused.
type Digest struct {
	d xxhash.Digest
}

// Write folds p into the digest.
func (d *Digest) Write(p []byte) (int, error) {
	return d.d.Write(p)
}

// Sum64 returns the current hash.
func (d *Digest) Sum64() uint64 {
	return d.d.Sum64()
}

// Reset clears the digest.
func (d *Digest) Reset() {
	d.d.Reset()
}
