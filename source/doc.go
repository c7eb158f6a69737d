// Package source provides the byte sources the decoder pulls records from.
//
// A Source hands out exactly the number of bytes requested per call and never
// seeks backward. Returned slices are only valid until the following call,
// which lets implementations reuse one buffer or hand out views into memory
// they already own:
//
//   - Bytes: zero-copy cursor over an in-memory file
//   - Reader: buffered reads from any io.Reader through one pooled record buffer
//   - File: memory-mapped file (unix) with an os.ReadFile fallback
//   - Open / OpenReader: sniff compressed archives and decompress transparently
package source
