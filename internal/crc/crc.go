// Package crc implements the 16-bit cyclic redundancy check used by FIT files.
//
// The algorithm is CRC-16/ARC (polynomial 0x8005 reflected, zero initial value,
// no final xor).
package crc

import "github.com/sigurn/crc16"

var table = crc16.MakeTable(crc16.CRC16_ARC)

// Checksum returns the checksum of p.
func Checksum(p []byte) uint16 {
	return crc16.Checksum(p, table)
}

// CRC16 is a running checksum accumulator.
//
// The zero value is ready to use. It implements io.Writer so it can sit behind
// an io.TeeReader.
type CRC16 struct {
	reg uint16
	n   int64
}

// Write folds p into the accumulator. It never fails.
func (c *CRC16) Write(p []byte) (int, error) {
	c.reg = crc16.Update(c.reg, p, table)
	c.n += int64(len(p))

	return len(p), nil
}

// Sum16 returns the checksum of all bytes written so far.
func (c *CRC16) Sum16() uint16 {
	return crc16.Complete(c.reg, table)
}

// Len returns the number of bytes folded into the accumulator.
func (c *CRC16) Len() int64 {
	return c.n
}

// Reset clears the accumulator.
func (c *CRC16) Reset() {
	c.reg = crc16.Init(table)
	c.n = 0
}
