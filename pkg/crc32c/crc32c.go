// Package crc32c computes CRC32C (Castagnoli) checksums and applies the
// LevelDB-style masking used to frame on-disk records.
//
// Masking exists so that a block of all-zero bytes can never be mistaken
// for a valid checksum: an unmasked CRC of an all-zero payload happens to
// be zero too often in practice, which makes zero padding indistinguishable
// from a genuine (but zeroed) record. Rotating and offsetting the value
// breaks that coincidence.
package crc32c

import (
	"hash/crc32"
	"math/bits"
)

const maskDelta uint32 = 0xa282ead8

var table = crc32.MakeTable(crc32.Castagnoli)

// Value returns the CRC32C checksum of data.
func Value(data []byte) uint32 {
	return crc32.Checksum(data, table)
}

// Extend extends an existing CRC32C checksum with additional data, as if
// crc had been computed over the concatenation of the original bytes and
// data.
func Extend(crc uint32, data []byte) uint32 {
	return crc32.Update(crc, table, data)
}

// Mask transforms a raw CRC32C value into a masked value suitable for
// storage. Storing the masked value protects against errors that would
// otherwise make zero-filled regions of a file indistinguishable from a
// record that legitimately checksums to zero.
func Mask(crc uint32) uint32 {
	return bits.RotateLeft32(crc, -15) + maskDelta
}

// Unmask reverses Mask.
func Unmask(masked uint32) uint32 {
	rot := masked - maskDelta
	return bits.RotateLeft32(rot, 15)
}
