// Package varint implements the base-128 varint encoding used for array
// item counts, array item lengths, and list file metadata entries. It is
// the same variable-length integer scheme protobuf uses for its wire
// format, so we lean on encoding/binary rather than hand-rolling a byte
// shifter.
package varint

import "encoding/binary"

// MaxLen32 is the largest number of bytes a 32-bit varint can occupy.
const MaxLen32 = 5

// Put appends the varint encoding of v to buf and returns the number of
// bytes written.
func Put(buf []byte, v uint32) int {
	return binary.PutUvarint(buf, uint64(v))
}

// Append encodes v as a varint and appends it to buf, returning the
// extended slice.
func Append(buf []byte, v uint32) []byte {
	return binary.AppendUvarint(buf, uint64(v))
}

// Size returns the number of bytes Put would write for v.
func Size(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// Parse32WithLimit decodes a varint32 from the prefix of buf and returns
// the decoded value plus the number of bytes it occupied. It returns
// ok=false if buf does not contain a complete, in-range varint.
func Parse32WithLimit(buf []byte) (value uint32, n int, ok bool) {
	v, n := binary.Uvarint(buf)
	if n <= 0 {
		return 0, 0, false
	}
	if v > uint64(^uint32(0)) {
		return 0, 0, false
	}
	return uint32(v), n, true
}
