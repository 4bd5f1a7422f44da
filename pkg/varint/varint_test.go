package varint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendParseRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 300, 1 << 20, ^uint32(0)}
	for _, v := range values {
		buf := Append(nil, v)
		assert.Equal(t, Size(v), len(buf))

		got, n, ok := Parse32WithLimit(buf)
		require.True(t, ok)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v, got)
	}
}

func TestParse32WithLimitTruncated(t *testing.T) {
	buf := Append(nil, 1<<20)
	_, _, ok := Parse32WithLimit(buf[:1])
	assert.False(t, ok)
}

func TestParse32WithLimitOverflow(t *testing.T) {
	// A varint encoding a value larger than uint32 max.
	buf := Append(nil, 0)
	buf = append([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, buf...)
	_, _, ok := Parse32WithLimit(buf)
	assert.False(t, ok)
}

func TestPutIntoPresizedBuffer(t *testing.T) {
	buf := make([]byte, MaxLen32)
	n := Put(buf, 1<<20)
	assert.Equal(t, Size(uint32(1<<20)), n)
}
