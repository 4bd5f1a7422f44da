package compressors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boundNoop(n int) int { return n }

func compressNoop(level int, src, dst []byte) (int, error) {
	return copy(dst, src), nil
}

func uncompressNoop(src, dst []byte) (int, error) {
	return copy(dst, src), nil
}

func compressNoop2(level int, src, dst []byte) (int, error) {
	return copy(dst, src), nil
}

func TestRegisterThenLookup(t *testing.T) {
	const m Method = 200
	require.NoError(t, Register(m, boundNoop, compressNoop, uncompressNoop))
	defer delete(registry, m)

	assert.True(t, Registered(m))

	bound, err := Bound(m)
	require.NoError(t, err)
	assert.Equal(t, 10, bound(10))

	compress, err := Compress(m)
	require.NoError(t, err)
	n, err := compress(0, []byte("hello"), make([]byte, 5))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	uncompress, err := Uncompress(m)
	require.NoError(t, err)
	n, err = uncompress([]byte("hello"), make([]byte, 5))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestRegisterSameCodecTwiceIsNoop(t *testing.T) {
	const m Method = 201
	require.NoError(t, Register(m, boundNoop, compressNoop, uncompressNoop))
	defer delete(registry, m)

	err := Register(m, boundNoop, compressNoop, uncompressNoop)
	assert.NoError(t, err)
}

func TestRegisterConflictingCodecIsError(t *testing.T) {
	const m Method = 202
	require.NoError(t, Register(m, boundNoop, compressNoop, uncompressNoop))
	defer delete(registry, m)

	err := Register(m, boundNoop, compressNoop2, uncompressNoop)
	assert.Error(t, err)
}

func TestLookupUnregisteredMethodFails(t *testing.T) {
	const m Method = 203
	_, err := Bound(m)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = Compress(m)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = Uncompress(m)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, Registered(m))
}

func TestMethodString(t *testing.T) {
	assert.Equal(t, "zlib", Zlib.String())
	assert.Equal(t, "snappy", Snappy.String())
	assert.Equal(t, "lz4", LZ4.String())
	assert.Equal(t, "unknown", Unknown.String())
}

func TestBuiltinCodecsRegisterThemselves(t *testing.T) {
	assert.True(t, Registered(Zlib))
	assert.True(t, Registered(Snappy))
	assert.True(t, Registered(LZ4))
}
