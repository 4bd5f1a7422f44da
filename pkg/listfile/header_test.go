package listfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeHeaderNoMeta(t *testing.T) {
	buf := encodeHeader(4, nil)
	hdr, err := decodeHeader(&memSource{data: buf})
	require.NoError(t, err)
	assert.Equal(t, uint8(4), hdr.multiplier)
	assert.Empty(t, hdr.meta)
	assert.Equal(t, int64(len(buf)), hdr.size)
}

func TestEncodeDecodeHeaderWithMeta(t *testing.T) {
	meta := map[string]string{"foo": "bar", "generator": "test"}
	buf := encodeHeader(1, meta)
	hdr, err := decodeHeader(&memSource{data: buf})
	require.NoError(t, err)
	assert.Equal(t, meta, hdr.meta)
}

func TestDecodeHeaderBadMagic(t *testing.T) {
	buf := encodeHeader(1, nil)
	buf[0] ^= 0xFF
	_, err := decodeHeader(&memSource{data: buf})
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestDecodeHeaderMultiplierOutOfRange(t *testing.T) {
	buf := encodeHeader(1, nil)
	buf[len(magic)] = 0
	_, err := decodeHeader(&memSource{data: buf})
	assert.ErrorIs(t, err, ErrInvalidHeader)

	buf[len(magic)] = 101
	_, err = decodeHeader(&memSource{data: buf})
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestDecodeHeaderCorruptMetaChecksum(t *testing.T) {
	buf := encodeHeader(1, map[string]string{"k": "v"})
	buf[len(buf)-1] ^= 0xFF
	_, err := decodeHeader(&memSource{data: buf})
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestDecodeHeaderUnknownExtension(t *testing.T) {
	buf := encodeHeader(1, nil)
	buf[len(magic)+1] = 99
	_, err := decodeHeader(&memSource{data: buf})
	assert.ErrorIs(t, err, ErrInvalidHeader)
}
