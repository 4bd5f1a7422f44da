package listfile

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeAndRead runs records through a Writer configured by opts, with
// meta added before Init, and returns everything a Reader reassembles
// from the result, in order, together with the metadata it read back.
func writeAndRead(t *testing.T, opts Options, meta map[string]string, records [][]byte) ([][]byte, map[string]string) {
	t.Helper()

	sink := &memSink{}
	w, err := NewWriter(sink, opts)
	require.NoError(t, err)
	for k, v := range meta {
		require.NoError(t, w.AddMeta(k, v))
	}
	require.NoError(t, w.Init())
	for _, rec := range records {
		require.NoError(t, w.AddRecord(rec))
	}
	require.NoError(t, w.Close())

	r, err := NewReader(&memSource{data: sink.data}, true, nil)
	require.NoError(t, err)

	var got [][]byte
	for {
		rec, err := r.ReadRecord()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, rec)
	}
	return got, r.GetMetadata()
}

func TestRoundTripSingleSmallRecord(t *testing.T) {
	got, _ := writeAndRead(t, Options{}, nil, [][]byte{[]byte("hello")})
	require.Len(t, got, 1)
	assert.Equal(t, []byte("hello"), got[0])
}

func TestRoundTripLargeRecordSpanningBlocks(t *testing.T) {
	blockSize := int(minMultiplier) * blockFactor
	big := make([]byte, blockSize*2+blockSize/3)
	for i := range big {
		big[i] = byte(i * 7)
	}
	got, _ := writeAndRead(t, Options{}, nil, [][]byte{big})
	require.Len(t, got, 1)
	assert.Equal(t, big, got[0])
}

func TestRoundTripManySmallRecordsPackedIntoArrays(t *testing.T) {
	var records [][]byte
	for i := 0; i < 1000; i++ {
		records = append(records, []byte(fmt.Sprintf("record-%04d", i)))
	}
	got, _ := writeAndRead(t, Options{}, nil, records)
	require.Len(t, got, len(records))
	for i := range records {
		assert.Equal(t, records[i], got[i])
	}
}

func TestRoundTripMetadataAndCompression(t *testing.T) {
	meta := map[string]string{"generator": "roundtrip-test", "codec": "zlib"}
	compressible := bytes.Repeat([]byte("repeat this text over and over "), 50)

	got, gotMeta := writeAndRead(t, Options{Compress: CompressZlib, CompressLevel: 6}, meta, [][]byte{compressible})
	require.Len(t, got, 1)
	assert.Equal(t, compressible, got[0])
	assert.Equal(t, meta, gotMeta)
}

func TestRoundTripMixedSizesAndBlockMultiplier(t *testing.T) {
	records := [][]byte{
		[]byte("tiny"),
		bytes.Repeat([]byte{0xAB}, 500),
		bytes.Repeat([]byte{0xCD}, 3000),
		[]byte("another tiny one"),
	}
	got, _ := writeAndRead(t, Options{BlockSizeMultiplier: 2}, nil, records)
	require.Len(t, got, len(records))
	for i := range records {
		assert.Equal(t, records[i], got[i])
	}
}

func TestAppendModeResumesExistingStream(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/append.lst"

	w, err := OpenWriter(path, Options{})
	require.NoError(t, err)
	require.NoError(t, w.AddMeta("stream", "append-test"))
	require.NoError(t, w.Init())
	require.NoError(t, w.AddRecord([]byte("first")))
	require.NoError(t, w.Close())

	w2, err := OpenWriter(path, Options{Append: true})
	require.NoError(t, err)
	require.NoError(t, w2.Init())
	require.NoError(t, w2.AddRecord([]byte("second")))
	require.NoError(t, w2.Close())

	r, err := OpenReader(path, true, nil)
	require.NoError(t, err)
	defer r.Close()

	rec1, err := r.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), rec1)

	rec2, err := r.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), rec2)

	assert.Equal(t, map[string]string{"stream": "append-test"}, r.GetMetadata())
}
