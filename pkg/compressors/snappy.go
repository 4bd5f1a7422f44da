package compressors

import (
	"fmt"

	"github.com/golang/snappy"
)

func init() {
	if err := Register(Snappy, snappyBound, snappyCompress, snappyUncompress); err != nil {
		panic(err)
	}
}

func snappyBound(srcLen int) int {
	return snappy.MaxEncodedLen(srcLen)
}

func snappyCompress(level int, src, dst []byte) (int, error) {
	out := snappy.Encode(dst, src)
	if len(out) > len(dst) {
		return 0, fmt.Errorf("compressors: snappy output (%d bytes) exceeds destination buffer (%d bytes)", len(out), len(dst))
	}
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return len(out), nil
}

func snappyUncompress(src, dst []byte) (int, error) {
	n, err := snappy.DecodedLen(src)
	if err != nil {
		return 0, err
	}
	if n > len(dst) {
		return 0, fmt.Errorf("compressors: snappy output (%d bytes) exceeds destination buffer (%d bytes)", n, len(dst))
	}
	out, err := snappy.Decode(dst, src)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}
