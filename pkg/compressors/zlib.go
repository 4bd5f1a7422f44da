package compressors

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

func init() {
	if err := Register(Zlib, zlibBound, zlibCompress, zlibUncompress); err != nil {
		panic(err)
	}
}

func zlibBound(srcLen int) int {
	// zlib's worst case is the stored-block overhead: a handful of bytes
	// per ~16KB plus a constant for the header/trailer.
	return srcLen + srcLen/1000 + 128
}

func zlibCompress(level int, src, dst []byte) (int, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(src); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	if buf.Len() > len(dst) {
		return 0, fmt.Errorf("compressors: zlib output (%d bytes) exceeds destination buffer (%d bytes)", buf.Len(), len(dst))
	}
	return copy(dst, buf.Bytes()), nil
}

func zlibUncompress(src, dst []byte) (int, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return 0, err
	}
	defer r.Close()

	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(r, int64(len(dst))+1))
	if err != nil {
		return 0, err
	}
	if n > int64(len(dst)) {
		return 0, fmt.Errorf("compressors: zlib output exceeds destination buffer (%d bytes)", len(dst))
	}
	return copy(dst, buf.Bytes()), nil
}
