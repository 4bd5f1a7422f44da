package listfile

import "fmt"

// memSource is an in-memory Source backed by a byte slice, used to drive
// Reader/decodeHeader tests without touching the filesystem.
type memSource struct {
	data []byte
}

func (m *memSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, fmt.Errorf("memSource: offset %d out of range", off)
	}
	n := copy(p, m.data[off:])
	return n, nil
}

func (m *memSource) Size() (int64, error) {
	return int64(len(m.data)), nil
}

// memSink is an in-memory Sink that also exposes the bytes written so far.
type memSink struct {
	data []byte
}

func (m *memSink) Write(p []byte) (int, error) {
	m.data = append(m.data, p...)
	return len(p), nil
}
