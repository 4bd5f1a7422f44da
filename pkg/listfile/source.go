package listfile

import "os"

// fileSource adapts *os.File to the Source interface.
type fileSource struct {
	f *os.File
}

func (s fileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

func (s fileSource) Size() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
