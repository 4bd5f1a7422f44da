package listfile

import (
	"fmt"
	"io"
	"os"

	"github.com/UbimoLTD/listfile/pkg/compressors"
)

// readState tracks whether the reader is between records or midway
// through reassembling a fragmented one.
type readState uint8

const (
	idleState readState = iota
	fragmentedState
)

// Reader replays the records written by a Writer, transparently
// reassembling fragments, expanding ARRAY frames, and skipping
// padding. Corruption is recoverable at block granularity: a bad
// checksum or malformed frame drops the rest of the current block and
// resumes scanning at the next one.
type Reader struct {
	src    Source
	closer func() error

	blockSize int
	offset    int64

	block    []byte
	blockLen int
	pos      int

	state   readState
	fragBuf []byte
	arrCur  arrayCursor

	scratch []byte

	meta     map[string]string
	checksum bool
	reporter CorruptionReporter
}

// NewReader wraps an already-open Source and parses its header. checksum
// controls whether each data frame's CRC is verified; disabling it is an
// optimization for files already known to be trustworthy.
func NewReader(src Source, checksum bool, reporter CorruptionReporter) (*Reader, error) {
	return newReader(src, checksum, reporter, nil)
}

// OpenReader opens the list file at path for reading. checksum controls
// whether each data frame's CRC is verified.
func OpenReader(path string, checksum bool, reporter CorruptionReporter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("listfile: open %s: %w", path, err)
	}
	r, err := newReader(fileSource{f}, checksum, reporter, f.Close)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func newReader(src Source, checksum bool, reporter CorruptionReporter, closer func() error) (*Reader, error) {
	hdr, err := decodeHeader(src)
	if err != nil {
		return nil, err
	}
	blockSize := int(hdr.multiplier) * blockFactor
	return &Reader{
		src:       src,
		closer:    closer,
		blockSize: blockSize,
		offset:    hdr.size,
		block:     make([]byte, blockSize),
		scratch:   make([]byte, blockSize),
		meta:      hdr.meta,
		checksum:  checksum,
		reporter:  reporter,
	}, nil
}

// GetMetadata returns the key/value pairs stored in the file header.
func (r *Reader) GetMetadata() map[string]string {
	out := make(map[string]string, len(r.meta))
	for k, v := range r.meta {
		out[k] = v
	}
	return out
}

// Close closes the underlying file if the Reader was constructed with
// OpenReader. Readers constructed with NewReader around a caller-owned
// Source leave it open.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer()
	}
	return nil
}

func (r *Reader) report(bytesLost int, reason string) {
	if r.reporter != nil {
		r.reporter(bytesLost, reason)
	}
}

// loadBlock reads the next block-sized (or shorter, for a final
// partial block) chunk from src into r.block.
func (r *Reader) loadBlock() error {
	size, err := r.src.Size()
	if err != nil {
		return err
	}
	if r.offset >= size {
		return io.EOF
	}
	remaining := size - r.offset
	n := r.blockSize
	if int64(n) > remaining {
		n = int(remaining)
	}
	if _, err := readExact(r.src, r.offset, r.block[:n]); err != nil {
		return err
	}
	r.blockLen = n
	r.pos = 0
	r.offset += int64(n)
	return nil
}

// nextFrame returns the next data-bearing frame, transparently
// skipping ZERO padding (both the length=0 shortcut and an ordinary
// ZERO-type frame with a nonzero length) and advancing past block
// boundaries as needed.
//
// The gap-at-block-tail check below is intentionally strict (<), not
// <=: an older writer generation used < as well, occasionally leaving
// exactly frameHeaderSize bytes of trailing space it treated as usable.
// Matching that guard keeps files it produced readable.
func (r *Reader) nextFrame() (decodedFrame, error) {
	for {
		if r.pos >= r.blockLen {
			if err := r.loadBlock(); err != nil {
				return decodedFrame{}, err
			}
			if r.blockLen == 0 {
				return decodedFrame{}, io.EOF
			}
			continue
		}

		if avail := r.blockLen - r.pos; avail < frameHeaderSize {
			// The writer pads a tail this short with raw zero bytes;
			// anything else there is reported as corruption.
			for _, b := range r.block[r.pos:r.blockLen] {
				if b != 0 {
					r.report(avail, "short frame header at block tail")
					break
				}
			}
			r.pos = r.blockLen
			continue
		}

		frame, err := decodeFrame(r.block[r.pos:r.blockLen], r.checksum)
		switch err {
		case errZeroPad:
			r.pos += frame.Consumed
			continue
		case errBadRecord, errChecksumMismatch:
			lost := r.blockLen - r.pos
			r.report(lost, err.Error())
			r.pos = r.blockLen
			r.state = idleState
			r.fragBuf = r.fragBuf[:0]
			continue
		case nil:
			r.pos += frame.Consumed
			if frame.Type == ZeroType {
				continue
			}
			return frame, nil
		default:
			return decodedFrame{}, err
		}
	}
}

// ReadRecord returns the next logical record, or io.EOF once the file
// is exhausted. Records split across frames (FIRST/MIDDLE/LAST) and
// records packed into an ARRAY frame are both reassembled transparently;
// the caller never sees a physical frame boundary.
func (r *Reader) ReadRecord() ([]byte, error) {
	for {
		if !r.arrCur.done() {
			item, err := r.arrCur.next()
			if err != nil {
				r.report(0, "invalid array record")
				r.arrCur = arrayCursor{}
				continue
			}
			return append([]byte(nil), item...), nil
		}

		frame, err := r.nextFrame()
		if err == io.EOF {
			if r.state == fragmentedState {
				r.report(len(r.fragBuf), "partial record without end at EOF")
				r.state = idleState
				r.fragBuf = r.fragBuf[:0]
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}

		payload := frame.Payload
		if frame.Compressed {
			payload, err = r.decompress(payload)
			if err != nil {
				// Treated like a bad frame: the rest of the block is dropped.
				r.report(len(frame.Payload)+r.blockLen-r.pos, fmt.Sprintf("Uncompress failed: %v", err))
				r.pos = r.blockLen
				r.state = idleState
				r.fragBuf = r.fragBuf[:0]
				continue
			}
		}

		switch frame.Type {
		case FullType:
			if r.state == fragmentedState {
				r.report(len(r.fragBuf), "partial record without end")
				r.state = idleState
				r.fragBuf = r.fragBuf[:0]
			}
			return append([]byte(nil), payload...), nil

		case ArrayType:
			if r.state == fragmentedState {
				r.report(len(r.fragBuf), "partial record without end")
				r.state = idleState
				r.fragBuf = r.fragBuf[:0]
			}
			cur, err := newArrayCursor(payload)
			if err != nil {
				r.report(len(payload), "invalid array record")
				continue
			}
			r.arrCur = cur
			continue

		case FirstType:
			if r.state == fragmentedState {
				r.report(len(r.fragBuf), "partial record without end")
			}
			r.fragBuf = append(r.fragBuf[:0], payload...)
			r.state = fragmentedState
			continue

		case MiddleType:
			if r.state != fragmentedState {
				r.report(len(payload), "middle fragment without first")
				continue
			}
			r.fragBuf = append(r.fragBuf, payload...)
			continue

		case LastType:
			if r.state != fragmentedState {
				r.report(len(payload), "last fragment without first")
				continue
			}
			r.fragBuf = append(r.fragBuf, payload...)
			r.state = idleState
			return append([]byte(nil), r.fragBuf...), nil

		default:
			r.report(len(payload), fmt.Sprintf("unexpected record type %d", frame.Type))
			continue
		}
	}
}

func (r *Reader) decompress(payload []byte) ([]byte, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("listfile: empty compressed payload")
	}
	method := compressors.Method(payload[0])
	fn, err := compressors.Uncompress(method)
	if err != nil {
		return nil, err
	}
	n, err := fn(payload[1:], r.scratch)
	if err != nil {
		return nil, err
	}
	return r.scratch[:n], nil
}
