package listfile

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/UbimoLTD/listfile/pkg/compressors"
	"github.com/UbimoLTD/listfile/pkg/varint"
)

// Options configures a Writer. BlockSizeMultiplier is ignored in append
// mode: the multiplier already recorded in the target file's header
// wins, since every block in a list file must be the same size.
type Options struct {
	// BlockSizeMultiplier scales blockFactor (64KiB) to the actual block
	// size. Must be in [1,100]. Defaults to 1 if zero.
	BlockSizeMultiplier uint8

	// Compress selects the codec new FULL and ARRAY frames are offered
	// to. NoCompression disables compression entirely. Fragments are
	// never compressed regardless of this setting.
	Compress CompressMethod

	// CompressLevel is passed through to the codec's Compress function;
	// its meaning is codec-specific.
	CompressLevel int

	// Append, when used with OpenWriter, causes writes to resume at the
	// end of an existing file instead of truncating it. Ignored by
	// NewWriter, which always starts a fresh stream.
	Append bool
}

// Writer assembles records into fixed-size blocks of checksummed frames
// and streams them to a Sink. The zero value is not usable; construct
// with NewWriter or OpenWriter.
type Writer struct {
	bw     *bufio.Writer
	closer func() error

	opts      Options
	blockSize int
	blockPos  int
	appendMode bool
	initCalled bool

	meta map[string]string

	arr         arrayAccumulator
	arrayBudget int

	compressBound func(int) int
	compressFn    compressors.CompressFunc
	compressBuf   []byte

	frameBuf []byte

	recordsAdded       int64
	bytesWritten       int64
	compressionSavings int64
}

// NewWriter wraps an already-open Sink. It never reads from sink and
// never treats Options.Append specially; use OpenWriter to resume an
// existing file.
func NewWriter(sink Sink, opts Options) (*Writer, error) {
	return newWriter(sink, opts, false, nil)
}

// OpenWriter opens (creating if necessary) the list file at path. With
// Options.Append set, an existing file's header is parsed first and
// writing resumes at its current length; a fresh file always writes a
// new header.
func OpenWriter(path string, opts Options) (*Writer, error) {
	if opts.BlockSizeMultiplier == 0 {
		opts.BlockSizeMultiplier = minMultiplier
	}

	appendMode := false
	var blockPos int64
	if opts.Append {
		if existing, err := os.Open(path); err == nil {
			src := fileSource{existing}
			hdr, herr := decodeHeader(src)
			var size int64
			if herr == nil {
				size, herr = src.Size()
			}
			existing.Close()
			if herr == nil {
				opts.BlockSizeMultiplier = hdr.multiplier
				blockSize := int64(hdr.multiplier) * blockFactor
				blockPos = (size - hdr.size) % blockSize
				appendMode = true
			}
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("listfile: open %s: %w", path, err)
	}

	w, err := newWriter(f, opts, appendMode, f.Close)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.blockPos = int(blockPos)
	return w, nil
}

func newWriter(sink Sink, opts Options, appendMode bool, closer func() error) (*Writer, error) {
	if opts.BlockSizeMultiplier == 0 {
		opts.BlockSizeMultiplier = minMultiplier
	}
	if opts.BlockSizeMultiplier < minMultiplier || opts.BlockSizeMultiplier > maxMultiplier {
		return nil, fmt.Errorf("listfile: block multiplier %d out of range", opts.BlockSizeMultiplier)
	}

	w := &Writer{
		bw:         bufio.NewWriterSize(sink, blockFactor),
		closer:     closer,
		opts:       opts,
		blockSize:  int(opts.BlockSizeMultiplier) * blockFactor,
		appendMode: appendMode,
		meta:       make(map[string]string),
		frameBuf:   make([]byte, frameHeaderSize+int(opts.BlockSizeMultiplier)*blockFactor),
	}

	if opts.Compress != NoCompression {
		boundFn, err := compressors.Bound(opts.Compress)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingCodec, err)
		}
		compressFn, err := compressors.Compress(opts.Compress)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingCodec, err)
		}
		w.compressBound = boundFn
		w.compressFn = compressFn
		w.compressBuf = make([]byte, boundFn(w.blockSize)+1)
	}

	return w, nil
}

// AddMeta records a key/value pair in the file header. It must be
// called before Init; calling it afterward returns ErrInitCalled and
// leaves the map untouched, matching Init's own one-shot contract.
func (w *Writer) AddMeta(key, value string) error {
	if w.initCalled {
		return ErrInitCalled
	}
	w.meta[key] = value
	return nil
}

// Init writes the file header. It must be called exactly once, before
// any call to AddRecord; a second call returns an error rather than
// silently succeeding, since a repeat call generally means the caller
// lost track of writer state.
func (w *Writer) Init() error {
	if w.initCalled {
		return fmt.Errorf("listfile: Init already called")
	}
	if !w.appendMode {
		hdr := encodeHeader(w.opts.BlockSizeMultiplier, w.meta)
		if _, err := w.bw.Write(hdr); err != nil {
			return err
		}
	}
	w.initCalled = true
	return nil
}

// AddRecord appends one logical record. It is split into FIRST/MIDDLE/
// LAST fragments if it does not fit in the current block, folded into
// the in-flight ARRAY accumulator if it is small enough and array
// accumulation is viable, or written as a single FULL frame otherwise.
func (w *Writer) AddRecord(record []byte) error {
	if !w.initCalled {
		return ErrNotInitialized
	}
	if uint64(len(record)) > uint64(^uint32(0)) {
		return ErrRecordTooLarge
	}

	recordSizeTotal := varint.Size(uint32(len(record))) + len(record)
	data := record
	fragmenting := false
	w.recordsAdded++

	for {
		if !w.arr.empty() {
			fits := len(data) <= arrayRecordMax && len(w.arr.buf)+recordSizeTotal <= w.arrayBudget
			if fits {
				w.arr.add(data)
				return nil
			}
			if err := w.flushArray(); err != nil {
				return err
			}
		}

		if leftover := w.blockSize - w.blockPos; leftover < frameHeaderSize {
			if leftover > 0 {
				if err := w.padBlock(leftover); err != nil {
					return err
				}
			}
			w.blockPos = 0
		}

		if fragmenting {
			leftover := w.blockSize - w.blockPos
			fragmentLen := len(data)
			t := LastType
			if fragmentLen > leftover-frameHeaderSize {
				fragmentLen = leftover - frameHeaderSize
				t = MiddleType
			}
			if err := w.emit(t, false, data[:fragmentLen]); err != nil {
				return err
			}
			if t == LastType {
				return nil
			}
			data = data[fragmentLen:]
			continue
		}

		leftover := w.blockSize - w.blockPos
		cappedLeftover := leftover
		if half := w.blockSize / 2; cappedLeftover > half {
			cappedLeftover = half
		}

		if len(data) <= arrayRecordMax && recordSizeTotal+arrayRecordMaxHeaderSize < cappedLeftover {
			w.arrayBudget = cappedLeftover - arrayRecordMaxHeaderSize
			w.arr.reset()
			w.arr.add(data)
			return nil
		}

		if len(data) > 0 && frameHeaderSize+len(data) <= leftover {
			return w.emit(FullType, true, data)
		}

		fragmentLen := leftover - frameHeaderSize
		if fragmentLen == 0 || len(data) == 0 {
			// decodeFrame rejects a zero-length data frame, so neither an
			// empty FIRST fragment nor an empty FULL frame is written: the
			// block is padded and the record starts in the next one.
			if err := w.padBlock(leftover); err != nil {
				return err
			}
			w.blockPos = 0
			continue
		}
		fragmenting = true
		if err := w.emit(FirstType, false, data[:fragmentLen]); err != nil {
			return err
		}
		data = data[fragmentLen:]
	}
}

func (w *Writer) flushArray() error {
	if w.arr.empty() {
		return nil
	}
	payload := w.arr.payload()
	if err := w.emit(ArrayType, true, payload); err != nil {
		return err
	}
	w.arr.reset()
	return nil
}

// emit writes one physical frame, attempting compression first when
// allowed and worthwhile. Fragments (allowCompress=false) are always
// written raw: compressing a slice of a larger record in isolation
// compresses poorly and would complicate reassembly.
func (w *Writer) emit(t RecordType, allowCompress bool, payload []byte) error {
	compressed := false
	out := payload

	if allowCompress && w.opts.Compress != NoCompression && len(payload) >= compressionThreshold {
		n, err := w.compressFn(w.opts.CompressLevel, payload, w.compressBuf[1:])
		if err != nil {
			log.Printf("listfile: compress error, writing record uncompressed: %v", err)
		} else if n > 0 && n+1 < len(payload)-len(payload)/compressReduction {
			w.compressBuf[0] = byte(w.opts.Compress)
			out = w.compressBuf[:n+1]
			compressed = true
			w.compressionSavings += int64(len(payload) - len(out))
		}
	}

	n := putFrame(w.frameBuf[:frameSize(len(out))], t, compressed, out)
	if _, err := w.bw.Write(w.frameBuf[:n]); err != nil {
		return err
	}
	w.blockPos += n
	w.bytesWritten += int64(n)
	return nil
}

// padBlock fills the remaining bytes of the current block. When fewer
// than frameHeaderSize bytes remain there is no room for a frame header
// at all, so the pad is raw zero bytes; otherwise it is one ZERO-type
// frame covering the whole remainder, checksummed like any other frame.
func (w *Writer) padBlock(remaining int) error {
	if remaining <= 0 {
		return nil
	}
	if remaining < frameHeaderSize {
		if _, err := w.bw.Write(make([]byte, remaining)); err != nil {
			return err
		}
		w.bytesWritten += int64(remaining)
		return nil
	}

	payload := make([]byte, remaining-frameHeaderSize)
	frame := make([]byte, remaining)
	n := putFrame(frame, ZeroType, false, payload)
	if _, err := w.bw.Write(frame[:n]); err != nil {
		return err
	}
	w.bytesWritten += int64(n)
	return nil
}

// Flush forces any buffered array to disk as an ARRAY frame, pads the
// current block out to block_size with a ZERO frame, and flushes the
// underlying buffered writer. Calling Flush twice in a row with no
// records added between them is a no-op the second time: the block is
// already aligned and there is nothing left to pad.
func (w *Writer) Flush() error {
	if err := w.flushArray(); err != nil {
		return err
	}
	if w.blockPos > 0 {
		if err := w.padBlock(w.blockSize - w.blockPos); err != nil {
			return err
		}
		w.blockPos = 0
	}
	return w.bw.Flush()
}

// Close flushes any pending data and closes the underlying file if the
// Writer was constructed with OpenWriter. Writers constructed with
// NewWriter around a caller-owned Sink leave the sink open.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.closer != nil {
		return w.closer()
	}
	return nil
}

// Stats reports cumulative counters for monitoring and tests.
func (w *Writer) Stats() (records int64, bytesWritten int64, compressionSavings int64) {
	return w.recordsAdded, w.bytesWritten, w.compressionSavings
}
