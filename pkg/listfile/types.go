package listfile

import (
	"errors"

	"github.com/UbimoLTD/listfile/pkg/compressors"
)

// RecordType is the low nibble of a frame's type byte.
type RecordType uint8

const (
	ZeroType   RecordType = 0
	FullType   RecordType = 1
	FirstType  RecordType = 2
	MiddleType RecordType = 3
	LastType   RecordType = 4
	ArrayType  RecordType = 5
)

func (t RecordType) String() string {
	switch t {
	case ZeroType:
		return "zero"
	case FullType:
		return "full"
	case FirstType:
		return "first"
	case MiddleType:
		return "middle"
	case LastType:
		return "last"
	case ArrayType:
		return "array"
	default:
		return "unknown"
	}
}

// compressedMask is the high bit of the type byte. When set, the frame
// payload is [method byte][codec output] rather than raw bytes.
const compressedMask uint8 = 0x80

const (
	// magic identifies a list file. It is five bytes so the header layout
	// matches the original format exactly: magic, multiplier, extension.
	magic = "LST1\x00"

	// blockFactor is the unit the header's multiplier byte scales. Actual
	// block size is multiplier * blockFactor.
	blockFactor = 64 * 1024

	minMultiplier = 1
	maxMultiplier = 100

	// frameHeaderSize is crc(4) + length(4) + type(1).
	frameHeaderSize = 9

	noExtension   = 0
	metaExtension = 1

	// headerPrefixSize is magic + multiplier + extension byte.
	headerPrefixSize = len(magic) + 2

	// arrayHeaderMaxSize is the varint-encoded item-count prefix's worst
	// case size, reserved in the array budget for the count that
	// payload() prepends when the array is flushed.
	arrayHeaderMaxSize = 5

	// arrayRecordMaxHeaderSize reserves room for both the eventual frame
	// header and the count varint when deciding whether a block has
	// enough space left to start accumulating an array.
	arrayRecordMaxHeaderSize = frameHeaderSize + arrayHeaderMaxSize

	// compressionThreshold is the minimum payload size the writer will
	// bother asking a codec to compress.
	compressionThreshold = 128

	// compressReduction requires a compressed payload to be smaller than
	// (1 - 1/compressReduction) of the original before it is used in
	// place of the raw payload.
	compressReduction = 8

	// arrayRecordMax is the largest record the writer will fold into an
	// ARRAY frame instead of emitting it as its own FULL frame.
	arrayRecordMax = 2 * 1024

	// ProtoTypeKey and ProtoSetKey are the two reserved metadata keys the
	// list file format carries for self-describing protobuf streams.
	ProtoTypeKey = "proto_type"
	ProtoSetKey  = "proto_set"
)

// CompressMethod aliases the shared codec registry's method type so
// callers configuring a Writer don't need to import the compressors
// package directly.
type CompressMethod = compressors.Method

const (
	NoCompression = compressors.Unknown
	CompressZlib  = compressors.Zlib
	CompressSnappy = compressors.Snappy
	CompressLZ4   = compressors.LZ4
)

var (
	// ErrInvalidHeader covers magic mismatch, an out-of-range multiplier,
	// or a corrupt metadata CRC: all fatal, all detected before the first
	// block is ever read.
	ErrInvalidHeader = errors.New("listfile: invalid header")

	// ErrInitCalled is returned by AddMeta once Init has already run.
	ErrInitCalled = errors.New("listfile: metadata can only be added before Init")

	// ErrNotInitialized is returned by AddRecord if Init was never called.
	ErrNotInitialized = errors.New("listfile: Init was not called")

	// ErrMissingCodec is a configuration error: the writer was asked to
	// use a compression method nothing registered.
	ErrMissingCodec = errors.New("listfile: compression method not registered")

	// ErrRecordTooLarge is returned for records that cannot be
	// represented even as a fragmented sequence (overflow of the 32-bit
	// length field).
	ErrRecordTooLarge = errors.New("listfile: record exceeds maximum representable size")
)

// CorruptionReporter receives a notification for every recoverable
// corruption event the reader encounters: bytesLost is how much of the
// file was discarded to recover, reason is a short, stable description.
// It must not panic back into the reader.
type CorruptionReporter func(bytesLost int, reason string)

// Sink is the write side of the out-of-scope file abstraction the list
// file core depends on. *os.File and bufio.Writer both satisfy it.
type Sink interface {
	Write(p []byte) (n int, err error)
}

// Source is the read side: a random-access byte range reader with a
// known size. *os.File provides ReadAt but not Size; OpenReader wraps it
// in fileSource to satisfy this interface.
type Source interface {
	ReadAt(p []byte, off int64) (n int, err error)
	Size() (int64, error)
}
