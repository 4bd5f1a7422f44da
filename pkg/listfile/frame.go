package listfile

import (
	"encoding/binary"
	"errors"

	"github.com/UbimoLTD/listfile/pkg/crc32c"
)

// errZeroPad signals a type=ZERO, length=0 frame: intentional tail
// padding that the caller should skip without treating it as data.
var errZeroPad = errors.New("listfile: zero padding frame")

// errBadRecord signals a frame whose header is internally inconsistent:
// a non-zero type with zero length, or a length that would run the
// payload past the bytes currently buffered. The caller drops the rest
// of the block and resumes at the next block boundary.
var errBadRecord = errors.New("listfile: bad record")

// errChecksumMismatch signals a frame whose stored CRC does not match
// its recomputed CRC. Like errBadRecord, recovery is to drop the rest of
// the block.
var errChecksumMismatch = errors.New("listfile: checksum mismatch")

// frameSize returns the on-disk size of a frame carrying a payload of
// payloadLen bytes.
func frameSize(payloadLen int) int {
	return frameHeaderSize + payloadLen
}

// putFrame writes a complete frame (header + payload) into the front of
// dst, which must be at least frameSize(len(payload)) bytes long, and
// returns the number of bytes written.
func putFrame(dst []byte, t RecordType, compressed bool, payload []byte) int {
	typeByte := uint8(t)
	if compressed {
		typeByte |= compressedMask
	}

	crc := crc32c.Value([]byte{typeByte})
	crc = crc32c.Extend(crc, payload)
	masked := crc32c.Mask(crc)

	binary.LittleEndian.PutUint32(dst[0:4], masked)
	binary.LittleEndian.PutUint32(dst[4:8], uint32(len(payload)))
	dst[8] = typeByte
	copy(dst[frameHeaderSize:], payload)

	return frameSize(len(payload))
}

// decodedFrame is the result of successfully decoding one physical
// frame. Payload aliases the input buffer; callers that need to retain
// it across further decode calls must copy it.
type decodedFrame struct {
	Type       RecordType
	Compressed bool
	Payload    []byte
	Consumed   int
}

// decodeFrame parses one frame from the front of buf. checksum controls
// whether the CRC is verified; the header CRC is always verified by its
// own caller, which never goes through this function.
//
// On success it returns a zero error. On recoverable corruption it
// returns errZeroPad, errBadRecord, or errChecksumMismatch, unwrapped, so
// callers can branch on these sentinels directly.
func decodeFrame(buf []byte, checksum bool) (decodedFrame, error) {
	length := binary.LittleEndian.Uint32(buf[4:8])
	typeByte := buf[8]
	t := RecordType(typeByte & 0x0F)
	compressed := typeByte&compressedMask != 0

	if length == 0 {
		if t == ZeroType {
			return decodedFrame{Type: ZeroType, Consumed: frameHeaderSize}, errZeroPad
		}
		return decodedFrame{}, errBadRecord
	}

	if uint64(frameHeaderSize)+uint64(length) > uint64(len(buf)) {
		return decodedFrame{}, errBadRecord
	}

	payload := buf[frameHeaderSize : frameHeaderSize+int(length)]

	if checksum {
		expected := crc32c.Unmask(binary.LittleEndian.Uint32(buf[0:4]))
		actual := crc32c.Value(buf[8 : frameHeaderSize+int(length)])
		if actual != expected {
			return decodedFrame{}, errChecksumMismatch
		}
	}

	return decodedFrame{
		Type:       t,
		Compressed: compressed,
		Payload:    payload,
		Consumed:   frameSize(int(length)),
	}, nil
}
