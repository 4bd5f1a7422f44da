package listfile

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/UbimoLTD/listfile/pkg/crc32c"
	"github.com/UbimoLTD/listfile/pkg/varint"
)

// encodeHeader builds the on-disk file header: magic, multiplier, an
// extension byte, and — if meta is non-empty — a CRC-framed key/value
// block. Keys are sorted so the same metadata map always serializes to
// the same bytes, which keeps golden-file tests and append-mode
// comparisons honest.
func encodeHeader(multiplier uint8, meta map[string]string) []byte {
	out := make([]byte, 0, headerPrefixSize)
	out = append(out, []byte(magic)...)
	out = append(out, multiplier)
	if len(meta) == 0 {
		out = append(out, noExtension)
		return out
	}
	out = append(out, metaExtension)

	body := encodeMeta(meta)

	crc := crc32c.Mask(crc32c.Value(body))
	head := make([]byte, 8)
	binary.LittleEndian.PutUint32(head[0:4], crc)
	binary.LittleEndian.PutUint32(head[4:8], uint32(len(body)))

	out = append(out, head...)
	out = append(out, body...)
	return out
}

func encodeMeta(meta map[string]string) []byte {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	body := varint.Append(nil, uint32(len(keys)))
	for _, k := range keys {
		v := meta[k]
		body = varint.Append(body, uint32(len(k)))
		body = append(body, k...)
		body = varint.Append(body, uint32(len(v)))
		body = append(body, v...)
	}
	return body
}

// parsedHeader is the result of reading a file header.
type parsedHeader struct {
	multiplier uint8
	meta       map[string]string
	// size is the number of header bytes consumed; the first data block
	// begins at this file offset.
	size int64
}

// decodeHeader parses the header region at the start of src. It reads
// only as much of src as the header actually occupies.
func decodeHeader(src Source) (parsedHeader, error) {
	prefix := make([]byte, headerPrefixSize)
	if _, err := readExact(src, 0, prefix); err != nil {
		return parsedHeader{}, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if string(prefix[:len(magic)]) != magic {
		return parsedHeader{}, fmt.Errorf("%w: bad magic", ErrInvalidHeader)
	}
	multiplier := prefix[len(magic)]
	if multiplier < minMultiplier || multiplier > maxMultiplier {
		return parsedHeader{}, fmt.Errorf("%w: block multiplier %d out of range", ErrInvalidHeader, multiplier)
	}
	ext := prefix[len(magic)+1]
	offset := int64(headerPrefixSize)

	if ext == noExtension {
		return parsedHeader{multiplier: multiplier, meta: map[string]string{}, size: offset}, nil
	}
	if ext != metaExtension {
		return parsedHeader{}, fmt.Errorf("%w: unknown header extension %d", ErrInvalidHeader, ext)
	}

	metaHead := make([]byte, 8)
	if _, err := readExact(src, offset, metaHead); err != nil {
		return parsedHeader{}, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	offset += int64(len(metaHead))

	expectedCRC := crc32c.Unmask(binary.LittleEndian.Uint32(metaHead[0:4]))
	length := binary.LittleEndian.Uint32(metaHead[4:8])

	body := make([]byte, length)
	if _, err := readExact(src, offset, body); err != nil {
		return parsedHeader{}, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	offset += int64(length)

	if crc32c.Value(body) != expectedCRC {
		return parsedHeader{}, fmt.Errorf("%w: metadata checksum mismatch", ErrInvalidHeader)
	}

	meta, err := decodeMeta(body)
	if err != nil {
		return parsedHeader{}, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}

	return parsedHeader{multiplier: multiplier, meta: meta, size: offset}, nil
}

func decodeMeta(body []byte) (map[string]string, error) {
	count, n, ok := varint.Parse32WithLimit(body)
	if !ok {
		return nil, fmt.Errorf("truncated metadata entry count")
	}
	body = body[n:]

	meta := make(map[string]string, count)
	for i := uint32(0); i < count; i++ {
		key, rest, err := decodeMetaString(body)
		if err != nil {
			return nil, err
		}
		body = rest
		val, rest, err := decodeMetaString(body)
		if err != nil {
			return nil, err
		}
		body = rest
		meta[key] = val
	}
	return meta, nil
}

func decodeMetaString(body []byte) (string, []byte, error) {
	n, hn, ok := varint.Parse32WithLimit(body)
	if !ok {
		return "", nil, fmt.Errorf("truncated metadata string length")
	}
	body = body[hn:]
	if uint32(len(body)) < n {
		return "", nil, fmt.Errorf("metadata string runs past its block")
	}
	return string(body[:n]), body[n:], nil
}

// readExact reads exactly len(buf) bytes at off from src. Per io.ReaderAt
// convention, a read that exactly fills buf may report io.EOF alongside a
// full count; that is not a short read.
func readExact(src Source, off int64, buf []byte) (int, error) {
	n, err := src.ReadAt(buf, off)
	if n == len(buf) {
		return n, nil
	}
	if err != nil {
		return n, err
	}
	return n, fmt.Errorf("short read: got %d of %d bytes", n, len(buf))
}
