package listfile

import (
	"errors"

	"github.com/UbimoLTD/listfile/pkg/varint"
)

// errInvalidArray signals a malformed ARRAY payload: a truncated varint,
// an item whose declared length runs past the payload, or a zero count.
// Recovery is to discard the remaining cursor, not the whole block.
var errInvalidArray = errors.New("listfile: invalid array record")

// arrayAccumulator buffers small records for a single ARRAY frame. Items
// are appended as (varint length, bytes) pairs; payload() produces the
// final payload by prepending the item count.
type arrayAccumulator struct {
	buf   []byte
	count uint32
}

func (a *arrayAccumulator) reset() {
	a.buf = a.buf[:0]
	a.count = 0
}

func (a *arrayAccumulator) empty() bool {
	return a.count == 0
}

// add appends one record to the accumulator.
func (a *arrayAccumulator) add(record []byte) {
	a.buf = varint.Append(a.buf, uint32(len(record)))
	a.buf = append(a.buf, record...)
	a.count++
}

// size returns an upper bound on the size an ARRAY frame payload would
// have if flushed right now, counting the item-count varint at its
// worst-case length; encodedSize is the exact figure.
func (a *arrayAccumulator) size() int {
	return varint.MaxLen32 + len(a.buf)
}

// encodedSize returns the exact size of the would-be payload (count
// varint plus buffered item bytes).
func (a *arrayAccumulator) encodedSize() int {
	countBuf := varint.Append(nil, a.count)
	return len(countBuf) + len(a.buf)
}

// payload returns the complete ARRAY frame payload: varint(count)
// followed by the buffered (varint length, bytes)+ items.
func (a *arrayAccumulator) payload() []byte {
	out := varint.Append(make([]byte, 0, a.encodedSize()), a.count)
	return append(out, a.buf...)
}

// arrayCursor walks the items packed into a decoded ARRAY frame payload,
// yielding one record at a time in insertion order.
type arrayCursor struct {
	remaining uint32
	data      []byte
}

// newArrayCursor parses the count prefix off payload and returns a
// cursor over the remaining items, or errInvalidArray if the payload is
// malformed or declares zero items.
func newArrayCursor(payload []byte) (arrayCursor, error) {
	count, n, ok := varint.Parse32WithLimit(payload)
	if !ok || count == 0 {
		return arrayCursor{}, errInvalidArray
	}
	return arrayCursor{remaining: count, data: payload[n:]}, nil
}

func (c *arrayCursor) done() bool {
	return c.remaining == 0
}

// next returns the next item in the array. It mutates the cursor to
// point past the item. On a malformed item it returns errInvalidArray
// and leaves the cursor exhausted (done() becomes true) so the caller
// drops the remainder instead of the rest of the block.
func (c *arrayCursor) next() ([]byte, error) {
	if c.remaining == 0 {
		return nil, errInvalidArray
	}
	itemLen, n, ok := varint.Parse32WithLimit(c.data)
	if !ok || uint64(n)+uint64(itemLen) > uint64(len(c.data)) {
		c.remaining = 0
		c.data = nil
		return nil, errInvalidArray
	}
	item := c.data[n : n+int(itemLen)]
	c.data = c.data[n+int(itemLen):]
	c.remaining--
	return item, nil
}
