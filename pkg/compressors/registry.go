// Package compressors is the process-wide codec registry shared by the
// list file writer and reader. The core never links a particular
// compression library directly; it looks codecs up by a one-byte method
// id and calls through the three functions each codec registers.
//
// Registration happens once, typically from an init() in a codec's own
// file (see zlib.go, snappy.go, lz4.go), so link-time behavior never
// depends on static-initializer ordering across translation units the
// way the original C++ registry did.
package compressors

import (
	"fmt"
	"reflect"
	"sync"
)

// Method identifies a registered compression codec.
type Method uint8

const (
	Unknown Method = 0
	Zlib    Method = 1
	Snappy  Method = 2
	LZ4     Method = 3
)

func (m Method) String() string {
	switch m {
	case Zlib:
		return "zlib"
	case Snappy:
		return "snappy"
	case LZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// BoundFunc returns the maximum size a compressed form of srcLen bytes
// could occupy.
type BoundFunc func(srcLen int) int

// CompressFunc compresses src into dst at the given level and returns the
// number of bytes written to dst. dst is sized via BoundFunc beforehand.
type CompressFunc func(level int, src, dst []byte) (int, error)

// UncompressFunc decompresses src into dst and returns the number of bytes
// written. It must fail rather than write past len(dst).
type UncompressFunc func(src, dst []byte) (int, error)

type codec struct {
	bound      BoundFunc
	compress   CompressFunc
	uncompress UncompressFunc
}

var (
	mu       sync.RWMutex
	registry = map[Method]codec{}
)

// Register adds a codec under method id m. Registering the exact same
// triple of functions a second time is a no-op. Registering a different
// triple under an id that is already claimed is a hard error: it means
// two parts of the program disagree about what a method id means, which
// is a startup misconfiguration, not a runtime condition to recover from.
func Register(m Method, bound BoundFunc, compress CompressFunc, uncompress UncompressFunc) error {
	mu.Lock()
	defer mu.Unlock()

	c := codec{bound: bound, compress: compress, uncompress: uncompress}
	existing, ok := registry[m]
	if !ok {
		registry[m] = c
		return nil
	}
	if sameCodec(existing, c) {
		return nil
	}
	return fmt.Errorf("compressors: method %d (%s) already registered with a different codec", m, m)
}

func sameCodec(a, b codec) bool {
	return funcPtr(a.bound) == funcPtr(b.bound) &&
		funcPtr(a.compress) == funcPtr(b.compress) &&
		funcPtr(a.uncompress) == funcPtr(b.uncompress)
}

func funcPtr(f interface{}) uintptr {
	return reflect.ValueOf(f).Pointer()
}

// ErrNotFound is returned (wrapped) by Bound, Compress and Uncompress when
// no codec is registered under the requested method id.
var ErrNotFound = fmt.Errorf("compressors: method not registered")

// Bound returns the bound function for m, or ErrNotFound.
func Bound(m Method) (BoundFunc, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registry[m]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, m)
	}
	return c.bound, nil
}

// Compress returns the compress function for m, or ErrNotFound.
func Compress(m Method) (CompressFunc, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registry[m]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, m)
	}
	return c.compress, nil
}

// Uncompress returns the uncompress function for m, or ErrNotFound.
func Uncompress(m Method) (UncompressFunc, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registry[m]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, m)
	}
	return c.uncompress, nil
}

// Registered reports whether a codec is registered under m.
func Registered(m Method) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := registry[m]
	return ok
}
