// Package listfile implements the block-framed, checksummed, optionally
// compressed append-only record log described by the list file format:
// a Writer streams arbitrary byte-slice records into fixed-size blocks
// of CRC32C-protected frames, fragmenting oversized records and packing
// runs of small ones into ARRAY frames, and a Reader replays them back
// in order, recovering from block-local corruption without losing the
// rest of the file.
package listfile
