// Package index builds and decodes compact positional indexes.
//
// A positional index maps the ordinal of a record in an append-only stream
// to its byte offset. Offsets of real streams grow almost linearly, so the
// index stores them as residuals of a recursive midpoint interpolation
// rather than as raw values:
//
//  1. Residual transform: the range [0, N-1] is split at its midpoint,
//     the midpoint's position is replaced by its deviation from the floor
//     average of the two range ends, and both halves are split again.
//  2. Width optimization: one fixed slot width F is chosen so that N slots
//     of F bits plus the overflow entries for residuals that do not fit in
//     F bits take the fewest bits. The cost of every candidate F is exact.
//  3. Encoding: a fixed section of N two's complement slots (a sentinel
//     marks overflowed slots) followed by an overflow section of
//     self-delimiting (ordinal, position) pairs in split-tree preorder.
//     The two root anchors always lead the overflow section.
//
// Building:
//
//	built, err := index.Build(index.SliceSource(positions),
//	    index.WithCompression(format.CompressionZstd),
//	)
//
// Reading:
//
//	r, err := index.Open(built.Stats, built.Index)
//	pos, err := r.Lookup(42)
//
// Open validates the whole index once, so a Reader never returns an
// approximate position. A Reader is immutable and safe for concurrent use.
package index
