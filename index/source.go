package index

import "iter"

// Source supplies the records of one stream to Build.
//
// Count must be known before the build starts. Positions makes a single
// forward pass yielding (ordinal, position) pairs with ordinals 0..N-1 in
// order and non-decreasing, non-negative positions.
type Source interface {
	Count() int64
	Positions() iter.Seq2[int64, int64]
}

type sliceSource []int64

// SliceSource returns a Source over an in-memory position table.
// The slice is not copied and must not change during the build.
func SliceSource(positions []int64) Source {
	return sliceSource(positions)
}

func (s sliceSource) Count() int64 {
	return int64(len(s))
}

func (s sliceSource) Positions() iter.Seq2[int64, int64] {
	return func(yield func(int64, int64) bool) {
		for i, p := range s {
			if !yield(int64(i), p) {
				return
			}
		}
	}
}

type lengthSource struct {
	lengths []int64
	base    int64
}

// LengthSource returns a Source of record offsets computed from record
// lengths: record i starts at base plus the lengths of records 0..i-1.
//
// A negative length makes the offsets decrease and fails the build.
func LengthSource(lengths []int64, base int64) Source {
	return lengthSource{lengths: lengths, base: base}
}

func (s lengthSource) Count() int64 {
	return int64(len(s.lengths))
}

func (s lengthSource) Positions() iter.Seq2[int64, int64] {
	return func(yield func(int64, int64) bool) {
		pos := s.base
		for i, l := range s.lengths {
			if !yield(int64(i), pos) {
				return
			}
			pos += l
		}
	}
}

type seqSource struct {
	count int64
	seq   iter.Seq2[int64, int64]
}

// SeqSource wraps an arbitrary iterator that is expected to yield count pairs.
func SeqSource(count int64, seq iter.Seq2[int64, int64]) Source {
	return seqSource{count: count, seq: seq}
}

func (s seqSource) Count() int64 {
	return s.count
}

func (s seqSource) Positions() iter.Seq2[int64, int64] {
	return s.seq
}
