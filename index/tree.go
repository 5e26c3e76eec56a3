package index

import "math/bits"

// floorAvg returns floor((a+b)/2) for non-negative a and b without overflow.
func floorAvg(a, b int64) int64 {
	return (a >> 1) + (b >> 1) + (a & b & 1)
}

// split is one midpoint of the split tree over [0, N-1].
type split struct {
	lo, mid, hi int64
	// plo and phi are the absolute positions at lo and hi.
	plo, phi int64
	// depth is 1 for the root midpoint.
	depth int
}

// estimate returns the interpolated position of the midpoint.
func (s split) estimate() int64 {
	return floorAvg(s.plo, s.phi)
}

type splitFrame struct {
	lo, hi   int64
	plo, phi int64
	depth    int
}

// walkSplits visits every midpoint of the split tree over [0, n-1] in
// preorder: a range before its left half, the left half before the right.
//
// visit returns the absolute position at the midpoint, which becomes the
// right end of the left half and the left end of the right half. The walk
// stops at the first error returned by visit.
//
// The stack never holds more than one frame per tree level plus one.
func walkSplits(n, bottom, top int64, visit func(split) (int64, error)) error {
	if n < 3 {
		return nil
	}

	stack := make([]splitFrame, 1, bits.Len64(uint64(n))+2)
	stack[0] = splitFrame{lo: 0, hi: n - 1, plo: bottom, phi: top, depth: 1}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		mid := f.lo + (f.hi-f.lo)/2
		pm, err := visit(split{lo: f.lo, mid: mid, hi: f.hi, plo: f.plo, phi: f.phi, depth: f.depth})
		if err != nil {
			return err
		}

		if f.hi-mid > 1 {
			stack = append(stack, splitFrame{lo: mid, hi: f.hi, plo: pm, phi: f.phi, depth: f.depth + 1})
		}
		if mid-f.lo > 1 {
			stack = append(stack, splitFrame{lo: f.lo, hi: mid, plo: f.plo, phi: pm, depth: f.depth + 1})
		}
	}

	return nil
}
