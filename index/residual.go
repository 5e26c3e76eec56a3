package index

import (
	"math/bits"

	"github.com/arloliu/posidx/section"
)

// numClasses is the number of width classes a residual can have, 0 to 64.
const numClasses = section.MaxFixedBitSize + 1

// anchorClass is the pseudo width class of the root anchors. It exceeds
// every fixed bit size, so anchors always go to the overflow section.
const anchorClass = numClasses

// widthClass returns the smallest slot width that holds r as a non-sentinel
// two's complement value: 0 for 0, otherwise the magnitude bits plus a sign bit.
// r must not be math.MinInt64.
func widthClass(r int64) int {
	if r == 0 {
		return 0
	}
	if r < 0 {
		r = -r
	}

	return bits.Len64(uint64(r)) + 1
}

// slotBits returns the f-bit field stored for residual r: r itself in two's
// complement, or the sentinel when r needs more than f bits.
func slotBits(r int64, f int) uint64 {
	if f == 0 {
		return 0
	}
	if widthClass(r) > f {
		return sentinel(f)
	}

	return uint64(r) & fieldMask(f) //nolint:gosec // two's complement bit pattern
}

// sentinel returns the most negative f-bit pattern, which no residual of
// class <= f can produce. f must be >= 1.
func sentinel(f int) uint64 {
	return 1 << (f - 1)
}

func fieldMask(f int) uint64 {
	if f >= 64 {
		return ^uint64(0)
	}

	return (1 << f) - 1
}

// signExtend interprets the low f bits of v as a two's complement value.
func signExtend(v uint64, f int) int64 {
	if f == 0 {
		return 0
	}
	shift := 64 - f

	return int64(v<<shift) >> shift //nolint:gosec // two's complement bit pattern
}

// residualTransform replaces the positions in buf with interpolation
// residuals, in place. buf must be non-decreasing and non-negative.
//
// Every midpoint slot receives its residual. Slot 0 is zeroed while slot
// N-1 keeps the raw top position; both are anchors, recovered from the
// overflow section and the stats record rather than from their slots.
//
// Returns the number of midpoints per width class.
func residualTransform(buf []int64) [numClasses]int64 {
	var hist [numClasses]int64

	n := int64(len(buf))
	if n == 0 {
		return hist
	}

	_ = walkSplits(n, buf[0], buf[n-1], func(s split) (int64, error) {
		pm := buf[s.mid]
		r := pm - s.estimate()
		buf[s.mid] = r
		hist[widthClass(r)]++

		return pm, nil
	})
	buf[0] = 0

	return hist
}
