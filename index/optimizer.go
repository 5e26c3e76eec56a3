package index

import "github.com/arloliu/posidx/internal/bitstream"

// Plan is the outcome of width optimization for one build.
type Plan struct {
	// FixedBitSize is the chosen slot width F.
	FixedBitSize uint8
	// BitsWritten is the exact encoded size for FixedBitSize, in bits.
	BitsWritten int64
	// RecordCount is the number of records N.
	RecordCount int64
	// Histogram counts midpoints per width class.
	Histogram [numClasses]int64
	// OverflowCost holds the overflow section bits contributed by each
	// width class. The last element holds the anchors.
	OverflowCost [anchorClass + 1]int64
	// OverflowNodes is the number of midpoints routed to the overflow
	// section at FixedBitSize. Anchors are not counted.
	OverflowNodes int64
	// TreeDepth is the number of levels of the split tree.
	TreeDepth int
}

// Cost returns the exact encoded size in bits if the slot width were f:
// f*N plus the overflow entries of every class above f.
func (p *Plan) Cost(f int) int64 {
	f = max(f, 0)
	total := int64(f) * p.RecordCount
	for c := f + 1; c <= anchorClass; c++ {
		total += p.OverflowCost[c]
	}

	return total
}

// OverflowNodesAt returns the number of midpoints that overflow at width f.
func (p *Plan) OverflowNodesAt(f int) int64 {
	var count int64
	for c := max(f+1, 0); c < numClasses; c++ {
		count += p.Histogram[c]
	}

	return count
}

// optimize computes every candidate cost in one counting pass and picks
// the cheapest width, the smallest one on ties. A forced width >= 0 skips
// the selection. N <= 1 always yields width 0 unless forced, and N == 0
// always yields width 0.
func optimize(buf []int64, bottom int64, hist [numClasses]int64, code bitstream.Code, forced int) Plan {
	n := int64(len(buf))
	plan := Plan{RecordCount: n, Histogram: hist}

	var counter bitstream.Counter
	overflowPass(buf, bottom, func(nd overflowNode) {
		counter.Reset()
		emitPair(&counter, code, nd.ordinal, nd.position)
		plan.OverflowCost[nd.class] += counter.BitsWritten()
		plan.TreeDepth = max(plan.TreeDepth, nd.depth)
	})

	best := 0
	switch {
	case n == 0:
	case forced >= 0:
		best = forced
	case n == 1:
	default:
		bestCost := plan.Cost(0)
		for f := 1; f < numClasses; f++ {
			if c := plan.Cost(f); c < bestCost {
				best, bestCost = f, c
			}
		}
	}

	plan.FixedBitSize = uint8(best) //nolint:gosec // best <= 64
	plan.BitsWritten = plan.Cost(best)
	plan.OverflowNodes = plan.OverflowNodesAt(best)

	return plan
}
