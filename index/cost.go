package index

import "github.com/arloliu/posidx/internal/bitstream"

// overflowNode is a candidate entry of the overflow section.
type overflowNode struct {
	ordinal  int64
	position int64
	class    int
	depth    int
}

// overflowPass enumerates the candidate entries of the overflow section in
// section order: ordinal 0, then ordinal N-1 (when N >= 2), then every
// midpoint in split-tree preorder. An entry is written when its class
// exceeds the fixed bit size, so anchors are always written.
//
// buf must hold residuals produced by residualTransform and bottom the
// position of ordinal 0.
func overflowPass(buf []int64, bottom int64, visit func(overflowNode)) {
	n := int64(len(buf))
	if n == 0 {
		return
	}

	top := bottom
	visit(overflowNode{ordinal: 0, position: bottom, class: anchorClass})
	if n >= 2 {
		top = buf[n-1]
		visit(overflowNode{ordinal: n - 1, position: top, class: anchorClass})
	}

	_ = walkSplits(n, bottom, top, func(s split) (int64, error) {
		r := buf[s.mid]
		pm := s.estimate() + r
		visit(overflowNode{ordinal: s.mid, position: pm, class: widthClass(r), depth: s.depth})

		return pm, nil
	})
}

// emitPair writes one overflow entry. The optimizer runs it against a
// bitstream.Counter and the encoder against a bitstream.Writer, so planned
// and written sizes agree bit for bit.
func emitPair(sink bitstream.Sink, code bitstream.Code, ordinal, position int64) {
	code.Write(sink, uint64(ordinal)+1)  //nolint:gosec // ordinal >= 0
	code.Write(sink, uint64(position)+1) //nolint:gosec // position >= 0
}
