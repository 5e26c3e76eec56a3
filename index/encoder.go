package index

import (
	"fmt"

	"github.com/arloliu/posidx/errs"
	"github.com/arloliu/posidx/internal/bitstream"
)

// encode writes the raw index payload: N slots of plan.FixedBitSize bits,
// the overflow entries, then zero padding to a byte boundary.
//
// buf must hold residuals, bottom the position of ordinal 0.
func encode(buf []int64, bottom int64, plan *Plan, code bitstream.Code) ([]byte, error) {
	f := int(plan.FixedBitSize)
	w := bitstream.NewWriter()

	if f > 0 {
		for _, r := range buf {
			w.WriteBits(slotBits(r, f), f)
		}
	}

	overflowPass(buf, bottom, func(nd overflowNode) {
		if nd.class > f {
			emitPair(w, code, nd.ordinal, nd.position)
		}
	})

	written := w.BitsWritten()
	payload := w.Finish()

	if written != plan.BitsWritten {
		return nil, fmt.Errorf("%w: wrote %d bits, planned %d", errs.ErrEncoderMismatch, written, plan.BitsWritten)
	}

	return payload, nil
}
