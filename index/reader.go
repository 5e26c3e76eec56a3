package index

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/arloliu/posidx/compress"
	"github.com/arloliu/posidx/errs"
	"github.com/arloliu/posidx/internal/bitstream"
	"github.com/arloliu/posidx/internal/hash"
	"github.com/arloliu/posidx/section"
)

// maxPairBits bounds the size of one overflow entry: two codewords of at
// most 93 bits (a 92-digit Fibonacci codeword plus its terminator).
const maxPairBits = 2 * 93

// Reader answers position queries against an opened index.
type Reader struct {
	stats   section.PositionStats
	code    bitstream.Code
	payload []byte
	fixed   *bitstream.Reader

	// overflowed holds the ordinals of overflowed midpoints; overflowPos
	// holds their positions in ordinal order, so an ordinal's position is
	// at its rank minus one.
	overflowed  *roaring64.Bitmap
	overflowPos []int64
}

type overflowPair struct {
	ordinal  int64
	position int64
}

// Open validates an index against its stats and prepares it for queries.
//
// Open checks the stored size and checksum, decompresses the payload and
// decodes the overflow section once into an in-memory table. It also walks
// the split tree once and rejects any index whose slots, sentinels and
// overflow entries are not exactly what Build produces.
//
// Parameters:
//   - stats: Stats record of the index, already parsed
//   - file: Stored index file content
//   - opts: Reader options
//
// Returns:
//   - *Reader: Reader safe for concurrent use
//   - error: a *errs.CorruptIndexError if the pair cannot be trusted
func Open(stats section.PositionStats, file []byte, opts ...ReaderOption) (*Reader, error) {
	cfg, err := newReaderConfig(opts...)
	if err != nil {
		return nil, err
	}

	r, err := open(stats, file)
	if err != nil {
		cfg.logger.LogOpen(context.Background(), &stats, 0, err)
		return nil, err
	}
	cfg.logger.LogOpen(context.Background(), &stats, r.OverflowCount(), nil)

	return r, nil
}

func open(stats section.PositionStats, file []byte) (*Reader, error) {
	const op = "open index"

	if err := stats.Validate(); err != nil {
		return nil, errs.Corrupt(op, err)
	}
	if (stats.BitsWritten-stats.FixedSectionBits())/maxPairBits > stats.RecordCount {
		return nil, errs.Corruptf(op, errs.ErrInvalidStats, "%d bits is too large for %d records",
			stats.BitsWritten, stats.RecordCount)
	}
	if int64(len(file)) != stats.StoredSize {
		return nil, errs.Corruptf(op, errs.ErrTruncatedIndex, "stored %d bytes, stats record %d",
			len(file), stats.StoredSize)
	}
	if hash.Checksum(file) != stats.IndexChecksum {
		return nil, errs.Corrupt(op, errs.ErrChecksumMismatch)
	}

	code, ok := bitstream.CodeFor(stats.Coding)
	if !ok {
		return nil, errs.Corruptf(op, errs.ErrUnknownCoding, "%s", stats.Coding)
	}
	codec, err := compress.GetCodec(stats.Compression)
	if err != nil {
		return nil, errs.Corruptf(op, errs.ErrUnknownCompression, "%v", err)
	}

	payload, err := codec.Decompress(file, int(stats.PayloadSize()))
	if err != nil {
		return nil, errs.Corruptf(op, errs.ErrTruncatedIndex, "%v", err)
	}

	r := &Reader{
		stats:      stats,
		code:       code,
		payload:    payload,
		fixed:      bitstream.NewReader(payload, stats.BitsWritten),
		overflowed: roaring64.New(),
	}
	if err := r.loadOverflow(); err != nil {
		return nil, errs.Corrupt("decode overflow", err)
	}

	return r, nil
}

// loadOverflow validates the index and fills the overflow table.
func (r *Reader) loadOverflow() error {
	if err := r.checkPadding(); err != nil {
		return err
	}

	var pairs []overflowPair
	err := r.walk(func(ordinal, position int64, overflowed bool) {
		if overflowed {
			pairs = append(pairs, overflowPair{ordinal: ordinal, position: position})
		}
	})
	if err != nil {
		return err
	}

	// The anchors lead the walk and are answered from the stats record.
	pairs = pairs[min(r.stats.RecordCount, 2):]

	for _, p := range pairs {
		r.overflowed.Add(uint64(p.ordinal)) //nolint:gosec // ordinal >= 0
	}
	r.overflowed.RunOptimize()

	r.overflowPos = make([]int64, len(pairs))
	for _, p := range pairs {
		r.overflowPos[r.overflowed.Rank(uint64(p.ordinal))-1] = p.position //nolint:gosec // ordinal >= 0
	}

	return nil
}

// checkPadding rejects non-zero bits after BitsWritten in the last byte.
func (r *Reader) checkPadding() error {
	rem := r.stats.BitsWritten & 7
	if rem == 0 {
		return nil
	}

	last := r.payload[len(r.payload)-1]
	if last&(0xFF>>rem) != 0 {
		return fmt.Errorf("%w: non-zero padding", errs.ErrInvalidOverflow)
	}

	return nil
}

// walk decodes the whole index sequentially, consuming the overflow
// section in split-tree order, and calls emit for every ordinal: ordinal 0,
// ordinal N-1, then the midpoints in preorder. It validates the structure
// as it goes.
func (r *Reader) walk(emit func(ordinal, position int64, overflowed bool)) error {
	n := r.stats.RecordCount
	if n == 0 {
		return nil
	}

	f := int(r.stats.FixedBitSize)
	bottom, top := r.stats.BottomPosition, r.stats.TopPosition

	br := bitstream.NewReader(r.payload, r.stats.BitsWritten)
	if err := br.Seek(r.stats.FixedSectionBits()); err != nil {
		return fmt.Errorf("%w: fixed section exceeds payload", errs.ErrTruncatedIndex)
	}

	if err := r.expectAnchor(br, 0, bottom, 0); err != nil {
		return err
	}
	emit(0, bottom, true)

	if n >= 2 {
		if err := r.expectAnchor(br, n-1, top, slotBits(top, f)); err != nil {
			return err
		}
		emit(n-1, top, true)
	}

	pending, ok, err := r.nextPair(br)
	if err != nil {
		return err
	}

	err = walkSplits(n, bottom, top, func(s split) (int64, error) {
		slot, err := r.slot(s.mid)
		if err != nil {
			return 0, err
		}

		est := s.estimate()
		overflowed := ok && pending.ordinal == s.mid

		var pm int64
		if overflowed {
			pm = pending.position
			if f > 0 && slot != sentinel(f) {
				return 0, fmt.Errorf("%w: ordinal %d has an entry but no sentinel", errs.ErrInvalidOverflow, s.mid)
			}
			if pm >= s.plo && pm <= s.phi && widthClass(pm-est) <= f {
				return 0, fmt.Errorf("%w: ordinal %d fits the fixed section", errs.ErrInvalidOverflow, s.mid)
			}
			if pending, ok, err = r.nextPair(br); err != nil {
				return 0, err
			}
		} else {
			if f > 0 && slot == sentinel(f) {
				return 0, fmt.Errorf("%w: sentinel at ordinal %d without entry", errs.ErrInvalidOverflow, s.mid)
			}
			pm = est + signExtend(slot, f)
		}

		if pm < s.plo || pm > s.phi {
			return 0, fmt.Errorf("%w: ordinal %d decodes to %d outside [%d, %d]",
				errs.ErrPositionDecreasing, s.mid, pm, s.plo, s.phi)
		}
		emit(s.mid, pm, overflowed)

		return pm, nil
	})
	if err != nil {
		return err
	}

	if ok {
		return fmt.Errorf("%w: unexpected entry for ordinal %d", errs.ErrInvalidOverflow, pending.ordinal)
	}

	return nil
}

// expectAnchor reads the next entry and checks it is the anchor at ordinal
// with the given position, and that the anchor's slot holds want.
func (r *Reader) expectAnchor(br *bitstream.Reader, ordinal, position int64, want uint64) error {
	p, ok, err := r.nextPair(br)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: missing anchor %d", errs.ErrInvalidOverflow, ordinal)
	}
	if p.ordinal != ordinal || p.position != position {
		return fmt.Errorf("%w: anchor (%d, %d), want (%d, %d)",
			errs.ErrInvalidOverflow, p.ordinal, p.position, ordinal, position)
	}

	slot, err := r.slot(ordinal)
	if err != nil {
		return err
	}
	if slot != want {
		return fmt.Errorf("%w: anchor slot %d holds %#x, want %#x", errs.ErrInvalidOverflow, ordinal, slot, want)
	}

	return nil
}

// nextPair reads one overflow entry. ok is false at the end of the section.
func (r *Reader) nextPair(br *bitstream.Reader) (overflowPair, bool, error) {
	if br.Remaining() == 0 {
		return overflowPair{}, false, nil
	}

	o, err := r.code.Read(br)
	if err != nil {
		return overflowPair{}, false, codeError(err)
	}
	p, err := r.code.Read(br)
	if err != nil {
		return overflowPair{}, false, codeError(err)
	}

	if o > uint64(r.stats.RecordCount) { //nolint:gosec // count >= 0
		return overflowPair{}, false, fmt.Errorf("%w: overflow ordinal %d", errs.ErrOrdinalOutOfRange, o-1)
	}
	if p-1 > math.MaxInt64 {
		return overflowPair{}, false, fmt.Errorf("%w: overflow position %d", errs.ErrInvalidOverflow, p-1)
	}

	return overflowPair{ordinal: int64(o - 1), position: int64(p - 1)}, true, nil //nolint:gosec // range checked
}

func codeError(err error) error {
	if errors.Is(err, bitstream.ErrShortRead) {
		return fmt.Errorf("%w: %w", errs.ErrTruncatedIndex, err)
	}

	return fmt.Errorf("%w: %w", errs.ErrInvalidOverflow, err)
}

// slot returns the raw fixed-section field of ordinal.
func (r *Reader) slot(ordinal int64) (uint64, error) {
	f := int(r.stats.FixedBitSize)
	v, err := r.fixed.ReadBitsAt(ordinal*int64(f), f)
	if err != nil {
		return 0, fmt.Errorf("%w: slot %d", errs.ErrTruncatedIndex, ordinal)
	}

	return v, nil
}

// Lookup returns the position of ordinal.
//
// It descends the split tree from the root, reading one slot or overflow
// table entry per level, O(log N).
//
// Returns:
//   - int64: Exact position of the record
//   - error: errs.ErrOrdinalOutOfRange if ordinal is not in [0, N)
func (r *Reader) Lookup(ordinal int64) (int64, error) {
	n := r.stats.RecordCount
	if ordinal < 0 || ordinal >= n {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrOrdinalOutOfRange, ordinal, n)
	}
	if ordinal == 0 {
		return r.stats.BottomPosition, nil
	}
	if ordinal == n-1 {
		return r.stats.TopPosition, nil
	}

	f := int(r.stats.FixedBitSize)
	lo, hi := int64(0), n-1
	plo, phi := r.stats.BottomPosition, r.stats.TopPosition

	for {
		mid := lo + (hi-lo)/2

		var pm int64
		if r.overflowed.Contains(uint64(mid)) { //nolint:gosec // mid > 0
			pm = r.overflowPos[r.overflowed.Rank(uint64(mid))-1] //nolint:gosec // mid > 0
		} else {
			slot, err := r.slot(mid)
			if err != nil {
				return 0, errs.Corrupt("lookup", err)
			}
			pm = floorAvg(plo, phi) + signExtend(slot, f)
		}

		switch {
		case ordinal == mid:
			return pm, nil
		case ordinal < mid:
			hi, phi = mid, pm
		default:
			lo, plo = mid, pm
		}
	}
}

// DecodeAll returns the positions of all records.
//
// It makes one sequential pass over the index that consumes the overflow
// section in split-tree order and does not use the overflow table.
func (r *Reader) DecodeAll() ([]int64, error) {
	out := make([]int64, r.stats.RecordCount)
	err := r.walk(func(ordinal, position int64, _ bool) {
		out[ordinal] = position
	})
	if err != nil {
		return nil, errs.Corrupt("decode all", err)
	}

	return out, nil
}

// All returns an iterator over (ordinal, position) pairs in ordinal order.
// Open has validated the index, so decoding does not fail.
func (r *Reader) All() iter.Seq2[int64, int64] {
	return func(yield func(int64, int64) bool) {
		positions, err := r.DecodeAll()
		if err != nil {
			return
		}
		for i, p := range positions {
			if !yield(int64(i), p) {
				return
			}
		}
	}
}

// Len returns the number of records.
func (r *Reader) Len() int64 {
	return r.stats.RecordCount
}

// Stats returns the stats record of the index.
func (r *Reader) Stats() section.PositionStats {
	return r.stats
}

// OverflowCount returns the number of overflowed midpoints.
func (r *Reader) OverflowCount() int64 {
	return int64(r.overflowed.GetCardinality()) //nolint:gosec // bounded by N
}

// FixedBitSize returns the slot width of the index.
func (r *Reader) FixedBitSize() uint8 {
	return r.stats.FixedBitSize
}
