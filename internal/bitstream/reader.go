package bitstream

import "errors"

// ErrShortRead is returned when a read would cross the end of the stream.
var ErrShortRead = errors.New("bitstream: read past end of stream")

// Reader reads MSB-first bit fields from a byte slice.
//
// It supports random access with ReadBitsAt and sequential reads from an
// internal cursor. Reads never cross limit, the logical length in bits,
// so zero padding in the last byte is never interpreted.
type Reader struct {
	data  []byte
	limit int64
	pos   int64
}

// NewReader creates a reader over the first limitBits bits of data.
// limitBits is clamped to the bits available in data.
func NewReader(data []byte, limitBits int64) *Reader {
	maxBits := int64(len(data)) * 8
	if limitBits < 0 || limitBits > maxBits {
		limitBits = maxBits
	}

	return &Reader{data: data, limit: limitBits}
}

// Limit returns the logical length of the stream in bits.
func (r *Reader) Limit() int64 {
	return r.limit
}

// Pos returns the cursor position in bits.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Remaining returns the number of bits between the cursor and the limit.
func (r *Reader) Remaining() int64 {
	return r.limit - r.pos
}

// Seek moves the cursor to an absolute bit offset.
func (r *Reader) Seek(off int64) error {
	if off < 0 || off > r.limit {
		return ErrShortRead
	}
	r.pos = off

	return nil
}

// ReadBitsAt returns numBits bits starting at bit offset off, right-aligned.
// It does not move the cursor. numBits must be in 0..64.
func (r *Reader) ReadBitsAt(off int64, numBits int) (uint64, error) {
	if numBits == 0 {
		return 0, nil
	}
	if off < 0 || off+int64(numBits) > r.limit {
		return 0, ErrShortRead
	}

	byteIdx := off >> 3
	avail := 8 - int(off&7)
	take := min(avail, numBits)

	v := uint64(r.data[byteIdx]>>(avail-take)) & ((1 << take) - 1)
	remaining := numBits - take
	byteIdx++

	for remaining >= 8 {
		v = v<<8 | uint64(r.data[byteIdx])
		byteIdx++
		remaining -= 8
	}
	if remaining > 0 {
		v = v<<remaining | uint64(r.data[byteIdx]>>(8-remaining))
	}

	return v, nil
}

// ReadBits reads numBits bits at the cursor and advances it.
func (r *Reader) ReadBits(numBits int) (uint64, error) {
	v, err := r.ReadBitsAt(r.pos, numBits)
	if err != nil {
		return 0, err
	}
	r.pos += int64(numBits)

	return v, nil
}

// ReadBit reads one bit at the cursor.
func (r *Reader) ReadBit() (bool, error) {
	v, err := r.ReadBits(1)
	return v == 1, err
}
