package bitstream

import (
	"encoding/binary"

	"github.com/arloliu/posidx/internal/pool"
)

// Sink receives a stream of bits.
type Sink interface {
	// WriteBits appends the numBits least significant bits of value, most significant first.
	// numBits must be in 0..64.
	WriteBits(value uint64, numBits int)
	// BitsWritten returns the number of bits appended so far.
	BitsWritten() int64
}

// Writer packs bits into a pooled byte buffer.
type Writer struct {
	bitBuf   uint64 // pending bits, right-aligned
	bitCount int    // number of valid bits in bitBuf
	total    int64
	buf      *pool.ByteBuffer
}

var _ Sink = (*Writer)(nil)

// NewWriter creates a writer backed by a buffer from the index pool.
// Finish must be called to obtain the bytes and release the buffer.
func NewWriter() *Writer {
	return &Writer{buf: pool.GetIndexBuffer()}
}

// WriteBits appends the numBits least significant bits of value.
func (w *Writer) WriteBits(value uint64, numBits int) {
	if w.buf == nil {
		panic("bitstream: write after Finish")
	}
	if numBits == 0 {
		return
	}

	if numBits < 64 {
		value &= (1 << numBits) - 1
	}
	w.total += int64(numBits)

	available := 64 - w.bitCount
	if numBits <= available {
		w.bitBuf = (w.bitBuf << numBits) | value
		w.bitCount += numBits

		if w.bitCount == 64 {
			w.flushBits()
		}

		return
	}

	// Split across the word boundary: high part completes the current word.
	highBits := numBits - available
	w.bitBuf = (w.bitBuf << available) | (value >> highBits)
	w.bitCount = 64
	w.flushBits()

	w.bitBuf = value & ((1 << highBits) - 1)
	w.bitCount = highBits
}

// BitsWritten returns the number of bits written so far.
func (w *Writer) BitsWritten() int64 {
	return w.total
}

// Finish flushes pending bits, pads the last byte with zeros and returns a
// copy of the packed bytes. The writer cannot be used afterwards.
func (w *Writer) Finish() []byte {
	if w.buf == nil {
		panic("bitstream: Finish called twice")
	}

	w.flushBits()
	out := make([]byte, w.buf.Len())
	copy(out, w.buf.Bytes())

	pool.PutIndexBuffer(w.buf)
	w.buf = nil

	return out
}

// flushBits moves the pending bits to the byte buffer, left-aligned.
func (w *Writer) flushBits() {
	if w.bitCount == 0 {
		return
	}

	numBytes := (w.bitCount + 7) / 8
	aligned := w.bitBuf << (64 - w.bitCount)

	start := w.buf.Len()
	w.buf.ExtendOrGrow(numBytes)
	bs := w.buf.Slice(start, start+numBytes)

	if numBytes == 8 {
		binary.BigEndian.PutUint64(bs, aligned)
	} else {
		for i := range numBytes {
			bs[i] = byte(aligned >> (56 - i*8))
		}
	}

	w.bitBuf = 0
	w.bitCount = 0
}

// Counter is a length-only Sink.
type Counter struct {
	bits int64
}

var _ Sink = (*Counter)(nil)

// WriteBits records numBits without storing them.
func (c *Counter) WriteBits(_ uint64, numBits int) {
	c.bits += int64(numBits)
}

// BitsWritten returns the number of bits counted since the last Reset.
func (c *Counter) BitsWritten() int64 {
	return c.bits
}

// Reset sets the count back to zero.
func (c *Counter) Reset() {
	c.bits = 0
}
