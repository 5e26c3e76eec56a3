package bitstream

import (
	"errors"
	"math/bits"

	"github.com/arloliu/posidx/format"
)

// ErrInvalidCode is returned when the stream does not hold a valid codeword.
var ErrInvalidCode = errors.New("bitstream: invalid codeword")

// Code is a self-delimiting code for integers >= 1.
type Code interface {
	// Type returns the coding identifier persisted in the stats record.
	Type() format.CodingType
	// Write appends the codeword of v to s. v must be >= 1.
	Write(s Sink, v uint64)
	// Read decodes one codeword at the reader's cursor.
	Read(r *Reader) (uint64, error)
}

// CodeFor returns the Code registered for a coding identifier.
func CodeFor(c format.CodingType) (Code, bool) {
	switch c {
	case format.CodingFibonacci:
		return Fibonacci{}, true
	case format.CodingEliasDelta:
		return EliasDelta{}, true
	default:
		return nil, false
	}
}

// fibs holds the Fibonacci numbers 1, 2, 3, 5, ... that fit in a uint64.
var fibs = func() []uint64 {
	f := []uint64{1, 2}
	for {
		a, b := f[len(f)-2], f[len(f)-1]
		next, carry := bits.Add64(a, b, 0)
		if carry != 0 {
			return f
		}
		f = append(f, next)
	}
}()

// Fibonacci is the Fibonacci (Zeckendorf) code. The codeword lists the
// Zeckendorf digits from the smallest term up and ends with an extra 1, so
// every codeword terminates with "11" and no other "11" occurs.
type Fibonacci struct{}

var _ Code = Fibonacci{}

func (Fibonacci) Type() format.CodingType { return format.CodingFibonacci }

func (Fibonacci) Write(s Sink, v uint64) {
	if v == 0 {
		panic("bitstream: Fibonacci code of zero")
	}

	top := len(fibs) - 1
	for fibs[top] > v {
		top--
	}

	// digits[i] is the Zeckendorf digit of fibs[i]; at most 92 digits.
	var digits [2]uint64
	rest := v
	for i := top; i >= 0; i-- {
		if fibs[i] <= rest {
			rest -= fibs[i]
			digits[i>>6] |= 1 << (i & 63)
		}
	}

	for i := 0; i <= top; i++ {
		s.WriteBits((digits[i>>6]>>(i&63))&1, 1)
	}
	s.WriteBits(1, 1)
}

func (Fibonacci) Read(r *Reader) (uint64, error) {
	var v uint64
	prev := false

	for i := 0; i <= len(fibs); i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit && prev {
			return v, nil
		}
		if bit {
			if i >= len(fibs) {
				return 0, ErrInvalidCode
			}
			var carry uint64
			v, carry = bits.Add64(v, fibs[i], 0)
			if carry != 0 {
				return 0, ErrInvalidCode
			}
		}
		prev = bit
	}

	return 0, ErrInvalidCode
}

// EliasDelta is the Elias delta code: the bit length N of v is written in
// Elias gamma, followed by the N-1 low bits of v.
type EliasDelta struct{}

var _ Code = EliasDelta{}

func (EliasDelta) Type() format.CodingType { return format.CodingEliasDelta }

func (EliasDelta) Write(s Sink, v uint64) {
	if v == 0 {
		panic("bitstream: Elias delta code of zero")
	}

	n := bits.Len64(v)
	l := bits.Len64(uint64(n))

	s.WriteBits(0, l-1)
	s.WriteBits(uint64(n), l)
	s.WriteBits(v, n-1)
}

func (EliasDelta) Read(r *Reader) (uint64, error) {
	zeros := 0
	for {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit {
			break
		}
		zeros++
		// A 64-bit length needs a 7-bit gamma prefix.
		if zeros > 6 {
			return 0, ErrInvalidCode
		}
	}

	low, err := r.ReadBits(zeros)
	if err != nil {
		return 0, err
	}
	n := int(1<<zeros | low)
	if n > 64 {
		return 0, ErrInvalidCode
	}

	rest, err := r.ReadBits(n - 1)
	if err != nil {
		return 0, err
	}

	return 1<<(n-1) | rest, nil
}
