// Package errs defines the errors returned by posidx.
//
// Build-time input violations are reported with plain sentinel errors wrapped
// with context. Any failure to read back a persisted index is reported as a
// *CorruptIndexError, which always matches ErrCorruptIndex with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

// Build errors.
var (
	ErrOrdinalOutOfOrder   = errors.New("ordinal out of order")
	ErrPositionDecreasing  = errors.New("position decreasing")
	ErrNegativePosition    = errors.New("negative position")
	ErrCountMismatch       = errors.New("record count mismatch")
	ErrInvalidCount        = errors.New("invalid record count")
	ErrInvalidFixedBitSize = errors.New("invalid fixed bit size")
	ErrInvalidCoding       = errors.New("invalid coding")
	ErrInvalidCompression  = errors.New("invalid compression")
	ErrEncoderMismatch     = errors.New("encoded size differs from cost model")
)

// Read errors.
var (
	ErrCorruptIndex       = errors.New("corrupt index")
	ErrInvalidStatsSize   = errors.New("invalid stats size")
	ErrInvalidMagicNumber = errors.New("invalid magic number")
	ErrInvalidStatsFlags  = errors.New("invalid stats flags")
	ErrInvalidStats       = errors.New("invalid stats values")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrUnknownCoding      = errors.New("unknown coding")
	ErrUnknownCompression = errors.New("unknown compression")
	ErrTruncatedIndex     = errors.New("truncated index")
	ErrInvalidOverflow    = errors.New("invalid overflow section")
	ErrOrdinalOutOfRange  = errors.New("ordinal out of range")
)

// CorruptIndexError reports a persisted stats record or index file that
// cannot be trusted. The caller must rebuild the index.
type CorruptIndexError struct {
	// Op names the step that detected the corruption, e.g. "parse stats".
	Op string
	// Err is the underlying cause.
	Err error
}

func (e *CorruptIndexError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", ErrCorruptIndex, e.Err)
	}

	return fmt.Sprintf("%s: %s: %v", ErrCorruptIndex, e.Op, e.Err)
}

func (e *CorruptIndexError) Unwrap() error {
	return e.Err
}

// Is makes every CorruptIndexError match ErrCorruptIndex.
func (e *CorruptIndexError) Is(target error) bool {
	return target == ErrCorruptIndex
}

// Corrupt wraps err into a *CorruptIndexError for op.
func Corrupt(op string, err error) error {
	return &CorruptIndexError{Op: op, Err: err}
}

// Corruptf wraps a formatted cause around a sentinel into a *CorruptIndexError.
func Corruptf(op string, sentinel error, format string, args ...any) error {
	return &CorruptIndexError{Op: op, Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}
