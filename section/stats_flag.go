package section

import (
	"github.com/arloliu/posidx/endian"
	"github.com/arloliu/posidx/errs"
)

// StatsFlag is the packed option word at the start of the stats record.
//
// Bit 1 is the endianness flag, 0 means little-endian, 1 means big-endian.
// Bits 0, 2 and 3 are reserved and must be 0.
// Bits 4-15 hold the magic number (0xEC10 for version 1).
// The word itself is always stored little-endian.
type StatsFlag struct {
	Options uint16
}

// NewStatsFlag returns a version 1 little-endian flag.
func NewStatsFlag() StatsFlag {
	return StatsFlag{Options: MagicPositionStatsV1}
}

// IsLittleEndian returns whether the record fields are little-endian.
func (f StatsFlag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the record fields are big-endian.
func (f StatsFlag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *StatsFlag) WithLittleEndian() {
	f.Options &^= EndiannessMask
}

// WithBigEndian sets big-endian byte order.
func (f *StatsFlag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// GetMagicNumber returns the magic number from the Options field.
func (f StatsFlag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// Validate checks magic number and reserved bits.
func (f StatsFlag) Validate() error {
	if f.GetMagicNumber() != MagicPositionStatsV1 {
		return errs.ErrInvalidMagicNumber
	}
	if f.Options&ReservedBitsMask != 0 {
		return errs.ErrInvalidStatsFlags
	}

	return nil
}

// GetEndianEngine returns the engine for the record's byte order.
func (f StatsFlag) GetEndianEngine() endian.EndianEngine {
	return endian.ForBigEndian(f.IsBigEndian())
}
