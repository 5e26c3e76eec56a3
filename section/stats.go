package section

import (
	"fmt"
	"io"

	"github.com/arloliu/posidx/endian"
	"github.com/arloliu/posidx/errs"
	"github.com/arloliu/posidx/format"
	"github.com/arloliu/posidx/internal/hash"
)

// PositionStats is the small record persisted next to an index file.
//
// It is populated in two phases during a build: RecordCount, BottomPosition
// and TopPosition after the input scan, FixedBitSize and BitsWritten after
// width optimization. StoredSize and IndexChecksum describe the index file
// as stored. The record must be read and validated before the index file is
// opened.
type PositionStats struct {
	// RecordCount is the number of records N. byte offset 8-15
	RecordCount int64
	// BottomPosition is the position of ordinal 0. byte offset 16-23
	BottomPosition int64
	// TopPosition is the position of ordinal N-1. byte offset 24-31
	TopPosition int64
	// BitsWritten is the exact bit length of the raw index payload. byte offset 32-39
	BitsWritten int64
	// StoredSize is the byte length of the stored index file. byte offset 40-47
	StoredSize int64
	// IndexChecksum is the xxHash64 of the stored index file. byte offset 48-55
	IndexChecksum uint64

	// FixedBitSize is the width of every fixed section slot, 0-64. byte offset 4
	FixedBitSize uint8
	// Coding identifies the code of the overflow section. byte offset 2
	Coding format.CodingType
	// Compression identifies the codec used for the stored index file. byte offset 3
	Compression format.CompressionType

	// Flag holds the magic number and byte order. byte offset 0-1
	Flag StatsFlag
}

// NewPositionStats returns empty stats with Fibonacci coding, no compression
// and little-endian byte order.
func NewPositionStats() *PositionStats {
	return &PositionStats{
		Flag:        NewStatsFlag(),
		Coding:      format.CodingFibonacci,
		Compression: format.CompressionNone,
	}
}

// PayloadSize returns the byte length of the raw (uncompressed) index payload.
func (s *PositionStats) PayloadSize() int64 {
	return (s.BitsWritten + 7) / 8
}

// FixedSectionBits returns the bit length of the fixed section.
func (s *PositionStats) FixedSectionBits() int64 {
	return s.RecordCount * int64(s.FixedBitSize)
}

// Validate checks the semantic consistency of the fields.
//
// Returns:
//   - error: nil, or a sentinel from errs describing the first violation
func (s *PositionStats) Validate() error {
	if err := s.Flag.Validate(); err != nil {
		return err
	}
	if !s.Coding.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrUnknownCoding, s.Coding)
	}
	if !s.Compression.IsValid() {
		return fmt.Errorf("%w: %d", errs.ErrUnknownCompression, s.Compression)
	}
	if s.FixedBitSize > MaxFixedBitSize {
		return fmt.Errorf("%w: %d", errs.ErrInvalidFixedBitSize, s.FixedBitSize)
	}
	if s.RecordCount < 0 || s.BitsWritten < 0 || s.StoredSize < 0 {
		return fmt.Errorf("%w: negative count or size", errs.ErrInvalidStats)
	}

	if s.RecordCount == 0 {
		if s.BottomPosition != 0 || s.TopPosition != 0 || s.BitsWritten != 0 || s.FixedBitSize != 0 {
			return fmt.Errorf("%w: empty index with non-zero fields", errs.ErrInvalidStats)
		}

		return nil
	}

	if s.BottomPosition < 0 || s.BottomPosition > s.TopPosition {
		return fmt.Errorf("%w: bottom %d, top %d", errs.ErrInvalidStats, s.BottomPosition, s.TopPosition)
	}
	if s.RecordCount == 1 && s.BottomPosition != s.TopPosition {
		return fmt.Errorf("%w: single record with bottom %d != top %d", errs.ErrInvalidStats, s.BottomPosition, s.TopPosition)
	}
	// Guard the multiplication below against overflow.
	if s.FixedBitSize > 0 && s.RecordCount > s.BitsWritten/int64(s.FixedBitSize) {
		return fmt.Errorf("%w: %d bits cannot hold %d fixed slots of %d bits",
			errs.ErrInvalidStats, s.BitsWritten, s.RecordCount, s.FixedBitSize)
	}

	return nil
}

// Bytes serializes the stats into a StatsSize byte record and seals it with
// a checksum of the preceding bytes.
func (s *PositionStats) Bytes() []byte {
	b := make([]byte, StatsSize)

	engine := s.Flag.GetEndianEngine()

	endian.GetLittleEndianEngine().PutUint16(b[offsetOptions:], s.Flag.Options)
	b[offsetCoding] = uint8(s.Coding)
	b[offsetCompression] = uint8(s.Compression)
	b[offsetFixedBitSize] = s.FixedBitSize
	endian.PutInt64(engine, b[offsetRecordCount:], s.RecordCount)
	endian.PutInt64(engine, b[offsetBottom:], s.BottomPosition)
	endian.PutInt64(engine, b[offsetTop:], s.TopPosition)
	endian.PutInt64(engine, b[offsetBitsWritten:], s.BitsWritten)
	endian.PutInt64(engine, b[offsetStoredSize:], s.StoredSize)
	engine.PutUint64(b[offsetIndexChecksum:], s.IndexChecksum)
	engine.PutUint64(b[offsetStatsChecksum:], hash.Checksum(b[:offsetStatsChecksum]))

	return b
}

// WriteTo writes the serialized record to w.
func (s *PositionStats) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.Bytes())
	return int64(n), err
}

// Parse parses and validates the stats from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the record (must be exactly StatsSize bytes)
//
// Returns:
//   - error: a *errs.CorruptIndexError on any size, checksum or consistency failure
func (s *PositionStats) Parse(data []byte) error {
	const op = "parse stats"

	if len(data) != StatsSize {
		return errs.Corruptf(op, errs.ErrInvalidStatsSize, "got %d bytes, want %d", len(data), StatsSize)
	}

	flag := StatsFlag{Options: endian.GetLittleEndianEngine().Uint16(data[offsetOptions:])}
	if err := flag.Validate(); err != nil {
		return errs.Corrupt(op, err)
	}

	engine := flag.GetEndianEngine()
	if engine.Uint64(data[offsetStatsChecksum:]) != hash.Checksum(data[:offsetStatsChecksum]) {
		return errs.Corrupt(op, errs.ErrChecksumMismatch)
	}
	for _, r := range data[offsetReserved:offsetRecordCount] {
		if r != 0 {
			return errs.Corrupt(op, errs.ErrInvalidStatsFlags)
		}
	}

	parsed := PositionStats{
		Flag:           flag,
		Coding:         format.CodingType(data[offsetCoding]),
		Compression:    format.CompressionType(data[offsetCompression]),
		FixedBitSize:   data[offsetFixedBitSize],
		RecordCount:    endian.Int64(engine, data[offsetRecordCount:]),
		BottomPosition: endian.Int64(engine, data[offsetBottom:]),
		TopPosition:    endian.Int64(engine, data[offsetTop:]),
		BitsWritten:    endian.Int64(engine, data[offsetBitsWritten:]),
		StoredSize:     endian.Int64(engine, data[offsetStoredSize:]),
		IndexChecksum:  engine.Uint64(data[offsetIndexChecksum:]),
	}
	if err := parsed.Validate(); err != nil {
		return errs.Corrupt(op, err)
	}

	*s = parsed

	return nil
}

// ParsePositionStats parses a PositionStats from a byte slice.
//
// Returns:
//   - PositionStats: Parsed stats
//   - error: a *errs.CorruptIndexError if the record cannot be trusted
func ParsePositionStats(data []byte) (PositionStats, error) {
	var s PositionStats
	if err := s.Parse(data); err != nil {
		return PositionStats{}, err
	}

	return s, nil
}

// ReadPositionStats reads exactly one record from r.
// A short read is reported as a truncated, corrupt record.
func ReadPositionStats(r io.Reader) (PositionStats, error) {
	b := make([]byte, StatsSize)
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return PositionStats{}, errs.Corruptf("read stats", errs.ErrInvalidStatsSize, "%v", err)
		}

		return PositionStats{}, err
	}

	return ParsePositionStats(b)
}
