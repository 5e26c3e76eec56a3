// Package endian provides the byte order used to serialize position stats.
//
// The stats record stores a flag bit that selects little- or big-endian
// encoding for every multi-byte field after the flag word. The flag word
// itself is always little-endian so a reader can decode it before knowing
// the byte order.
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint64(buf, uint64(count))
//
// All functions in this package are safe for concurrent use. The returned
// engines are immutable and stateless.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// ForBigEndian returns the big-endian engine when big is true and the
// little-endian engine otherwise.
func ForBigEndian(big bool) EndianEngine {
	if big {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// PutInt64 stores a signed value with the engine's byte order.
func PutInt64(engine EndianEngine, b []byte, v int64) {
	engine.PutUint64(b, uint64(v)) //nolint:gosec // bit pattern preserved
}

// Int64 reads a signed value stored by PutInt64.
func Int64(engine EndianEngine, b []byte) int64 {
	return int64(engine.Uint64(b)) //nolint:gosec // bit pattern preserved
}
