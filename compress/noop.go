package compress

import "github.com/arloliu/posidx/format"

// NoOpCompressor stores the payload unchanged.
//
// It is the default codec: an index payload is already bit-packed, and for
// streams of uneven record sizes a general-purpose codec rarely pays off.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Type returns format.CompressionNone.
func (c NoOpCompressor) Type() format.CompressionType {
	return format.CompressionNone
}

// Compress returns the input slice as is, without copying.
//
// The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice as is after checking its size.
func (c NoOpCompressor) Decompress(data []byte, size int) ([]byte, error) {
	return checkSize(data, size)
}
