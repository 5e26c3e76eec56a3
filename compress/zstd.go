package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/posidx/format"
)

// ZstdCompressor provides Zstandard compression.
//
// The implementation is selected at build time, see zstd_pure.go and
// zstd_cgo.go. Both produce standard zstd frames, so files written by one
// are readable by the other.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(payload)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Type returns format.CompressionZstd.
func (c ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}

// frameCapacity returns the output capacity to reserve for a zstd frame
// expected to decode to size bytes. A frame header that declares another
// content size is rejected before any output is allocated. Frames without
// a declared size get no reservation and grow with their real content.
func frameCapacity(data []byte, size int) (int, error) {
	var h zstd.Header
	if err := h.Decode(data); err != nil {
		return 0, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if !h.HasFCS {
		return 0, nil
	}
	if size < 0 || h.FrameContentSize != uint64(size) {
		return 0, fmt.Errorf("%w: frame says %d bytes, want %d", ErrSizeMismatch, h.FrameContentSize, size)
	}

	return size, nil
}
