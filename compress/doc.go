// Package compress provides the codecs used to store position index files at rest.
//
// An index payload is already dense: the fixed section packs one narrow
// residual per record and the overflow section uses a universal code. A
// general-purpose codec still helps when residuals repeat (fixed record
// sizes produce long runs of zero slots), so the stored index file may be
// compressed with one of:
//   - None: the payload is stored as is
//   - Zstd: best ratio
//   - S2: balanced speed and ratio
//   - LZ4: fastest decompression
//
// The codec is recorded in the stats record so a reader can pick the
// matching decompressor.
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	stored, err := codec.Compress(payload)
//	payload, err = codec.Decompress(stored, len(payload))
//
// The decompressor is given the expected decoded size. Every codec fails if
// the decoded data does not have exactly that size, so a stored file that
// decodes to the wrong length is never handed to the index decoder.
//
// Zstd uses the pure Go implementation from klauspost/compress by default.
// Building with the zstd_cgo tag (and cgo enabled) switches to valyala/gozstd.
//
// All codecs are stateless values and safe for concurrent use.
package compress
