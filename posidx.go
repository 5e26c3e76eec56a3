// Package posidx builds compact positional indexes for append-only record streams.
//
// A positional index maps the ordinal of a record to its byte offset in the
// stream. Because offsets usually grow almost linearly, posidx stores them
// as midpoint interpolation residuals in a fixed-width section, with an
// exactly sized overflow section for the residuals that do not fit. The
// slot width is chosen to minimize the encoded size.
//
// # Core Features
//
//   - Exact reconstruction: every lookup returns the stored position or an error
//   - Optimal slot width under an exact cost model
//   - O(log N) lookups after a single validating open
//   - Fibonacci or Elias delta coding of overflow entries
//   - Optional at-rest compression (None, Zstd, S2, LZ4)
//   - xxHash64 checksums over the stats record and the index file
//   - Atomic replacement of the stats/index file pair on rebuild
//
// # Basic Usage
//
// Building and querying in memory:
//
//	built, _ := posidx.BuildPositions([]int64{0, 100, 200, 300, 400})
//	r, _ := posidx.Open(built.Stats.Bytes(), built.Index)
//	pos, _ := r.Lookup(3) // 300
//
// Persisting and loading:
//
//	_ = posidx.Save(dir, "segment-0001", built)
//	r, _ := posidx.Load(dir, "segment-0001")
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the index,
// section and persist packages. For fine-grained control, use the index
// package directly.
package posidx

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/arloliu/posidx/errs"
	"github.com/arloliu/posidx/format"
	"github.com/arloliu/posidx/index"
	"github.com/arloliu/posidx/persist"
	"github.com/arloliu/posidx/section"
)

// loadAttempts bounds the retries of Load when a concurrent Save swaps the
// files between reading the stats record and the index file.
const loadAttempts = 3

var defaultBuildOptions = []index.BuildOption{
	index.WithLittleEndian(),
	index.WithCoding(format.CodingFibonacci),
	index.WithCompression(format.CompressionNone),
}

// Build builds an index from src with the default options, then opts.
//
// Defaults: Fibonacci coding, no compression, little-endian stats record.
//
// Parameters:
//   - src: Record source making one forward pass
//   - opts: Options overriding the defaults
//
// Returns:
//   - *index.Built: Stats record, stored index file and optimization plan
//   - error: Input violation or invalid option
func Build(src index.Source, opts ...index.BuildOption) (*index.Built, error) {
	return BuildContext(context.Background(), src, opts...)
}

// BuildContext is like Build but stops scanning src once ctx is done.
func BuildContext(ctx context.Context, src index.Source, opts ...index.BuildOption) (*index.Built, error) {
	all := make([]index.BuildOption, 0, len(defaultBuildOptions)+len(opts))
	all = append(all, defaultBuildOptions...)
	all = append(all, opts...)

	return index.BuildContext(ctx, src, all...)
}

// BuildPositions builds an index from an in-memory position table.
func BuildPositions(positions []int64, opts ...index.BuildOption) (*index.Built, error) {
	return Build(index.SliceSource(positions), opts...)
}

// BuildLengths builds an index of the record offsets implied by record
// lengths, starting at base.
func BuildLengths(lengths []int64, base int64, opts ...index.BuildOption) (*index.Built, error) {
	return Build(index.LengthSource(lengths, base), opts...)
}

// Open parses a serialized stats record and opens the index file it describes.
//
// Returns:
//   - *index.Reader: Reader safe for concurrent use
//   - error: a *errs.CorruptIndexError if the stats record or index file cannot be trusted
func Open(stats []byte, file []byte, opts ...index.ReaderOption) (*index.Reader, error) {
	s, err := section.ParsePositionStats(stats)
	if err != nil {
		return nil, err
	}

	return index.Open(s, file, opts...)
}

// Save writes built as <name>.pidx and <name>.pstats in dir, replacing any
// previous pair. The stats record is renamed last.
func Save(dir, name string, built *index.Built) error {
	if built == nil {
		return errors.New("posidx: nil index")
	}

	return persist.SaveFiles(dir,
		persist.Bytes(name+persist.IndexExt, built.Index),
		persist.Bytes(name+persist.StatsExt, built.Stats.Bytes()),
	)
}

// Load reads and opens the index pair saved as name in dir.
//
// The stats record is read and validated first. If the index file does not
// match it and the stats record has changed in the meantime, a concurrent
// Save replaced the pair and the load is retried.
//
// Parameters:
//   - dir: Directory holding the pair
//   - name: Index name without extension
//   - opts: Reader options
//
// Returns:
//   - *index.Reader: Reader safe for concurrent use
//   - error: I/O error, or a *errs.CorruptIndexError; the caller must rebuild the index
func Load(dir, name string, opts ...index.ReaderOption) (*index.Reader, error) {
	statsPath := persist.StatsPath(dir, name)
	indexPath := persist.IndexPath(dir, name)

	for attempt := 1; ; attempt++ {
		statsData, err := persist.LoadFile(statsPath)
		if err != nil {
			return nil, err
		}
		stats, err := section.ParsePositionStats(statsData)
		if err != nil {
			return nil, fmt.Errorf("posidx: %s: %w", statsPath, err)
		}

		file, err := persist.LoadFile(indexPath)
		if err != nil {
			return nil, err
		}

		r, err := index.Open(stats, file, opts...)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, errs.ErrCorruptIndex) || attempt == loadAttempts {
			return nil, fmt.Errorf("posidx: %s: %w", indexPath, err)
		}

		current, rerr := persist.LoadFile(statsPath)
		if rerr != nil || bytes.Equal(current, statsData) {
			return nil, fmt.Errorf("posidx: %s: %w", indexPath, err)
		}
	}
}
