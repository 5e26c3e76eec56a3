package index

import (
	"context"
	"fmt"
	"math"

	"github.com/arloliu/posidx/errs"
	"github.com/arloliu/posidx/internal/hash"
	"github.com/arloliu/posidx/internal/pool"
	"github.com/arloliu/posidx/section"
)

// MaxRecordCount is the largest record count a single build accepts.
const MaxRecordCount = math.MaxInt / 8

// cancelCheckInterval is the number of records scanned between context checks.
const cancelCheckInterval = 1 << 16

// Built is the result of a successful build.
type Built struct {
	// Stats describes Index and must be persisted with it.
	Stats section.PositionStats
	// Index is the stored index file content, compressed with Stats.Compression.
	Index []byte
	// Plan records the width optimization.
	Plan Plan
}

// Build builds the index of src.
//
// Parameters:
//   - src: Record source making one forward pass
//   - opts: Build options (coding, compression, byte order, fixed width, logger)
//
// Returns:
//   - *Built: stats record, stored index file and the optimization plan
//   - error: an option error, or an input violation from errs (ErrOrdinalOutOfOrder,
//     ErrNegativePosition, ErrPositionDecreasing, ErrCountMismatch, ErrInvalidCount).
//     Nothing is returned on error.
func Build(src Source, opts ...BuildOption) (*Built, error) {
	return BuildContext(context.Background(), src, opts...)
}

// BuildContext is like Build but stops scanning the source once ctx is done.
func BuildContext(ctx context.Context, src Source, opts ...BuildOption) (*Built, error) {
	cfg, err := newBuildConfig(opts...)
	if err != nil {
		return nil, err
	}

	built, err := build(ctx, src, cfg)
	if err != nil {
		cfg.logger.LogBuild(ctx, &cfg.stats, nil, err)
		return nil, err
	}
	cfg.logger.LogBuild(ctx, &built.Stats, &built.Plan, nil)

	return built, nil
}

func build(ctx context.Context, src Source, cfg *BuildConfig) (*Built, error) {
	n := src.Count()
	if n < 0 || n > MaxRecordCount {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidCount, n)
	}

	buf, release := pool.GetInt64Slice(int(n))
	defer release()

	if err := scan(ctx, src, buf); err != nil {
		return nil, err
	}

	stats := cfg.stats
	stats.RecordCount = n
	if n > 0 {
		stats.BottomPosition = buf[0]
		stats.TopPosition = buf[n-1]
	}

	hist := residualTransform(buf)
	plan := optimize(buf, stats.BottomPosition, hist, cfg.code, cfg.fixedBitSize)
	stats.FixedBitSize = plan.FixedBitSize
	stats.BitsWritten = plan.BitsWritten

	payload, err := encode(buf, stats.BottomPosition, &plan, cfg.code)
	if err != nil {
		return nil, err
	}

	stored, err := cfg.codec.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to compress index: %w", err)
	}
	if stored == nil {
		stored = []byte{}
	}

	stats.StoredSize = int64(len(stored))
	stats.IndexChecksum = hash.Checksum(stored)

	return &Built{Stats: stats, Index: stored, Plan: plan}, nil
}

// scan copies the positions of src into buf, which has exactly Count slots.
func scan(ctx context.Context, src Source, buf []int64) error {
	n := int64(len(buf))
	if err := ctx.Err(); err != nil {
		return err
	}

	var next, prev int64
	for ordinal, pos := range src.Positions() {
		if ordinal != next {
			return fmt.Errorf("%w: got ordinal %d, want %d", errs.ErrOrdinalOutOfOrder, ordinal, next)
		}
		if next >= n {
			return fmt.Errorf("%w: source yielded more than %d records", errs.ErrCountMismatch, n)
		}
		if pos < 0 {
			return fmt.Errorf("%w: ordinal %d at %d", errs.ErrNegativePosition, ordinal, pos)
		}
		if pos < prev {
			return fmt.Errorf("%w: ordinal %d at %d after %d", errs.ErrPositionDecreasing, ordinal, pos, prev)
		}

		if next%cancelCheckInterval == cancelCheckInterval-1 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		buf[next] = pos
		prev = pos
		next++
	}

	if next != n {
		return fmt.Errorf("%w: source yielded %d records, want %d", errs.ErrCountMismatch, next, n)
	}

	return nil
}
