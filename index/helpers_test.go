package index

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/posidx/internal/bitstream"
	"github.com/arloliu/posidx/internal/hash"
	"github.com/arloliu/posidx/section"
)

var (
	scenarioA = []int64{0, 100, 200, 300, 400}
	scenarioB = []int64{0, 10, 11, 1000, 1001}
	scenarioC = []int64{5, 5, 5, 5}
)

// streamKind selects the record size distribution of a generated stream.
type streamKind int

const (
	streamFixed streamKind = iota
	streamJitter
	streamZeroLength
	streamJumps
	streamWide
)

// generatePositions returns n non-decreasing positions.
func generatePositions(rng *rand.Rand, n int, kind streamKind) []int64 {
	positions := make([]int64, n)
	pos := rng.Int64N(1 << 20)

	for i := range positions {
		positions[i] = pos

		var step int64
		switch kind {
		case streamFixed:
			step = 128
		case streamJitter:
			step = 90 + rng.Int64N(21)
		case streamZeroLength:
			if rng.IntN(3) > 0 {
				step = rng.Int64N(4)
			}
		case streamJumps:
			step = 40 + rng.Int64N(5)
			if rng.IntN(50) == 0 {
				step = rng.Int64N(1 << 40)
			}
		case streamWide:
			step = rng.Int64N(math.MaxInt64 / int64(4*n+4))
		}
		pos += step
	}

	return positions
}

func mustBuild(t testing.TB, positions []int64, opts ...BuildOption) *Built {
	t.Helper()

	built, err := Build(SliceSource(positions), opts...)
	require.NoError(t, err)

	return built
}

func mustOpen(t testing.TB, built *Built) *Reader {
	t.Helper()

	r, err := Open(built.Stats, built.Index)
	require.NoError(t, err)

	return r
}

// craftIndex encodes positions with slot width f the way the encoder does,
// except that the listed midpoints receive a sentinel and the overflow
// section holds exactly entries. It returns an uncompressed, sealed pair.
func craftIndex(t *testing.T, positions []int64, f int, sentinels []int64, entries []overflowPair) (section.PositionStats, []byte) {
	t.Helper()

	buf := slices.Clone(positions)
	residualTransform(buf)

	w := bitstream.NewWriter()
	if f > 0 {
		for i, r := range buf {
			v := slotBits(r, f)
			if slices.Contains(sentinels, int64(i)) {
				v = sentinel(f)
			}
			w.WriteBits(v, f)
		}
	}
	for _, e := range entries {
		emitPair(w, bitstream.Fibonacci{}, e.ordinal, e.position)
	}

	bitsWritten := w.BitsWritten()
	file := w.Finish()

	stats := *section.NewPositionStats()
	stats.RecordCount = int64(len(positions))
	stats.BottomPosition = positions[0]
	stats.TopPosition = positions[len(positions)-1]
	stats.FixedBitSize = uint8(f) //nolint:gosec // test widths are small
	stats.BitsWritten = bitsWritten
	stats.StoredSize = int64(len(file))
	stats.IndexChecksum = hash.Checksum(file)

	return stats, file
}

// reseal updates the stored size and checksum of stats to match file.
func reseal(stats section.PositionStats, file []byte) section.PositionStats {
	stats.StoredSize = int64(len(file))
	stats.IndexChecksum = hash.Checksum(file)

	return stats
}
