package index

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"log/slog"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/posidx/errs"
	"github.com/arloliu/posidx/format"
	"github.com/arloliu/posidx/internal/hash"
)

func TestBuild_Scenarios(t *testing.T) {
	t.Run("linear positions", func(t *testing.T) {
		built := mustBuild(t, scenarioA)

		assert.Equal(t, uint8(0), built.Plan.FixedBitSize)
		assert.Equal(t, int64(3), built.Plan.Histogram[0])
		assert.Equal(t, int64(0), built.Plan.OverflowNodes)
		// anchors only: (1,1) in 4 bits and (5,401) in 5+14 bits
		assert.Equal(t, int64(23), built.Stats.BitsWritten)
		assert.Len(t, built.Index, 3)

		positions, err := mustOpen(t, built).DecodeAll()
		require.NoError(t, err)
		require.Equal(t, scenarioA, positions)
	})

	t.Run("large jump", func(t *testing.T) {
		built := mustBuild(t, scenarioB)
		plan := built.Plan

		assert.Equal(t, int64(25), plan.OverflowCost[anchorClass])
		assert.Equal(t, int64(9), plan.OverflowCost[4])
		assert.Equal(t, int64(30), plan.OverflowCost[10])
		assert.Equal(t, int64(64), plan.Cost(0))
		assert.Equal(t, int64(69), plan.Cost(1))
		assert.Equal(t, int64(75), plan.Cost(4))
		assert.Equal(t, int64(75), plan.Cost(10))

		// Five records cannot amortize any slot width.
		assert.Equal(t, uint8(0), plan.FixedBitSize)
		assert.Equal(t, int64(64), plan.BitsWritten)
		assert.Equal(t, int64(3), plan.OverflowNodes)

		r := mustOpen(t, built)
		positions, err := r.DecodeAll()
		require.NoError(t, err)
		require.Equal(t, scenarioB, positions)
	})

	t.Run("large jump with fixed width", func(t *testing.T) {
		built := mustBuild(t, scenarioB, WithFixedBitSize(4))

		assert.Equal(t, uint8(4), built.Stats.FixedBitSize)
		assert.Equal(t, int64(75), built.Stats.BitsWritten)
		assert.Equal(t, int64(2), built.Plan.OverflowNodes)

		r := mustOpen(t, built)
		assert.Equal(t, int64(2), r.OverflowCount())
		assert.True(t, r.overflowed.Contains(2))
		assert.True(t, r.overflowed.Contains(3))
		assert.False(t, r.overflowed.Contains(1))

		positions, err := r.DecodeAll()
		require.NoError(t, err)
		require.Equal(t, scenarioB, positions)
	})

	t.Run("zero length records", func(t *testing.T) {
		built := mustBuild(t, scenarioC)

		assert.Equal(t, uint8(0), built.Plan.FixedBitSize)
		assert.Equal(t, int64(0), built.Plan.OverflowNodes)

		positions, err := mustOpen(t, built).DecodeAll()
		require.NoError(t, err)
		require.Equal(t, scenarioC, positions)
	})
}

func TestBuild_Degenerate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		built := mustBuild(t, nil)

		assert.Equal(t, int64(0), built.Stats.RecordCount)
		assert.Equal(t, int64(0), built.Stats.BottomPosition)
		assert.Equal(t, int64(0), built.Stats.TopPosition)
		assert.Equal(t, int64(0), built.Stats.BitsWritten)
		assert.Equal(t, uint8(0), built.Stats.FixedBitSize)
		assert.Empty(t, built.Index)
		assert.NotNil(t, built.Index)

		r := mustOpen(t, built)
		assert.Equal(t, int64(0), r.Len())
		positions, err := r.DecodeAll()
		require.NoError(t, err)
		assert.Empty(t, positions)

		_, err = r.Lookup(0)
		require.ErrorIs(t, err, errs.ErrOrdinalOutOfRange)
	})

	t.Run("empty ignores fixed width", func(t *testing.T) {
		built := mustBuild(t, nil, WithFixedBitSize(8))
		assert.Equal(t, uint8(0), built.Stats.FixedBitSize)
	})

	t.Run("single record", func(t *testing.T) {
		built := mustBuild(t, []int64{42})

		assert.Equal(t, int64(42), built.Stats.BottomPosition)
		assert.Equal(t, int64(42), built.Stats.TopPosition)
		assert.Equal(t, uint8(0), built.Stats.FixedBitSize)
		assert.Equal(t, [numClasses]int64{}, built.Plan.Histogram)

		r := mustOpen(t, built)
		pos, err := r.Lookup(0)
		require.NoError(t, err)
		assert.Equal(t, int64(42), pos)
	})

	t.Run("two records", func(t *testing.T) {
		built := mustBuild(t, []int64{3, 9})
		positions, err := mustOpen(t, built).DecodeAll()
		require.NoError(t, err)
		require.Equal(t, []int64{3, 9}, positions)
	})

	t.Run("all equal", func(t *testing.T) {
		positions := make([]int64, 1000)
		for i := range positions {
			positions[i] = 777
		}
		built := mustBuild(t, positions)

		assert.Equal(t, uint8(0), built.Stats.FixedBitSize)
		assert.Equal(t, int64(998), built.Plan.Histogram[0])
		assert.Equal(t, int64(0), built.Plan.OverflowNodes)

		decoded, err := mustOpen(t, built).DecodeAll()
		require.NoError(t, err)
		require.Equal(t, positions, decoded)
	})

	t.Run("extreme positions", func(t *testing.T) {
		positions := []int64{0, 1, math.MaxInt64 - 1, math.MaxInt64, math.MaxInt64}
		for _, opt := range []BuildOption{nil, WithFixedBitSize(64), WithCoding(format.CodingEliasDelta)} {
			built := mustBuild(t, positions, opt)
			decoded, err := mustOpen(t, built).DecodeAll()
			require.NoError(t, err)
			require.Equal(t, positions, decoded)
		}
	})
}

func TestBuild_Optimality(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for _, kind := range []streamKind{streamFixed, streamJitter, streamZeroLength, streamJumps, streamWide} {
		positions := generatePositions(rng, 2000, kind)
		built := mustBuild(t, positions)
		plan := built.Plan
		best := int(plan.FixedBitSize)

		require.Equal(t, plan.Cost(best), plan.BitsWritten)
		for f := 0; f <= 64; f++ {
			if f < best {
				require.Greater(t, plan.Cost(f), plan.BitsWritten, "kind %d width %d", kind, f)
			} else {
				require.GreaterOrEqual(t, plan.Cost(f), plan.BitsWritten, "kind %d width %d", kind, f)
			}
		}
	}
}

func TestBuild_CostModelIsExact(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	positions := generatePositions(rng, 1500, streamJumps)
	optimal := mustBuild(t, positions)

	for _, f := range []uint8{0, 1, 2, 3, 5, 8, 13, 21, 40, 64} {
		built := mustBuild(t, positions, WithFixedBitSize(f))

		require.Equal(t, optimal.Plan.Cost(int(f)), built.Stats.BitsWritten, "width %d", f)
		require.Equal(t, optimal.Plan.OverflowNodesAt(int(f)), built.Plan.OverflowNodes, "width %d", f)
		require.Len(t, built.Index, int((built.Stats.BitsWritten+7)/8))

		decoded, err := mustOpen(t, built).DecodeAll()
		require.NoError(t, err)
		require.Equal(t, positions, decoded, "width %d", f)
	}
}

func TestBuild_JitteredStreamUsesFixedSection(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	positions := generatePositions(rng, 4096, streamJitter)
	// one large gap in the middle of the stream
	for i := 2048; i < len(positions); i++ {
		positions[i] += 1 << 30
	}

	built := mustBuild(t, positions)

	assert.GreaterOrEqual(t, built.Plan.FixedBitSize, uint8(2))
	assert.LessOrEqual(t, built.Plan.FixedBitSize, uint8(16))
	assert.Positive(t, built.Plan.OverflowNodes)
	assert.Less(t, built.Plan.OverflowNodes, int64(len(positions)/4))
	assert.Less(t, built.Stats.BitsWritten, int64(len(positions))*64/4)

	decoded, err := mustOpen(t, built).DecodeAll()
	require.NoError(t, err)
	require.Equal(t, positions, decoded)
}

func TestBuild_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	positions := generatePositions(rng, 3000, streamJitter)

	for _, comp := range []format.CompressionType{format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		a := mustBuild(t, positions, WithCompression(comp))
		b := mustBuild(t, positions, WithCompression(comp))

		require.Equal(t, a.Index, b.Index, comp.String())
		require.Equal(t, a.Stats.Bytes(), b.Stats.Bytes(), comp.String())
	}
}

func TestBuild_StatsDescribeIndex(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 4))
	positions := generatePositions(rng, 500, streamJitter)
	built := mustBuild(t, positions, WithCompression(format.CompressionZstd), WithBigEndian())

	s := built.Stats
	assert.Equal(t, int64(500), s.RecordCount)
	assert.Equal(t, positions[0], s.BottomPosition)
	assert.Equal(t, positions[499], s.TopPosition)
	assert.Equal(t, format.CompressionZstd, s.Compression)
	assert.Equal(t, format.CodingFibonacci, s.Coding)
	assert.True(t, s.Flag.IsBigEndian())
	assert.Equal(t, int64(len(built.Index)), s.StoredSize)
	assert.Equal(t, hash.Checksum(built.Index), s.IndexChecksum)
	require.NoError(t, s.Validate())
}

func TestBuild_InputViolations(t *testing.T) {
	seq := func(pairs ...[2]int64) iter.Seq2[int64, int64] {
		return func(yield func(int64, int64) bool) {
			for _, p := range pairs {
				if !yield(p[0], p[1]) {
					return
				}
			}
		}
	}

	tests := []struct {
		name string
		src  Source
		want error
	}{
		{"skipped ordinal", SeqSource(3, seq([2]int64{0, 0}, [2]int64{2, 5}, [2]int64{3, 9})), errs.ErrOrdinalOutOfOrder},
		{"repeated ordinal", SeqSource(3, seq([2]int64{0, 0}, [2]int64{0, 5}, [2]int64{1, 9})), errs.ErrOrdinalOutOfOrder},
		{"first ordinal not zero", SeqSource(2, seq([2]int64{1, 0}, [2]int64{2, 5})), errs.ErrOrdinalOutOfOrder},
		{"negative position", SliceSource([]int64{-1, 5}), errs.ErrNegativePosition},
		{"decreasing position", SliceSource([]int64{0, 10, 9, 20}), errs.ErrPositionDecreasing},
		{"negative length", LengthSource([]int64{10, -20, 5}, 100), errs.ErrPositionDecreasing},
		{"fewer records", SeqSource(3, seq([2]int64{0, 0}, [2]int64{1, 5})), errs.ErrCountMismatch},
		{"more records", SeqSource(1, seq([2]int64{0, 0}, [2]int64{1, 5})), errs.ErrCountMismatch},
		{"negative count", SeqSource(-1, seq()), errs.ErrInvalidCount},
		{"huge count", SeqSource(MaxRecordCount+1, seq()), errs.ErrInvalidCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			built, err := Build(tt.src)
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, built)
		})
	}
}

func TestBuild_InvalidOptions(t *testing.T) {
	src := SliceSource(scenarioA)

	_, err := Build(src, WithCoding(format.CodingType(0x9)))
	require.ErrorIs(t, err, errs.ErrInvalidCoding)

	_, err = Build(src, WithCompression(format.CompressionType(0)))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)

	_, err = Build(src, WithFixedBitSize(65))
	require.ErrorIs(t, err, errs.ErrInvalidFixedBitSize)
}

func TestBuildContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildContext(ctx, SliceSource(scenarioA))
	require.ErrorIs(t, err, context.Canceled)
}

func TestBuild_Sources(t *testing.T) {
	empty, err := Build(LengthSource(nil, 100))
	require.NoError(t, err)
	require.Equal(t, int64(0), empty.Stats.RecordCount)

	lengths := []int64{100, 100, 100, 100, 7}
	a, err := Build(LengthSource(lengths, 0))
	require.NoError(t, err)

	// the last length only ends the stream
	positions, err := mustOpen(t, a).DecodeAll()
	require.NoError(t, err)
	require.Equal(t, scenarioA, positions)

	b, err := Build(SeqSource(5, SliceSource(scenarioA).Positions()))
	require.NoError(t, err)
	require.Equal(t, a.Index, b.Index)

	// stops early when the consumer stops
	var seen []int64
	for _, p := range LengthSource(lengths, 50).Positions() {
		seen = append(seen, p)
		if len(seen) == 2 {
			break
		}
	}
	require.Equal(t, []int64{50, 150}, seen)
}

func TestBuild_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_ = mustBuild(t, scenarioB, WithLogger(logger))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "index built", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.InDelta(t, 5, rec["count"], 0)
	assert.InDelta(t, 64, rec["bits_written"], 0)
	assert.Equal(t, "Fibonacci", rec["coding"])

	buf.Reset()
	_, err := Build(SliceSource([]int64{3, 1}), WithLogger(logger))
	require.Error(t, err)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "index build failed", rec["msg"])
	assert.Equal(t, "ERROR", rec["level"])
}

func BenchmarkBuild(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 1))
	positions := generatePositions(rng, 1<<16, streamJitter)

	for _, comp := range []format.CompressionType{format.CompressionNone, format.CompressionZstd} {
		b.Run(comp.String(), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := Build(SliceSource(positions), WithCompression(comp)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
