package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWidthClass(t *testing.T) {
	tests := []struct {
		r    int64
		want int
	}{
		{0, 0},
		{1, 2},
		{-1, 2},
		{2, 3},
		{3, 3},
		{-3, 3},
		{4, 4},
		{-4, 4},
		{7, 4},
		{-489, 10},
		{494, 10},
		{math.MaxInt64, 64},
		{-math.MaxInt64, 64},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, widthClass(tt.r), "widthClass(%d)", tt.r)
	}
}

func TestSlotBits_RoundTrip(t *testing.T) {
	for f := 1; f <= 64; f++ {
		limit := int64(1)<<(f-1) - 1
		if f == 64 {
			limit = math.MaxInt64
		}

		for _, r := range []int64{0, 1, -1, limit, -limit, limit / 2, -limit / 3} {
			if r > limit || r < -limit {
				continue
			}
			v := slotBits(r, f)
			require.NotEqual(t, sentinel(f), v, "f=%d r=%d", f, r)
			require.Zero(t, v&^fieldMask(f), "f=%d r=%d", f, r)
			require.Equal(t, r, signExtend(v, f), "f=%d r=%d", f, r)
		}

		if f < 64 {
			require.Equal(t, sentinel(f), slotBits(limit+1, f), "f=%d", f)
			require.Equal(t, sentinel(f), slotBits(-limit-1, f), "f=%d", f)
		}
	}
}

func TestSlotBits_ZeroWidth(t *testing.T) {
	require.Zero(t, slotBits(0, 0))
	require.Zero(t, slotBits(12345, 0))
	require.Zero(t, signExtend(0xFF, 0))
}

func TestResidualTransform(t *testing.T) {
	t.Run("linear", func(t *testing.T) {
		buf := []int64{0, 100, 200, 300, 400}
		hist := residualTransform(buf)

		require.Equal(t, []int64{0, 0, 0, 0, 400}, buf)
		require.Equal(t, int64(3), hist[0])
	})

	t.Run("jump", func(t *testing.T) {
		buf := []int64{0, 10, 11, 1000, 1001}
		hist := residualTransform(buf)

		require.Equal(t, []int64{0, 5, -489, 494, 1001}, buf)
		require.Equal(t, int64(1), hist[4])
		require.Equal(t, int64(2), hist[10])
	})

	t.Run("equal", func(t *testing.T) {
		buf := []int64{5, 5, 5, 5}
		hist := residualTransform(buf)

		require.Equal(t, []int64{0, 0, 0, 5}, buf)
		require.Equal(t, int64(2), hist[0])
	})

	t.Run("degenerate", func(t *testing.T) {
		hist := residualTransform(nil)
		require.Equal(t, [numClasses]int64{}, hist)

		one := []int64{42}
		hist = residualTransform(one)
		require.Equal(t, []int64{0}, one)
		require.Equal(t, [numClasses]int64{}, hist)

		two := []int64{3, 9}
		residualTransform(two)
		require.Equal(t, []int64{0, 9}, two)
	})

	t.Run("extreme", func(t *testing.T) {
		buf := []int64{0, math.MaxInt64, math.MaxInt64}
		hist := residualTransform(buf)

		require.Equal(t, int64(1)<<62, buf[1])
		require.Equal(t, int64(1), hist[64])
	})
}
