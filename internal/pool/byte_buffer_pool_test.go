package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 1024, bb.Cap())
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(IndexBufferDefaultSize)
	_, _ = bb.Write([]byte("some data"))
	originalCap := bb.Cap()

	bb.Reset()

	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, originalCap, bb.Cap())
}

func TestByteBuffer_ExtendOrGrow(t *testing.T) {
	t.Run("within capacity", func(t *testing.T) {
		bb := NewByteBuffer(16)
		bb.ExtendOrGrow(8)

		assert.Equal(t, 8, bb.Len())
		assert.Equal(t, 16, bb.Cap())
	})

	t.Run("beyond capacity keeps content", func(t *testing.T) {
		bb := NewByteBuffer(4)
		_, _ = bb.Write([]byte{1, 2, 3})
		bb.ExtendOrGrow(10)

		require.Equal(t, 13, bb.Len())
		assert.Equal(t, []byte{1, 2, 3}, bb.Bytes()[:3])
	})
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(8)
		bb.Grow(100)
		assert.GreaterOrEqual(t, bb.Cap(), IndexBufferDefaultSize)
	})

	t.Run("large request honored", func(t *testing.T) {
		bb := NewByteBuffer(8)
		bb.Grow(IndexBufferDefaultSize * 3)
		assert.GreaterOrEqual(t, bb.Cap()-bb.Len(), IndexBufferDefaultSize*3)
	})

	t.Run("no-op when capacity suffices", func(t *testing.T) {
		bb := NewByteBuffer(64)
		bb.Grow(10)
		assert.Equal(t, 64, bb.Cap())
	})
}

func TestByteBuffer_Slice(t *testing.T) {
	bb := NewByteBuffer(8)
	_, _ = bb.Write([]byte{1, 2, 3, 4})

	assert.Equal(t, []byte{2, 3}, bb.Slice(1, 3))
	assert.Len(t, bb.Slice(4, 8), 4)
	assert.Panics(t, func() { bb.Slice(3, 2) })
	assert.Panics(t, func() { bb.Slice(0, 9) })
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(8)
	_, _ = bb.Write([]byte("index"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)

	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "index", out.String())
}

func TestByteBufferPool(t *testing.T) {
	t.Run("returned buffers are empty", func(t *testing.T) {
		p := NewByteBufferPool(32, 0)
		bb := p.Get()
		_, _ = bb.Write([]byte("dirty"))
		p.Put(bb)

		again := p.Get()
		assert.Equal(t, 0, again.Len())
	})

	t.Run("oversized buffers are dropped", func(t *testing.T) {
		p := NewByteBufferPool(32, 64)
		bb := p.Get()
		bb.Grow(1024)
		p.Put(bb) // must not panic, buffer discarded

		again := p.Get()
		assert.LessOrEqual(t, again.Cap(), 64)
	})

	t.Run("nil put is ignored", func(t *testing.T) {
		p := NewByteBufferPool(32, 0)
		assert.NotPanics(t, func() { p.Put(nil) })
	})

	t.Run("default index pool", func(t *testing.T) {
		bb := GetIndexBuffer()
		require.NotNil(t, bb)
		assert.Equal(t, 0, bb.Len())
		PutIndexBuffer(bb)
	})
}
