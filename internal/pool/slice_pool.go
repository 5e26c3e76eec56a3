package pool

import "sync"

// maxPooledInt64Slice bounds the capacity of slices kept in the pool so a
// single very large build does not pin its buffer forever.
const maxPooledInt64Slice = 1 << 20

var int64SlicePool = sync.Pool{
	New: func() any { return &[]int64{} },
}

// GetInt64Slice retrieves an int64 slice of exactly size elements from the pool.
//
// The contents of the returned slice are unspecified; callers overwrite every
// element. The caller must call the returned cleanup function to give the
// slice back, and must not use the slice afterwards.
//
// Example:
//
//	buf, release := pool.GetInt64Slice(n)
//	defer release()
func GetInt64Slice(size int) ([]int64, func()) {
	ptr, _ := int64SlicePool.Get().(*[]int64)
	slice := *ptr

	if cap(slice) < size {
		slice = make([]int64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() {
		if cap(*ptr) > maxPooledInt64Slice {
			return
		}
		int64SlicePool.Put(ptr)
	}
}
