package meshing

import (
	"sync"
	"sync/atomic"
)

// Bucket thresholds in elements. Buffers are bucketed by capacity.
const (
	smallBucketMax  = 2500
	mediumBucketMax = 25000
)

// Rented buffers may be up to 25% larger than requested.
const maxOversize = 1.25

const numBuckets = 3

func bucketFor(n int) int {
	switch {
	case n <= smallBucketMax:
		return 0
	case n <= mediumBucketMax:
		return 1
	default:
		return 2
	}
}

// maxFit is the largest capacity accepted for a request of minSize elements.
func maxFit(minSize int) int {
	return int(float64(minSize) * maxOversize)
}

// freeList is an unordered multiset of same-type buffers guarded by its own mutex.
type freeList[T any] struct {
	mu   sync.Mutex
	bufs [][]T
}

// take removes and returns the first buffer whose capacity is in [lo, hi].
func (f *freeList[T]) take(lo, hi int) []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.bufs {
		c := cap(b)
		if c < lo || c > hi {
			continue
		}
		last := len(f.bufs) - 1
		f.bufs[i] = f.bufs[last]
		f.bufs[last] = nil
		f.bufs = f.bufs[:last]
		return b
	}
	return nil
}

func (f *freeList[T]) put(b []T) {
	f.mu.Lock()
	f.bufs = append(f.bufs, b)
	f.mu.Unlock()
}

func (f *freeList[T]) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bufs)
}

// typedPool holds the three size buckets for one element type.
type typedPool[T any] struct {
	buckets [numBuckets]freeList[T]
}

func (p *typedPool[T]) rent(minSize int, st *poolCounters) []T {
	if minSize <= 0 {
		return make([]T, 0)
	}
	st.rents.Add(1)
	b := p.buckets[bucketFor(minSize)].take(minSize, maxFit(minSize))
	if b == nil {
		st.allocs.Add(1)
		return make([]T, minSize)
	}
	st.reuses.Add(1)
	b = b[:minSize]
	clear(b)
	return b
}

func (p *typedPool[T]) give(b []T, st *poolCounters) {
	c := cap(b)
	if c == 0 {
		return
	}
	st.returns.Add(1)
	p.buckets[bucketFor(c)].put(b[:c])
}

func (p *typedPool[T]) free() [numBuckets]int {
	var out [numBuckets]int
	for i := range p.buckets {
		out[i] = p.buckets[i].len()
	}
	return out
}

type poolCounters struct {
	rents   atomic.Int64
	reuses  atomic.Int64
	allocs  atomic.Int64
	returns atomic.Int64
}

// PoolStats is a point-in-time view of pool activity.
type PoolStats struct {
	Rents       int64
	Reuses      int64
	Allocations int64
	Returns     int64
	// Free buffers per bucket (small, medium, large).
	FreeFloats [numBuckets]int
	FreeInts   [numBuckets]int
}

// BufferPool recycles float and int slices used as mesh attribute storage.
// It is safe for concurrent use by generation workers and the render thread.
type BufferPool struct {
	floats typedPool[float32]
	ints   typedPool[int32]
	stats  poolCounters
}

// NewBufferPool creates an empty pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{}
}

// RentFloat returns a zeroed slice of length minSize. Its capacity may be up
// to 25% larger when a recycled buffer was reused.
func (p *BufferPool) RentFloat(minSize int) []float32 {
	return p.floats.rent(minSize, &p.stats)
}

// RentInt is RentFloat for int32 storage.
func (p *BufferPool) RentInt(minSize int) []int32 {
	return p.ints.rent(minSize, &p.stats)
}

// ReturnFloat hands buf back to the pool. Nil is ignored. Callers must not
// touch buf afterwards.
func (p *BufferPool) ReturnFloat(buf []float32) {
	p.floats.give(buf, &p.stats)
}

// ReturnInt hands buf back to the pool. Nil is ignored.
func (p *BufferPool) ReturnInt(buf []int32) {
	p.ints.give(buf, &p.stats)
}

// Stats returns current counters and free-list sizes.
func (p *BufferPool) Stats() PoolStats {
	return PoolStats{
		Rents:       p.stats.rents.Load(),
		Reuses:      p.stats.reuses.Load(),
		Allocations: p.stats.allocs.Load(),
		Returns:     p.stats.returns.Load(),
		FreeFloats:  p.floats.free(),
		FreeInts:    p.ints.free(),
	}
}
