package meshing

import (
	"sync"
	"testing"
)

func TestRentReturnsRequestedLength(t *testing.T) {
	p := NewBufferPool()
	for _, n := range []int{1, 3, 2500, 2501, 25000, 25001, 100000} {
		f := p.RentFloat(n)
		if len(f) != n {
			t.Errorf("RentFloat(%d): len %d", n, len(f))
		}
		i := p.RentInt(n)
		if len(i) != n {
			t.Errorf("RentInt(%d): len %d", n, len(i))
		}
	}
}

func TestRentZeroSize(t *testing.T) {
	p := NewBufferPool()
	f := p.RentFloat(0)
	if f == nil || len(f) != 0 {
		t.Fatalf("RentFloat(0) = %v, want empty non-nil slice", f)
	}
	p.ReturnFloat(f)
	if st := p.Stats(); st.Returns != 0 || st.FreeFloats != [3]int{} {
		t.Fatalf("zero-capacity buffer should not be pooled: %+v", st)
	}
}

func TestReturnNilIsNoop(t *testing.T) {
	p := NewBufferPool()
	p.ReturnFloat(nil)
	p.ReturnInt(nil)
	if st := p.Stats(); st.Returns != 0 {
		t.Fatalf("Returns = %d, want 0", st.Returns)
	}
}

func TestRoundTripReusesBuffer(t *testing.T) {
	p := NewBufferPool()
	for _, n := range []int{16, 3000, 30000} {
		a := p.RentFloat(n)
		ptr := &a[0]
		p.ReturnFloat(a)

		b := p.RentFloat(n)
		if len(b) < n {
			t.Fatalf("size %d: got len %d", n, len(b))
		}
		if &b[0] != ptr {
			t.Errorf("size %d: expected the returned buffer to be reused", n)
		}
	}
	st := p.Stats()
	if st.Reuses != 3 || st.Allocations != 3 {
		t.Errorf("reuses=%d allocations=%d, want 3 and 3", st.Reuses, st.Allocations)
	}
}

func TestRentedBufferIsZeroed(t *testing.T) {
	p := NewBufferPool()
	a := p.RentInt(10)
	for i := range a {
		a[i] = int32(i + 1)
	}
	p.ReturnInt(a)
	b := p.RentInt(10)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("b[%d] = %d, want 0", i, v)
		}
	}
}

func TestBucketFitRejectsOversizedBuffers(t *testing.T) {
	p := NewBufferPool()
	// 200 is more than 25% larger than 100
	p.ReturnFloat(make([]float32, 200))
	got := p.RentFloat(100)
	if cap(got) != 100 {
		t.Fatalf("cap = %d, want fresh allocation of 100", cap(got))
	}
	// The rejected buffer must still be in the pool
	if st := p.Stats(); st.FreeFloats[0] != 1 {
		t.Fatalf("free small floats = %d, want 1", st.FreeFloats[0])
	}
	again := p.RentFloat(180)
	if cap(again) != 200 {
		t.Fatalf("cap = %d, want the pooled 200 buffer", cap(again))
	}
}

func TestBucketFitAcceptsNearMiss(t *testing.T) {
	p := NewBufferPool()
	p.ReturnFloat(make([]float32, 120))
	got := p.RentFloat(100)
	if len(got) != 100 || cap(got) != 120 {
		t.Fatalf("len=%d cap=%d, want len 100 cap 120", len(got), cap(got))
	}

	// Returning the resliced buffer files it by capacity
	p.ReturnFloat(got)
	back := p.RentFloat(120)
	if len(back) != 120 {
		t.Fatalf("len = %d, want 120", len(back))
	}
}

func TestRentNeverShorterOrTooLong(t *testing.T) {
	p := NewBufferPool()
	sizes := []int{50, 60, 62, 63, 64, 80, 100, 124, 125, 126}
	for _, n := range sizes {
		p.ReturnFloat(make([]float32, n))
	}
	for _, want := range []int{50, 51, 60, 100, 101} {
		got := p.RentFloat(want)
		if len(got) < want {
			t.Errorf("RentFloat(%d): len %d", want, len(got))
		}
		if cap(got) > maxFit(want) {
			t.Errorf("RentFloat(%d): cap %d exceeds %d", want, cap(got), maxFit(want))
		}
	}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 0},
		{2500, 0},
		{2501, 1},
		{25000, 1},
		{25001, 2},
	}
	for _, tt := range tests {
		if got := bucketFor(tt.n); got != tt.want {
			t.Errorf("bucketFor(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestConcurrentRentReturnLosesNothing(t *testing.T) {
	p := NewBufferPool()
	const (
		workers = 8
		rounds  = 200
	)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				n := 64 + (seed*31+i*7)%64
				f := p.RentFloat(n)
				ints := p.RentInt(n)
				f[0] = 1
				ints[0] = 1
				p.ReturnFloat(f)
				p.ReturnInt(ints)
			}
		}(w)
	}
	wg.Wait()

	st := p.Stats()
	free := 0
	for i := range st.FreeFloats {
		free += st.FreeFloats[i] + st.FreeInts[i]
	}
	// Every buffer ever allocated is back in a free list
	if int64(free) != st.Allocations {
		t.Fatalf("free=%d allocations=%d", free, st.Allocations)
	}
	if st.Rents != workers*rounds*2 || st.Returns != st.Rents {
		t.Fatalf("rents=%d returns=%d", st.Rents, st.Returns)
	}
}

func BenchmarkRentReturnFloat(b *testing.B) {
	p := NewBufferPool()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf := p.RentFloat(33 * 33 * 3)
		p.ReturnFloat(buf)
	}
}
