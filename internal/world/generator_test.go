package world

import (
	"math"
	"testing"

	"mini-terrain/internal/meshing"
)

func TestHeightSourcesImplementSampler(t *testing.T) {
	var _ HeightSource = NewNoiseHeightSource(123)
	var _ HeightSource = NewFlatHeightSource(10)
	var _ meshing.HeightSampler = NewNoiseHeightSource(123)
}

func TestFlatHeightSource(t *testing.T) {
	g := NewFlatHeightSource(10)
	for _, p := range [][2]float64{{0, 0}, {100, -50}, {-1e6, 1e6}} {
		if h := g.HeightAt(p[0], p[1]); h != 10 {
			t.Errorf("HeightAt(%v) = %v, want 10", p, h)
		}
	}
}

func TestNoiseHeightSourceDeterministic(t *testing.T) {
	a := NewNoiseHeightSource(42)
	b := NewNoiseHeightSource(42)
	for i := 0; i < 200; i++ {
		x := float64(i*37) - 3000
		z := float64(i*-53) + 1500
		if ha, hb := a.HeightAt(x, z), b.HeightAt(x, z); ha != hb {
			t.Fatalf("seed 42 at (%v,%v): %v != %v", x, z, ha, hb)
		}
	}
}

func TestNoiseHeightSourceSeedsDiffer(t *testing.T) {
	a := NewNoiseHeightSource(1)
	b := NewNoiseHeightSource(2)
	same := 0
	for i := 0; i < 100; i++ {
		x, z := float64(i*97), float64(i*61)
		if a.HeightAt(x, z) == b.HeightAt(x, z) {
			same++
		}
	}
	if same > 5 {
		t.Errorf("%d of 100 samples identical across seeds", same)
	}
}

func TestNoiseHeightSourceBounds(t *testing.T) {
	g := NewNoiseHeightSource(7)
	lo := g.baseHeight
	hi := g.baseHeight + g.amp + g.ridgeAmp
	for i := 0; i < 1000; i++ {
		x, z := float64(i*13)-6000, float64(i*29)-4000
		h := g.HeightAt(x, z)
		if h < lo || h > hi || math.IsNaN(h) {
			t.Fatalf("HeightAt(%v,%v) = %v outside [%v,%v]", x, z, h, lo, hi)
		}
	}
}

func TestNoiseHeightSourceSmooth(t *testing.T) {
	g := NewNoiseHeightSource(3)
	// Adjacent samples one unit apart must not jump like white noise
	for i := 0; i < 500; i++ {
		x := float64(i) * 3.1
		d := math.Abs(g.HeightAt(x, 0) - g.HeightAt(x+1, 0))
		if d > 16 {
			t.Fatalf("jump of %v between x=%v and x=%v", d, x, x+1)
		}
	}
}

func TestNoiseSourceFeedsMesher(t *testing.T) {
	pool := meshing.NewBufferPool()
	s := meshing.DefaultHeightfieldSettings()
	s.Resolution = 8
	m := meshing.BuildHeightfieldMesh(pool, NewNoiseHeightSource(99), -64, 128, s)
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if m.MinHeight > m.MaxHeight {
		t.Fatalf("bounds inverted: %v > %v", m.MinHeight, m.MaxHeight)
	}
}

func BenchmarkNoiseHeightAt(b *testing.B) {
	g := NewNoiseHeightSource(42)
	for i := 0; i < b.N; i++ {
		g.HeightAt(float64(i&1023), float64(i>>10&1023))
	}
}
