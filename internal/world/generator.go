package world

// HeightSource samples terrain surface height at world X,Z.
// Implementations must be safe for concurrent use by generation workers.
type HeightSource interface {
	HeightAt(x, z float64) float64
}

// NoiseHeightSource produces rolling hills with ridged mountains blended in.
type NoiseHeightSource struct {
	scale      float64
	baseHeight float64
	amp        float64
	ridgeAmp   float64

	hills  fractal
	mask   fractal // low-frequency field deciding where ridges appear
	ridges fractal
}

// NewNoiseHeightSource creates a noise source with default settings.
func NewNoiseHeightSource(seed int64) *NoiseHeightSource {
	return &NoiseHeightSource{
		scale:      1.0 / 256.0,
		baseHeight: 8,
		amp:        48,
		ridgeAmp:   64,
		hills:      fractal{seed: seed, octaves: 5, gain: 0.5, lacunarity: 2},
		mask:       fractal{seed: seed + 7919, octaves: 2, gain: 0.5, lacunarity: 2},
		ridges:     fractal{seed: seed + 104729, octaves: 4, gain: 0.5, lacunarity: 2},
	}
}

// HeightAt computes surface height at world X,Z.
func (g *NoiseHeightSource) HeightAt(x, z float64) float64 {
	sx := x * g.scale
	sz := z * g.scale
	n := g.hills.at(sx, sz)
	mask := clamp01((g.mask.at(sx*0.25, sz*0.25) - 0.45) * 4)
	ridge := g.ridges.ridged(sx*1.5, sz*1.5)

	return g.baseHeight + n*g.amp + ridge*mask*g.ridgeAmp
}

// FlatHeightSource returns a constant height everywhere.
type FlatHeightSource struct {
	height float64
}

// NewFlatHeightSource creates a flat source at height h.
func NewFlatHeightSource(h float64) *FlatHeightSource {
	return &FlatHeightSource{height: h}
}

func (f *FlatHeightSource) HeightAt(x, z float64) float64 {
	return f.height
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
