package world

import "math"

// fractal sums value-noise octaves into a [0,1] field. Each octave uses its
// own lattice, so octaves never line up at integer points.
type fractal struct {
	seed       int64
	octaves    int
	gain       float64 // amplitude multiplier per octave
	lacunarity float64 // frequency multiplier per octave
}

func (f fractal) at(x, z float64) float64 {
	amp, freq := 1.0, 1.0
	var sum, total float64
	for o := 0; o < f.octaves; o++ {
		sum += amp * latticeNoise(octaveSeed(f.seed, o), x*freq, z*freq)
		total += amp
		amp *= f.gain
		freq *= f.lacunarity
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// ridged folds the field around 0.5 and squares it, giving sharp crests.
func (f fractal) ridged(x, z float64) float64 {
	r := 1 - math.Abs(2*f.at(x, z)-1)
	return r * r
}

func octaveSeed(seed int64, o int) int64 {
	return int64(mix64(uint64(seed) + uint64(o)*0xD1B54A32D192ED03))
}

// latticeNoise interpolates corner values with a quintic fade. It equals
// cornerValue exactly at integer coordinates.
func latticeNoise(seed int64, x, z float64) float64 {
	fx, fz := math.Floor(x), math.Floor(z)
	ix, iz := int64(fx), int64(fz)
	tx, tz := fade(x-fx), fade(z-fz)

	top := lerp(cornerValue(seed, ix, iz), cornerValue(seed, ix+1, iz), tx)
	bottom := lerp(cornerValue(seed, ix, iz+1), cornerValue(seed, ix+1, iz+1), tx)
	return lerp(top, bottom, tz)
}

// cornerValue maps a lattice point to [0,1].
func cornerValue(seed, x, z int64) float64 {
	return float64(cornerHash(seed, x, z)>>11) / (1 << 53)
}

func cornerHash(seed, x, z int64) uint64 {
	return mix64(uint64(x)*0x9E3779B97F4A7C15 ^ uint64(z)*0xC2B2AE3D27D4EB4F ^ uint64(seed))
}

// mix64 is the SplitMix64 finalizer.
func mix64(v uint64) uint64 {
	v ^= v >> 30
	v *= 0xBF58476D1CE4E5B9
	v ^= v >> 27
	v *= 0x94D049BB133111EB
	return v ^ v>>31
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
