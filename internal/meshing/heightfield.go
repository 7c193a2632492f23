package meshing

import (
	"math"

	"mini-terrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// HeightSampler samples surface height at world X,Z.
type HeightSampler interface {
	HeightAt(x, z float64) float64
}

// Splat layers, in texture-array order.
const (
	LayerSand uint8 = iota
	LayerGrass
	LayerRock
	LayerSnow
)

// HeightfieldSettings controls chunk tessellation.
type HeightfieldSettings struct {
	Resolution int     // quads per chunk edge
	ChunkSize  float32 // world units per chunk edge
	Splatting  bool

	SandLevel float32 // below this height sand dominates
	SnowLevel float32 // above this height snow dominates
}

// DefaultHeightfieldSettings returns 32x32-quad chunks of 64 world units.
func DefaultHeightfieldSettings() HeightfieldSettings {
	return HeightfieldSettings{
		Resolution: 32,
		ChunkSize:  64,
		Splatting:  true,
		SandLevel:  10,
		SnowLevel:  90,
	}
}

// VertexCount returns the vertices per chunk for these settings.
func (s HeightfieldSettings) VertexCount() int {
	n := s.Resolution + 1
	return n * n
}

// IndexCount returns the indices per chunk for these settings.
func (s HeightfieldSettings) IndexCount() int {
	return s.Resolution * s.Resolution * 6
}

// BuildHeightfieldMesh tessellates the chunk whose origin is (originX, originZ).
// All arrays are rented from pool; the caller owns the returned mesh.
func BuildHeightfieldMesh(pool *BufferPool, src HeightSampler, originX, originZ float32, s HeightfieldSettings) *MeshData {
	defer profiling.Track("meshing.BuildHeightfieldMesh")()

	res := s.Resolution
	if res < 1 {
		res = 1
	}
	s.Resolution = res
	n := res + 1
	step := float64(s.ChunkSize) / float64(res)
	m := NewMeshData(pool, s.VertexCount(), s.IndexCount(), s.Splatting)

	// Heights with a one-sample border so normals match across chunk seams
	border := n + 2
	heights := pool.RentFloat(border * border)
	defer pool.ReturnFloat(heights)
	for j := 0; j < border; j++ {
		for i := 0; i < border; i++ {
			wx := float64(originX) + float64(i-1)*step
			wz := float64(originZ) + float64(j-1)*step
			heights[j*border+i] = float32(src.HeightAt(wx, wz))
		}
	}
	h := func(i, j int) float32 { return heights[(j+1)*border+(i+1)] }
	m.MinHeight, m.MaxHeight = h(0, 0), h(0, 0)

	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			v := j*n + i
			y := h(i, j)
			m.MinHeight = min(m.MinHeight, y)
			m.MaxHeight = max(m.MaxHeight, y)
			m.Vertices[v*3+0] = originX + float32(float64(i)*step)
			m.Vertices[v*3+1] = y
			m.Vertices[v*3+2] = originZ + float32(float64(j)*step)

			// Central differences
			dx := h(i+1, j) - h(i-1, j)
			dz := h(i, j+1) - h(i, j-1)
			nrm := mgl32.Vec3{-dx, float32(2 * step), -dz}.Normalize()
			m.Normals[v*3+0] = nrm[0]
			m.Normals[v*3+1] = nrm[1]
			m.Normals[v*3+2] = nrm[2]

			m.UVs[v*2+0] = float32(i) / float32(res)
			m.UVs[v*2+1] = float32(j) / float32(res)

			if s.Splatting {
				w := splatWeights(y, nrm[1], s)
				copy(m.SplatWeights[v*4:v*4+4], w[:])
				m.SplatIndices[v] = PackSplatIndices(LayerSand, LayerGrass, LayerRock, LayerSnow)
			}
		}
	}

	k := 0
	for j := 0; j < res; j++ {
		for i := 0; i < res; i++ {
			a := int32(j*n + i)
			b := a + 1
			c := a + int32(n)
			d := c + 1
			// Counter-clockwise seen from +Y
			m.Indices[k+0] = a
			m.Indices[k+1] = c
			m.Indices[k+2] = b
			m.Indices[k+3] = b
			m.Indices[k+4] = c
			m.Indices[k+5] = d
			k += 6
		}
	}
	return m
}

// splatWeights blends sand, grass, rock and snow by height and slope.
// upness is the Y component of the unit normal. Weights sum to 1.
func splatWeights(height, upness float32, s HeightfieldSettings) [4]float32 {
	slope := 1 - upness
	rock := smoothstep(0.15, 0.45, slope)
	snow := smoothstep(s.SnowLevel-10, s.SnowLevel+10, height) * (1 - rock)
	sand := (1 - smoothstep(s.SandLevel-2, s.SandLevel+2, height)) * (1 - rock)
	grass := float32(math.Max(0, float64(1-rock-snow-sand)))

	w := [4]float32{sand, grass, rock, snow}
	sum := w[0] + w[1] + w[2] + w[3]
	if sum <= 0 {
		return [4]float32{0, 1, 0, 0}
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

func smoothstep(e0, e1, x float32) float32 {
	t := (x - e0) / (e1 - e0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
