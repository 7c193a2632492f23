package meshing

import (
	"errors"
	"fmt"
)

// ErrInvalidMesh is returned when attribute lengths disagree with the recorded counts.
var ErrInvalidMesh = errors.New("invalid mesh data")

// MeshData holds one chunk's CPU-side geometry between generation and GPU upload.
// Attribute slices come from a BufferPool and go back to it on Release.
type MeshData struct {
	Vertices []float32 // 3 per vertex
	Normals  []float32 // 3 per vertex
	UVs      []float32 // 2 per vertex
	Indices  []int32

	// Optional slope splatting: 4 blend weights and one packed layer index per vertex.
	SplatWeights []float32
	SplatIndices []int32

	VertexCount int
	IndexCount  int

	// Vertical extent, kept after Release for culling.
	MinHeight, MaxHeight float32
}

// NewMeshData rents exactly the arrays implied by the counts.
func NewMeshData(pool *BufferPool, vertexCount, indexCount int, enableSplatting bool) *MeshData {
	m := &MeshData{
		Vertices:    pool.RentFloat(vertexCount * 3),
		Normals:     pool.RentFloat(vertexCount * 3),
		UVs:         pool.RentFloat(vertexCount * 2),
		Indices:     pool.RentInt(indexCount),
		VertexCount: vertexCount,
		IndexCount:  indexCount,
	}
	if enableSplatting {
		m.SplatWeights = pool.RentFloat(vertexCount * 4)
		m.SplatIndices = pool.RentInt(vertexCount)
	}
	return m
}

// EmptyMeshData returns a zero-sized placeholder. It must never be uploaded.
func EmptyMeshData() *MeshData {
	return &MeshData{
		Vertices: []float32{},
		Normals:  []float32{},
		UVs:      []float32{},
		Indices:  []int32{},
	}
}

// HasSplatting reports whether splat arrays are attached.
func (m *MeshData) HasSplatting() bool {
	return m.SplatWeights != nil || m.SplatIndices != nil
}

// Released reports whether the attribute arrays have been handed back to the pool.
func (m *MeshData) Released() bool {
	return m.Vertices == nil && m.Normals == nil && m.UVs == nil && m.Indices == nil &&
		m.SplatWeights == nil && m.SplatIndices == nil
}

// Uploadable reports whether the mesh carries geometry that may be sent to the GPU.
func (m *MeshData) Uploadable() bool {
	return m.VertexCount > 0 && m.IndexCount > 0 && m.Validate() == nil
}

// Validate checks attribute lengths against VertexCount and IndexCount.
func (m *MeshData) Validate() error {
	v, i := m.VertexCount, m.IndexCount
	switch {
	case len(m.Vertices) != v*3:
		return fmt.Errorf("%w: %d position floats for %d vertices", ErrInvalidMesh, len(m.Vertices), v)
	case len(m.Normals) != v*3:
		return fmt.Errorf("%w: %d normal floats for %d vertices", ErrInvalidMesh, len(m.Normals), v)
	case len(m.UVs) != v*2:
		return fmt.Errorf("%w: %d uv floats for %d vertices", ErrInvalidMesh, len(m.UVs), v)
	case len(m.Indices) != i:
		return fmt.Errorf("%w: %d indices, want %d", ErrInvalidMesh, len(m.Indices), i)
	}
	if m.HasSplatting() {
		if len(m.SplatWeights) != v*4 {
			return fmt.Errorf("%w: %d splat weights for %d vertices", ErrInvalidMesh, len(m.SplatWeights), v)
		}
		if len(m.SplatIndices) != v {
			return fmt.Errorf("%w: %d splat indices for %d vertices", ErrInvalidMesh, len(m.SplatIndices), v)
		}
	}
	return nil
}

// Release returns every attribute array to pool and nils the fields.
// Counts and height bounds are kept for diagnostics and culling. Calling Release twice is a no-op.
func (m *MeshData) Release(pool *BufferPool) {
	pool.ReturnFloat(m.Vertices)
	pool.ReturnFloat(m.Normals)
	pool.ReturnFloat(m.UVs)
	pool.ReturnInt(m.Indices)
	pool.ReturnFloat(m.SplatWeights)
	pool.ReturnInt(m.SplatIndices)
	m.Vertices = nil
	m.Normals = nil
	m.UVs = nil
	m.Indices = nil
	m.SplatWeights = nil
	m.SplatIndices = nil
}

// PackSplatIndices packs four texture-layer references into one value, 8 bits each.
func PackSplatIndices(a, b, c, d uint8) int32 {
	return int32(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

// UnpackSplatIndices reverses PackSplatIndices.
func UnpackSplatIndices(v int32) (a, b, c, d uint8) {
	u := uint32(v)
	return uint8(u), uint8(u >> 8), uint8(u >> 16), uint8(u >> 24)
}
