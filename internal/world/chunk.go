package world

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"mini-terrain/internal/meshing"

	"github.com/go-gl/mathgl/mgl32"
)

// ChunkKey identifies one terrain grid cell. Keys with equal coordinates are interchangeable.
type ChunkKey struct {
	X, Z int32
}

// Hash mixes X and Z with large odd multipliers so regular grids spread evenly.
func (k ChunkKey) Hash() uint32 {
	h := uint32(k.X) * 0x9e3779b1
	h ^= uint32(k.Z) * 0x85ebca6b
	h ^= h >> 16
	h *= 0x7feb352d
	h ^= h >> 15
	return h
}

func (k ChunkKey) String() string {
	return fmt.Sprintf("(%d,%d)", k.X, k.Z)
}

// ChunkState is the lifecycle stage of a chunk.
// A chunk whose request sits in the upload queue stays Ready until it is drained.
type ChunkState int32

const (
	StatePending ChunkState = iota
	StateGenerating
	StateReady
	StateUploaded
	StateUnloaded
)

func (s ChunkState) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateGenerating:
		return "Generating"
	case StateReady:
		return "Ready"
	case StateUploaded:
		return "Uploaded"
	case StateUnloaded:
		return "Unloaded"
	}
	return fmt.Sprintf("ChunkState(%d)", int32(s))
}

// Handles is the GPU resource triple of an uploaded chunk. Zero means unallocated.
type Handles struct {
	VAO uint32
	VBO uint32
	EBO uint32
}

// Allocated reports whether the vertex array handle is live.
func (h Handles) Allocated() bool {
	return h.VAO != 0
}

// Chunk is one grid cell of streamed terrain.
//
// GPU and IndexCount are owned by the render thread. State is atomic so
// schedulers on other goroutines can observe it.
type Chunk struct {
	Key           ChunkKey
	WorldPosition mgl32.Vec3

	GPU        Handles
	IndexCount int32

	state      atomic.Int32
	lastAccess atomic.Int64

	meshMu sync.Mutex
	mesh   *meshing.MeshData
}

// NewChunk creates a Pending chunk placed at its grid origin.
func NewChunk(key ChunkKey, chunkSize float32) *Chunk {
	c := &Chunk{
		Key:           key,
		WorldPosition: mgl32.Vec3{float32(key.X) * chunkSize, 0, float32(key.Z) * chunkSize},
	}
	c.Touch(time.Now())
	return c
}

// State returns the current lifecycle state.
func (c *Chunk) State() ChunkState {
	return ChunkState(c.state.Load())
}

// SetState stores s unconditionally.
func (c *Chunk) SetState(s ChunkState) {
	c.state.Store(int32(s))
}

// TryClaim moves a Pending chunk to Generating. It returns false when the
// chunk is in any other state, so exactly one worker wins the claim.
func (c *Chunk) TryClaim() bool {
	return c.Transition(StatePending, StateGenerating)
}

// Transition moves the chunk from one state to another only if it is still in from.
func (c *Chunk) Transition(from, to ChunkState) bool {
	return c.state.CompareAndSwap(int32(from), int32(to))
}

// Mesh returns the attached mesh, possibly hollow after upload.
func (c *Chunk) Mesh() *meshing.MeshData {
	c.meshMu.Lock()
	defer c.meshMu.Unlock()
	return c.mesh
}

// SetMesh attaches m and returns the previous mesh.
func (c *Chunk) SetMesh(m *meshing.MeshData) *meshing.MeshData {
	c.meshMu.Lock()
	defer c.meshMu.Unlock()
	old := c.mesh
	c.mesh = m
	return old
}

// Touch records an access for eviction policies.
func (c *Chunk) Touch(now time.Time) {
	c.lastAccess.Store(now.UnixNano())
}

// LastAccess returns the last Touch time.
func (c *Chunk) LastAccess() time.Time {
	return time.Unix(0, c.lastAccess.Load())
}

// Drawable reports whether the chunk may be rendered.
func (c *Chunk) Drawable() bool {
	return c.State() == StateUploaded && c.GPU.Allocated()
}

// Center returns the chunk's horizontal centre in world units.
func (c *Chunk) Center(chunkSize float32) mgl32.Vec3 {
	half := chunkSize / 2
	return c.WorldPosition.Add(mgl32.Vec3{half, 0, half})
}
