package bounds

import (
	"mini-terrain/internal/graphics"
	"mini-terrain/internal/graphics/renderer"
	"mini-terrain/internal/profiling"
	"mini-terrain/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const vertexShader = `#version 410 core
layout(location = 0) in vec3 aPos;

uniform mat4 uProj;
uniform mat4 uView;
uniform mat4 uModel;

void main() {
	gl_Position = uProj * uView * uModel * vec4(aPos, 1.0);
}
`

const fragmentShader = `#version 410 core
uniform vec3 uColor;
out vec4 FragColor;

void main() {
	FragColor = vec4(uColor, 1.0);
}
`

// Height of the box drawn for chunks that have no mesh yet
const placeholderHeight float32 = 4

// Bounds outlines every known chunk, coloured by lifecycle state.
// It is a debug overlay and draws nothing unless Enabled.
type Bounds struct {
	Enabled bool

	shader *graphics.Shader
	vao    uint32
	vbo    uint32
}

// NewBounds creates a disabled overlay
func NewBounds() *Bounds {
	return &Bounds{}
}

func (b *Bounds) Init() error {
	var err error
	b.shader, err = graphics.NewShader(vertexShader, fragmentShader)
	if err != nil {
		return err
	}
	b.setupCubeVAO()
	return nil
}

func (b *Bounds) Render(ctx renderer.RenderContext) {
	if !b.Enabled {
		return
	}
	defer profiling.Track("bounds.Render")()

	b.shader.Use()
	b.shader.SetMat4("uProj", ctx.Proj)
	b.shader.SetMat4("uView", ctx.View)

	gl.BindVertexArray(b.vao)
	gl.LineWidth(1.0)
	size := ctx.Store.ChunkSize()
	for _, c := range ctx.Store.Snapshot() {
		lo, hi := box(c, size)
		b.shader.SetMat4("uModel", boxModel(lo, hi))
		b.shader.SetVec3("uColor", stateColor(c.State()))
		gl.DrawArrays(gl.LINES, 0, 24)
	}
	gl.BindVertexArray(0)
}

func (b *Bounds) Dispose() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
	}
	if b.shader != nil {
		b.shader.Delete()
	}
}

func (b *Bounds) SetViewport(width, height int) {}

// setupCubeVAO uploads a unit cube outline spanning [0,1] on each axis.
func (b *Bounds) setupCubeVAO() {
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)

	vertices := []float32{
		// Bottom
		0, 0, 0, 1, 0, 0,
		1, 0, 0, 1, 0, 1,
		1, 0, 1, 0, 0, 1,
		0, 0, 1, 0, 0, 0,

		// Top
		0, 1, 0, 1, 1, 0,
		1, 1, 0, 1, 1, 1,
		1, 1, 1, 0, 1, 1,
		0, 1, 1, 0, 1, 0,

		// Verticals
		0, 0, 0, 0, 1, 0,
		1, 0, 0, 1, 1, 0,
		1, 0, 1, 1, 1, 1,
		0, 0, 1, 0, 1, 1,
	}

	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*graphics.FloatSize, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*graphics.FloatSize, 0)
	gl.BindVertexArray(0)
}

// box returns the chunk's world-space bounds. Chunks without height data get a
// thin slab at their origin.
func box(c *world.Chunk, size float32) (lo, hi mgl32.Vec3) {
	lo = c.WorldPosition
	hi = c.WorldPosition.Add(mgl32.Vec3{size, placeholderHeight, size})
	if m := c.Mesh(); m != nil && m.VertexCount > 0 {
		lo[1], hi[1] = m.MinHeight, m.MaxHeight
		if hi[1]-lo[1] < placeholderHeight {
			hi[1] = lo[1] + placeholderHeight
		}
	}
	return lo, hi
}

// boxModel maps the unit cube onto [lo, hi], slightly inflated to avoid z-fighting.
func boxModel(lo, hi mgl32.Vec3) mgl32.Mat4 {
	ext := hi.Sub(lo).Mul(1.01)
	return mgl32.Translate3D(lo.X(), lo.Y(), lo.Z()).Mul4(mgl32.Scale3D(ext.X(), ext.Y(), ext.Z()))
}

func stateColor(s world.ChunkState) mgl32.Vec3 {
	switch s {
	case world.StatePending:
		return mgl32.Vec3{0.5, 0.5, 0.5}
	case world.StateGenerating:
		return mgl32.Vec3{0.2, 0.4, 1.0}
	case world.StateReady:
		return mgl32.Vec3{1.0, 0.8, 0.1}
	case world.StateUploaded:
		return mgl32.Vec3{0.1, 0.8, 0.2}
	}
	return mgl32.Vec3{0.9, 0.1, 0.1}
}
