package graphics

import (
	"fmt"

	"mini-terrain/internal/meshing"
	"mini-terrain/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
)

const (
	FloatSize = 4
	IntSize   = 4
)

// Vertex attribute locations shared with the terrain shader.
const (
	attribPosition    = 0
	attribNormal      = 1
	attribUV          = 2
	attribSplatWeight = 3
	attribSplatIndex  = 4
)

// GLUploader creates one VAO, VBO and EBO per chunk mesh. Attributes are stored
// as consecutive blocks in the VBO rather than interleaved, so each pooled
// array is copied with a single BufferSubData call.
type GLUploader struct{}

// NewGLUploader returns an uploader for the current GL context.
func NewGLUploader() *GLUploader {
	return &GLUploader{}
}

// Upload implements upload.GPU. Must run on the thread owning the GL context.
func (u *GLUploader) Upload(m *meshing.MeshData) (world.Handles, int32, error) {
	if !m.Uploadable() {
		if err := m.Validate(); err != nil {
			return world.Handles{}, 0, err
		}
		return world.Handles{}, 0, fmt.Errorf("%w: empty mesh", meshing.ErrInvalidMesh)
	}

	var h world.Handles
	gl.GenVertexArrays(1, &h.VAO)
	gl.GenBuffers(1, &h.VBO)
	gl.GenBuffers(1, &h.EBO)

	gl.BindVertexArray(h.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, h.VBO)

	posBytes := len(m.Vertices) * FloatSize
	nrmBytes := len(m.Normals) * FloatSize
	uvBytes := len(m.UVs) * FloatSize
	splatWBytes := len(m.SplatWeights) * FloatSize
	splatIBytes := len(m.SplatIndices) * IntSize
	total := posBytes + nrmBytes + uvBytes + splatWBytes + splatIBytes

	gl.BufferData(gl.ARRAY_BUFFER, total, nil, gl.STATIC_DRAW)

	offset := 0
	gl.BufferSubData(gl.ARRAY_BUFFER, offset, posBytes, gl.Ptr(m.Vertices))
	gl.EnableVertexAttribArray(attribPosition)
	gl.VertexAttribPointer(attribPosition, 3, gl.FLOAT, false, 3*FloatSize, gl.PtrOffset(offset))
	offset += posBytes

	gl.BufferSubData(gl.ARRAY_BUFFER, offset, nrmBytes, gl.Ptr(m.Normals))
	gl.EnableVertexAttribArray(attribNormal)
	gl.VertexAttribPointer(attribNormal, 3, gl.FLOAT, false, 3*FloatSize, gl.PtrOffset(offset))
	offset += nrmBytes

	gl.BufferSubData(gl.ARRAY_BUFFER, offset, uvBytes, gl.Ptr(m.UVs))
	gl.EnableVertexAttribArray(attribUV)
	gl.VertexAttribPointer(attribUV, 2, gl.FLOAT, false, 2*FloatSize, gl.PtrOffset(offset))
	offset += uvBytes

	if m.HasSplatting() {
		gl.BufferSubData(gl.ARRAY_BUFFER, offset, splatWBytes, gl.Ptr(m.SplatWeights))
		gl.EnableVertexAttribArray(attribSplatWeight)
		gl.VertexAttribPointer(attribSplatWeight, 4, gl.FLOAT, false, 4*FloatSize, gl.PtrOffset(offset))
		offset += splatWBytes

		gl.BufferSubData(gl.ARRAY_BUFFER, offset, splatIBytes, gl.Ptr(m.SplatIndices))
		gl.EnableVertexAttribArray(attribSplatIndex)
		gl.VertexAttribIPointer(attribSplatIndex, 1, gl.INT, IntSize, gl.PtrOffset(offset))
	} else {
		// Constant attributes: full grass, layers 0..3
		gl.VertexAttrib4f(attribSplatWeight, 0, 1, 0, 0)
		gl.VertexAttribI1i(attribSplatIndex, meshing.PackSplatIndices(meshing.LayerSand, meshing.LayerGrass, meshing.LayerRock, meshing.LayerSnow))
	}

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, h.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*IntSize, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		u.Delete(h)
		return world.Handles{}, 0, fmt.Errorf("gl error 0x%x during chunk upload", code)
	}
	return h, int32(len(m.Indices)), nil
}

// Delete implements upload.GPU.
func (u *GLUploader) Delete(h world.Handles) {
	if h.EBO != 0 {
		gl.DeleteBuffers(1, &h.EBO)
	}
	if h.VBO != 0 {
		gl.DeleteBuffers(1, &h.VBO)
	}
	if h.VAO != 0 {
		gl.DeleteVertexArrays(1, &h.VAO)
	}
}
