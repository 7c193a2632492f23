package terrain

import (
	"mini-terrain/internal/graphics"
	"mini-terrain/internal/graphics/renderer"
	"mini-terrain/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const vertexShader = `#version 410 core
layout(location = 0) in vec3 aPos;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec2 aUV;
layout(location = 3) in vec4 aSplatWeights;
layout(location = 4) in int aSplatIndices;

uniform mat4 uView;
uniform mat4 uProj;

out vec3 vNormal;
out vec4 vWeights;
flat out int vLayers;
out float vDist;

void main() {
	vNormal = aNormal;
	vWeights = aSplatWeights;
	vLayers = aSplatIndices;
	vec4 viewPos = uView * vec4(aPos, 1.0);
	vDist = length(viewPos.xyz);
	gl_Position = uProj * viewPos;
}
`

const fragmentShader = `#version 410 core
in vec3 vNormal;
in vec4 vWeights;
flat in int vLayers;
in float vDist;

uniform vec3 uSunDir;
uniform vec3 uFogColor;
uniform float uFogEnd;

out vec4 FragColor;

const vec3 palette[4] = vec3[4](
	vec3(0.76, 0.70, 0.50),
	vec3(0.30, 0.55, 0.22),
	vec3(0.45, 0.43, 0.40),
	vec3(0.95, 0.95, 0.97)
);

vec3 layer(int shift) {
	return palette[(vLayers >> shift) & 3];
}

void main() {
	vec3 albedo = layer(0) * vWeights.x + layer(8) * vWeights.y +
		layer(16) * vWeights.z + layer(24) * vWeights.w;
	float diffuse = max(dot(normalize(vNormal), -uSunDir), 0.0);
	vec3 color = albedo * (0.35 + 0.65 * diffuse);
	float fog = clamp(vDist / uFogEnd, 0.0, 1.0);
	FragColor = vec4(mix(color, uFogColor, fog * fog), 1.0);
}
`

// Terrain draws every uploaded chunk that survives frustum culling.
type Terrain struct {
	shader    *graphics.Shader
	Wireframe bool
	FogEnd    float32

	// Chunks drawn during the last frame
	Drawn int
}

func NewTerrain() *Terrain {
	return &Terrain{FogEnd: 1500}
}

func (t *Terrain) Init() error {
	s, err := graphics.NewShader(vertexShader, fragmentShader)
	if err != nil {
		return err
	}
	t.shader = s
	return nil
}

func (t *Terrain) Render(ctx renderer.RenderContext) {
	defer profiling.Track("terrain.Render")()

	frustum := NewFrustum(ctx.Proj.Mul4(ctx.View))
	size := ctx.Store.ChunkSize()

	t.shader.Use()
	t.shader.SetMat4("uView", ctx.View)
	t.shader.SetMat4("uProj", ctx.Proj)
	t.shader.SetVec3("uSunDir", mgl32.Vec3{-0.4, -1, -0.3}.Normalize())
	t.shader.SetVec3("uFogColor", mgl32.Vec3{0.62, 0.74, 0.86})
	t.shader.SetFloat("uFogEnd", t.FogEnd)

	if t.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	t.Drawn = 0
	for _, c := range ctx.Store.Snapshot() {
		if !c.Drawable() {
			continue
		}
		lo, hi := c.WorldPosition, c.WorldPosition.Add(mgl32.Vec3{size, 0, size})
		if m := c.Mesh(); m != nil {
			lo[1], hi[1] = m.MinHeight, m.MaxHeight
		}
		if !frustum.IntersectsAABB(lo, hi) {
			continue
		}
		gl.BindVertexArray(c.GPU.VAO)
		gl.DrawElements(gl.TRIANGLES, c.IndexCount, gl.UNSIGNED_INT, nil)
		t.Drawn++
	}
	gl.BindVertexArray(0)
}

func (t *Terrain) Dispose() {
	if t.shader != nil {
		t.shader.Delete()
	}
}

func (t *Terrain) SetViewport(width, height int) {}
