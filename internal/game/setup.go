package game

import (
	"log"

	"mini-terrain/internal/config"
	"mini-terrain/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func SetupWindow(width, height int) (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(width, height, "mini-terrain", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	// Initialize OpenGL bindings
	if err := gl.Init(); err != nil {
		return nil, err
	}

	// Disable V-Sync; we'll use our own FPS limiter
	glfw.SwapInterval(0)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	return window, nil
}

// NewHeightSource picks the heightmap when configured, noise otherwise.
func NewHeightSource(wg config.WorldGenSettings) (world.HeightSource, error) {
	if wg.Heightmap == "" {
		return world.NewNoiseHeightSource(wg.Seed), nil
	}
	src, err := world.LoadImageHeightSource(wg.Heightmap, wg.HeightmapCellSize, wg.HeightmapMaxHeight)
	if err != nil {
		return nil, err
	}
	log.Printf("Using heightmap %s", wg.Heightmap)
	return src, nil
}
