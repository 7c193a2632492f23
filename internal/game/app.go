package game

import (
	"log"
	"time"

	"mini-terrain/internal/graphics"
	"mini-terrain/internal/graphics/renderables/bounds"
	"mini-terrain/internal/graphics/renderables/terrain"
	"mini-terrain/internal/graphics/renderer"
	"mini-terrain/internal/input"
	"mini-terrain/internal/profiling"
	"mini-terrain/internal/world"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// Fly speed in world units per second
const (
	flySpeed     = 40.0
	fastMultiple = 6.0
)

type App struct {
	window       *glfw.Window
	inputManager *input.Manager

	camera   *graphics.Camera
	renderer *renderer.Renderer
	terrain  *terrain.Terrain
	bounds   *bounds.Bounds
	session  *Session

	fpsLimiter *FPSLimiter
	lastTime   time.Time

	frames           int
	lastFPSCheckTime time.Time
	showStats        bool
	mouseCaptured    bool
}

// NewApp builds the renderer and streaming session for window.
func NewApp(window *glfw.Window, src world.HeightSource) (*App, error) {
	im := input.NewManager()
	im.Attach(window)

	width, height := window.GetSize()
	camera := graphics.NewCamera(width, height)
	camera.Position = mgl32.Vec3{0, float32(src.HeightAt(0, 0)) + 40, 0}

	t := terrain.NewTerrain()
	b := bounds.NewBounds()
	r, err := renderer.NewRenderer(camera, t, b)
	if err != nil {
		return nil, err
	}

	a := &App{
		window:           window,
		inputManager:     im,
		camera:           camera,
		renderer:         r,
		terrain:          t,
		bounds:           b,
		session:          NewSession(graphics.NewGLUploader(), src),
		fpsLimiter:       NewFPSLimiter(),
		lastTime:         time.Now(),
		lastFPSCheckTime: time.Now(),
		mouseCaptured:    true,
	}

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		a.renderer.UpdateViewport(width, height)
	})
	fbw, fbh := window.GetFramebufferSize()
	a.renderer.UpdateViewport(fbw, fbh)
	return a, nil
}

func (a *App) Run() {
	for !a.window.ShouldClose() {
		a.tick()
	}
}

func (a *App) tick() {
	profiling.ResetFrame()
	startTick := time.Now() // Measure pure processing time
	now := time.Now()
	dt := now.Sub(a.lastTime).Seconds()
	a.lastTime = now

	glfw.PollEvents()
	a.handleInput(dt)

	a.session.Update(a.camera)
	a.renderer.Render(a.session.Store, dt)

	a.window.SwapBuffers()

	a.frames++
	if time.Since(a.lastFPSCheckTime) >= time.Second {
		if a.showStats {
			log.Printf("FPS: %d drawn=%d", a.frames, a.terrain.Drawn)
			a.session.LogStats()
		}
		a.frames = 0
		a.lastFPSCheckTime = time.Now()
	}

	// Check if frame took too long (> 16ms)
	processingDuration := time.Since(startTick)
	if processingDuration > 16*time.Millisecond {
		log.Printf("Slow frame: %v. Top tasks: %s", processingDuration, profiling.TopN(5))
	}

	a.inputManager.PostUpdate() // Clear "JustPressed" flags
	a.fpsLimiter.Wait(!a.mouseCaptured)
}

func (a *App) handleInput(dt float64) {
	im := a.inputManager

	if im.JustPressed(input.ActionQuit) {
		a.window.SetShouldClose(true)
		return
	}
	if im.JustPressed(input.ActionToggleWireframe) {
		a.terrain.Wireframe = !a.terrain.Wireframe
	}
	if im.JustPressed(input.ActionToggleBounds) {
		a.bounds.Enabled = !a.bounds.Enabled
	}
	if im.JustPressed(input.ActionToggleStats) {
		a.showStats = !a.showStats
	}
	if im.JustPressed(input.ActionToggleMouse) {
		a.mouseCaptured = !a.mouseCaptured
		mode := glfw.CursorNormal
		if a.mouseCaptured {
			mode = glfw.CursorDisabled
		}
		a.window.SetInputMode(glfw.CursorMode, mode)
	}

	if a.mouseCaptured {
		a.camera.Look(im.MouseDelta())
	}

	speed := float32(flySpeed * dt)
	if im.IsActive(input.ActionFast) {
		speed *= fastMultiple
	}
	var fwd, right, up float32
	if im.IsActive(input.ActionMoveForward) {
		fwd += speed
	}
	if im.IsActive(input.ActionMoveBackward) {
		fwd -= speed
	}
	if im.IsActive(input.ActionMoveRight) {
		right += speed
	}
	if im.IsActive(input.ActionMoveLeft) {
		right -= speed
	}
	if im.IsActive(input.ActionMoveUp) {
		up += speed
	}
	if im.IsActive(input.ActionMoveDown) {
		up -= speed
	}
	a.camera.Move(fwd, right, up)
}

// Close tears down the session and GL resources. Must run on the main thread.
func (a *App) Close() {
	a.session.Shutdown()
	a.renderer.Dispose()
}
