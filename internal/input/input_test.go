package input

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func TestPressEdges(t *testing.T) {
	m := NewManager()

	m.HandleKeyEvent(glfw.KeyW, glfw.Press)
	if !m.IsActive(ActionMoveForward) || !m.JustPressed(ActionMoveForward) {
		t.Fatal("press should set held and just-pressed")
	}

	m.PostUpdate()
	if m.JustPressed(ActionMoveForward) {
		t.Fatal("PostUpdate should clear just-pressed")
	}

	// Key repeat is not a new edge
	m.HandleKeyEvent(glfw.KeyW, glfw.Repeat)
	if m.JustPressed(ActionMoveForward) || !m.IsActive(ActionMoveForward) {
		t.Fatal("repeat must keep the action held without a new edge")
	}

	m.HandleKeyEvent(glfw.KeyW, glfw.Release)
	if m.IsActive(ActionMoveForward) || !m.JustReleased(ActionMoveForward) {
		t.Fatal("release should clear held and set just-released")
	}
}

func TestSeveralKeysForOneAction(t *testing.T) {
	m := NewManager()
	m.HandleKeyEvent(glfw.KeyUp, glfw.Press)
	if !m.IsActive(ActionMoveForward) {
		t.Fatal("arrow key should drive the forward action")
	}
}

func TestBindAndUnbind(t *testing.T) {
	m := NewManager()
	m.BindKey(glfw.KeyQ, ActionQuit)
	m.HandleKeyEvent(glfw.KeyQ, glfw.Press)
	if !m.JustPressed(ActionQuit) {
		t.Fatal("bound key not reported")
	}
	m.PostUpdate()
	m.HandleKeyEvent(glfw.KeyQ, glfw.Release)

	m.UnbindKey(glfw.KeyQ)
	m.HandleKeyEvent(glfw.KeyQ, glfw.Press)
	if m.IsActive(ActionQuit) {
		t.Fatal("unbound key still drives the action")
	}

	m.BindKey(glfw.KeyE, ActionCount)
	m.HandleKeyEvent(glfw.KeyE, glfw.Press)
	if m.IsActive(ActionCount) || m.JustPressed(-1) {
		t.Fatal("out of range actions must be ignored")
	}
}

func TestMouseDelta(t *testing.T) {
	m := NewManager()
	m.HandleCursor(100, 100) // first sample only sets the origin
	if dx, dy := m.MouseDelta(); dx != 0 || dy != 0 {
		t.Fatalf("first cursor event produced delta %v,%v", dx, dy)
	}
	m.HandleCursor(110, 95)
	m.HandleCursor(115, 90)
	if dx, dy := m.MouseDelta(); dx != 15 || dy != 10 {
		t.Fatalf("delta = %v,%v, want 15,10", dx, dy)
	}
	m.PostUpdate()
	if dx, dy := m.MouseDelta(); dx != 0 || dy != 0 {
		t.Fatalf("PostUpdate left delta %v,%v", dx, dy)
	}
}
