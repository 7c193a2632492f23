package game

import (
	"testing"
	"time"

	"mini-terrain/internal/config"
	"mini-terrain/internal/graphics"
	"mini-terrain/internal/meshing"
	"mini-terrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

type memGPU struct {
	next uint32
	live map[uint32]bool
}

func (g *memGPU) Upload(m *meshing.MeshData) (world.Handles, int32, error) {
	g.next++
	g.live[g.next] = true
	return world.Handles{VAO: g.next, VBO: g.next, EBO: g.next}, int32(m.IndexCount), nil
}

func (g *memGPU) Delete(h world.Handles) {
	delete(g.live, h.VAO)
}

func smallWorld(t *testing.T) {
	t.Helper()
	st := config.DefaultStreamSettings()
	st.RenderDistance = 2
	st.EvictMargin = 1
	st.Workers = 2
	config.SetStream(st)

	wg := config.DefaultWorldGenSettings()
	wg.Resolution = 4
	wg.ChunkSize = 16
	config.SetWorldGen(wg)

	t.Cleanup(func() {
		config.SetStream(config.DefaultStreamSettings())
		config.SetWorldGen(config.DefaultWorldGenSettings())
	})
}

func TestSessionStreamsAndShutsDownClean(t *testing.T) {
	smallWorld(t)
	gpu := &memGPU{live: make(map[uint32]bool)}
	s := NewSession(gpu, world.NewFlatHeightSource(3))
	cam := graphics.NewCamera(800, 600)

	// Radius 2 covers a 5x5 square
	deadline := time.Now().Add(5 * time.Second)
	for len(gpu.live) < 25 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d of 25 chunks uploaded", len(gpu.live))
		}
		s.Update(cam)
		time.Sleep(time.Millisecond)
	}

	// Fly far enough that the evict radius no longer covers the old chunks
	cam.Position = mgl32.Vec3{16 * 20, 0, 0}
	s.lastEviction = time.Time{}
	s.Update(cam)
	for _, c := range s.Store.Snapshot() {
		if c.Key.X < 20-3 {
			t.Fatalf("chunk %v should have been evicted", c.Key)
		}
	}

	s.Shutdown()
	if s.Store.Len() != 0 || s.Queue.Count() != 0 {
		t.Fatalf("store=%d queued=%d after shutdown", s.Store.Len(), s.Queue.Count())
	}
	if len(gpu.live) != 0 {
		t.Fatalf("%d GPU handle sets leaked", len(gpu.live))
	}
}

func TestSessionFollowsRenderDistance(t *testing.T) {
	smallWorld(t)
	config.SetRenderDistance(3)
	gpu := &memGPU{live: make(map[uint32]bool)}
	s := NewSession(gpu, world.NewFlatHeightSource(3))
	defer s.Shutdown()
	cam := graphics.NewCamera(800, 600)

	deadline := time.Now().Add(5 * time.Second)
	for len(gpu.live) < 49 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d of 49 chunks uploaded", len(gpu.live))
		}
		s.Update(cam)
		time.Sleep(time.Millisecond)
	}
	if s.Store.Len() != 49 {
		t.Fatalf("store has %d chunks, want 49", s.Store.Len())
	}
}
