package game

import (
	"log"
	"time"

	"mini-terrain/internal/config"
	"mini-terrain/internal/graphics"
	"mini-terrain/internal/meshing"
	"mini-terrain/internal/streaming"
	"mini-terrain/internal/upload"
	"mini-terrain/internal/world"
)

// Session owns the streaming pipeline: chunk records, buffer pool, upload
// queue and generation workers. All methods except Shutdown's worker wait
// run on the render thread.
type Session struct {
	Store    *world.ChunkStore
	Pool     *meshing.BufferPool
	Queue    *upload.Queue
	Streamer *streaming.Streamer

	lastEviction time.Time
}

// NewSession wires the pipeline to gpu using the current config.
func NewSession(gpu upload.GPU, src world.HeightSource) *Session {
	wg := config.WorldGen()
	st := config.Stream()

	store := world.NewChunkStore(wg.ChunkSize)
	pool := meshing.NewBufferPool()
	queue := upload.NewQueue(gpu, pool)

	opts := streaming.DefaultOptions()
	if st.Workers > 0 {
		opts.Workers = st.Workers
	}
	opts.MaxInFlight = st.MaxInFlight
	opts.MaxJobsPerCall = st.MaxJobsPerCall
	opts.Mesh = meshing.HeightfieldSettings{
		Resolution: wg.Resolution,
		ChunkSize:  wg.ChunkSize,
		Splatting:  wg.Splatting,
		SandLevel:  wg.SandLevel,
		SnowLevel:  wg.SnowLevel,
	}

	return &Session{
		Store:    store,
		Pool:     pool,
		Queue:    queue,
		Streamer: streaming.NewStreamer(store, queue, pool, src, opts),
	}
}

// Update streams around the camera, drains this frame's uploads and evicts
// far or stale chunks twice a second.
func (s *Session) Update(cam *graphics.Camera) {
	st := config.Stream()
	x, z := cam.Position.X(), cam.Position.Z()

	s.Streamer.StreamAround(x, z, config.GetRenderDistance())
	s.Queue.FlushUploads()

	if time.Since(s.lastEviction) > 500*time.Millisecond {
		s.lastEviction = time.Now()
		s.Streamer.EvictFarChunks(x, z, config.GetChunkEvictRadius())
		if st.StaleSeconds > 0 {
			s.Streamer.EvictStale(time.Duration(st.StaleSeconds) * time.Second)
		}
	}
}

// LogStats prints pipeline counters.
func (s *Session) LogStats() {
	q := s.Queue.Stats()
	p := s.Pool.Stats()
	log.Printf("chunks=%d queued=%d inflight=%d uploaded=%d failed=%d skipped=%d stale=%d pool(reuse=%d alloc=%d)",
		s.Store.Len(), s.Queue.Count(), s.Streamer.InFlight(),
		q.Uploaded, q.Failed, q.Skipped, q.StaleHandlesFreed, p.Reuses, p.Allocations)
}

// Shutdown stops the workers and releases every chunk's GPU and mesh memory.
// Must run on the render thread while the GL context is current.
func (s *Session) Shutdown() {
	s.Streamer.Shutdown()
	for _, c := range s.Store.Snapshot() {
		s.Queue.Unload(c)
		s.Store.Remove(c.Key)
	}
	// Drain requests queued before the workers stopped; their chunks are Unloaded now
	for s.Queue.Count() > 0 {
		s.Queue.FlushUploads()
	}
}
