// Package streaming schedules terrain chunk generation around a focus point.
//
// StreamAround and the eviction calls run on the render thread. Mesh building
// runs on background workers, which hand finished meshes to the upload queue.
package streaming

import (
	"context"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"mini-terrain/internal/meshing"
	"mini-terrain/internal/profiling"
	"mini-terrain/internal/upload"
	"mini-terrain/internal/world"
)

// Options tunes the streamer. Zero fields take defaults.
type Options struct {
	Workers        int
	JobQueueSize   int
	MaxJobsPerCall int
	// MaxInFlight caps queued uploads plus jobs still generating.
	MaxInFlight int
	MaxRetries  int
	Mesh        meshing.HeightfieldSettings
}

// DefaultOptions returns settings sized for the current machine.
func DefaultOptions() Options {
	return Options{
		Workers:        max(runtime.NumCPU()-1, 1),
		JobQueueSize:   256,
		MaxJobsPerCall: 64,
		MaxInFlight:    64,
		MaxRetries:     3,
		Mesh:           meshing.DefaultHeightfieldSettings(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	if o.JobQueueSize <= 0 {
		o.JobQueueSize = d.JobQueueSize
	}
	if o.MaxJobsPerCall <= 0 {
		o.MaxJobsPerCall = d.MaxJobsPerCall
	}
	if o.MaxInFlight <= 0 {
		o.MaxInFlight = d.MaxInFlight
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = d.MaxRetries
	}
	if o.Mesh.Resolution <= 0 || o.Mesh.ChunkSize <= 0 {
		o.Mesh = d.Mesh
	}
	return o
}

type retryEntry struct {
	req      *upload.Request
	attempts int
	queued   bool
}

// Streamer generates meshes for chunks near the focus and evicts far ones.
type Streamer struct {
	opts  Options
	store *world.ChunkStore
	queue *upload.Queue
	pool  *meshing.BufferPool
	src   world.HeightSource

	jobs      chan *world.Chunk
	pending   map[world.ChunkKey]struct{}
	pendingMu sync.Mutex
	inFlight  atomic.Int64

	// Failed uploads waiting to be re-enqueued; render thread only
	retries map[world.ChunkKey]*retryEntry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStreamer creates a streamer and starts its workers.
func NewStreamer(store *world.ChunkStore, queue *upload.Queue, pool *meshing.BufferPool, src world.HeightSource, opts Options) *Streamer {
	opts = opts.withDefaults()
	opts.Mesh.ChunkSize = store.ChunkSize()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Streamer{
		opts:    opts,
		store:   store,
		queue:   queue,
		pool:    pool,
		src:     src,
		jobs:    make(chan *world.Chunk, opts.JobQueueSize),
		pending: make(map[world.ChunkKey]struct{}),
		retries: make(map[world.ChunkKey]*retryEntry),
		ctx:     ctx,
		cancel:  cancel,
	}
	queue.OnFailure(s.scheduleRetry)

	for i := 0; i < opts.Workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	return s
}

// Shutdown stops the workers and waits for them to exit.
func (s *Streamer) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

func (s *Streamer) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case c := <-s.jobs:
			s.generate(c)
			s.pendingMu.Lock()
			delete(s.pending, c.Key)
			s.pendingMu.Unlock()
			s.inFlight.Add(-1)
		case <-s.ctx.Done():
			return
		}
	}
}

// generate builds a chunk's mesh and queues it for upload.
func (s *Streamer) generate(c *world.Chunk) {
	if !c.TryClaim() {
		return
	}
	mesh := meshing.BuildHeightfieldMesh(s.pool, s.src, c.WorldPosition.X(), c.WorldPosition.Z(), s.opts.Mesh)
	if !c.Transition(world.StateGenerating, world.StateReady) {
		// Unloaded while generating
		mesh.Release(s.pool)
		return
	}
	c.SetMesh(mesh)
	if err := s.queue.Enqueue(&upload.Request{Chunk: c, Mesh: mesh}); err != nil {
		log.Printf("streaming: enqueue %v: %v", c.Key, err)
	}
}

// InFlight returns jobs submitted but not yet handed to the upload queue.
func (s *Streamer) InFlight() int {
	return int(s.inFlight.Load())
}

// backlog is the work already committed: queued uploads plus generating jobs.
func (s *Streamer) backlog() int {
	return s.queue.Count() + s.InFlight()
}

// StreamAround requests chunks within radius cells of world (x, z), nearest
// rings first. It stops early once the backlog limit or the per-call cap is
// reached. Returns the number of jobs submitted.
func (s *Streamer) StreamAround(x, z float32, radius int) int {
	defer profiling.Track("streaming.StreamAround")()

	s.flushRetries()

	center := s.store.KeyAt(x, z)
	now := time.Now()
	pushed := 0

	for r := 0; r <= radius; r++ {
		for _, key := range ring(center, r) {
			c, _ := s.store.GetOrCreate(key)
			c.Touch(now)
			if c.State() != world.StatePending {
				continue
			}
			if pushed >= s.opts.MaxJobsPerCall || s.backlog() >= s.opts.MaxInFlight {
				return pushed
			}
			if s.submit(c) {
				pushed++
			}
		}
	}
	return pushed
}

// submit queues c for generation unless it is already pending. Never blocks.
func (s *Streamer) submit(c *world.Chunk) bool {
	s.pendingMu.Lock()
	if _, ok := s.pending[c.Key]; ok {
		s.pendingMu.Unlock()
		return false
	}
	s.pending[c.Key] = struct{}{}
	s.pendingMu.Unlock()

	s.inFlight.Add(1)
	select {
	case s.jobs <- c:
		return true
	default:
		// queue full: rollback
		s.inFlight.Add(-1)
		s.pendingMu.Lock()
		delete(s.pending, c.Key)
		s.pendingMu.Unlock()
		return false
	}
}

// ring returns the keys on the square ring of radius r around center.
func ring(center world.ChunkKey, r int) []world.ChunkKey {
	if r == 0 {
		return []world.ChunkKey{center}
	}
	rr := int32(r)
	x0, x1 := center.X-rr, center.X+rr
	z0, z1 := center.Z-rr, center.Z+rr
	out := make([]world.ChunkKey, 0, 8*r)
	for x := x0; x <= x1; x++ {
		out = append(out, world.ChunkKey{X: x, Z: z0})
	}
	for z := z0 + 1; z <= z1-1; z++ {
		out = append(out, world.ChunkKey{X: x1, Z: z})
	}
	for x := x1; x >= x0; x-- {
		out = append(out, world.ChunkKey{X: x, Z: z1})
	}
	for z := z1 - 1; z >= z0+1; z-- {
		out = append(out, world.ChunkKey{X: x0, Z: z})
	}
	return out
}

// scheduleRetry is the queue's failure hook. It runs on the render thread.
func (s *Streamer) scheduleRetry(req *upload.Request, err error) {
	e := s.retries[req.Chunk.Key]
	if e == nil {
		e = &retryEntry{}
		s.retries[req.Chunk.Key] = e
	}
	e.req = req
	e.attempts++
	e.queued = false
}

// flushRetries re-enqueues failed uploads. After MaxRetries attempts the mesh
// is dropped and the chunk returns to Pending.
func (s *Streamer) flushRetries() {
	for key, e := range s.retries {
		c := e.req.Chunk
		if c.State() != world.StateReady || e.req.Mesh.Released() {
			// Uploaded, unloaded or regenerated since the failure
			delete(s.retries, key)
			continue
		}
		if e.queued {
			continue
		}
		if e.attempts > s.opts.MaxRetries {
			log.Printf("streaming: dropping mesh of chunk %v after %d failed uploads", key, e.attempts)
			// Back to Pending so the next pass regenerates it
			if c.Transition(world.StateReady, world.StatePending) && c.Mesh() == e.req.Mesh {
				c.SetMesh(nil)
			}
			e.req.Mesh.Release(s.pool)
			delete(s.retries, key)
			continue
		}
		if err := s.queue.Enqueue(e.req); err == nil {
			e.queued = true
		}
	}
}

// EvictFarChunks unloads chunks farther than radius cells from world (x, z).
// Render thread only. Returns the number of chunks removed.
func (s *Streamer) EvictFarChunks(x, z float32, radius int) int {
	defer profiling.Track("streaming.EvictFarChunks")()
	center := s.store.KeyAt(x, z)
	return s.evict(s.store.OutsideRadius(center.X, center.Z, radius))
}

// EvictStale unloads chunks not touched within maxAge. Render thread only.
func (s *Streamer) EvictStale(maxAge time.Duration) int {
	return s.evict(s.store.Stale(time.Now().Add(-maxAge)))
}

func (s *Streamer) evict(chunks []*world.Chunk) int {
	for _, c := range chunks {
		s.queue.Unload(c)
		s.store.Remove(c.Key)
		delete(s.retries, c.Key)
	}
	return len(chunks)
}
