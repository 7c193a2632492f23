// Package upload hands generated terrain meshes to the GPU on the render thread.
//
// Generation workers call Enqueue from any goroutine. The goroutine that owns
// the graphics context calls FlushUploads once per frame; it is the only code
// that mutates a chunk's GPU handles after the chunk has been queued.
package upload

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"mini-terrain/internal/meshing"
	"mini-terrain/internal/profiling"
	"mini-terrain/internal/world"
)

// MaxUploadsPerFlush caps the GPU uploads performed by one FlushUploads call.
const MaxUploadsPerFlush = 8

// ErrNilRequest is returned by Enqueue for a nil request.
var ErrNilRequest = errors.New("upload: nil request")

// GPU creates and destroys the buffers backing a chunk mesh.
// Implementations are only called from the render thread.
type GPU interface {
	// Upload creates GPU buffers for m and returns their handles and the index count to draw.
	Upload(m *meshing.MeshData) (world.Handles, int32, error)
	// Delete releases the buffers named by h.
	Delete(h world.Handles)
}

// Request pairs a chunk with the mesh to upload for it.
// The producer must not touch Mesh after enqueueing.
type Request struct {
	Chunk *world.Chunk
	Mesh  *meshing.MeshData
}

type deletionRequest struct {
	generator uint64
	key       world.ChunkKey
}

// QueueStats counts outcomes at the per-request containment points.
type QueueStats struct {
	Uploaded          int64
	Failed            int64
	Skipped           int64
	StaleHandlesFreed int64
	DeletionsDropped  int64
}

// Queue is a multi-producer, single-consumer queue of pending uploads.
type Queue struct {
	gpu  GPU
	pool *meshing.BufferPool

	mu        sync.Mutex
	pending   []*Request
	deletions []deletionRequest
	count     atomic.Int64

	uploaded   atomic.Int64
	failed     atomic.Int64
	skipped    atomic.Int64
	staleFreed atomic.Int64
	dropped    atomic.Int64

	onFailure func(req *Request, err error)
}

// NewQueue creates a queue that uploads through gpu and recycles mesh buffers into pool.
func NewQueue(gpu GPU, pool *meshing.BufferPool) *Queue {
	return &Queue{
		gpu:  gpu,
		pool: pool,
	}
}

// OnFailure registers fn to be called on the render thread after a request
// fails and its chunk has been reverted to Ready. Retry policies hook in here.
func (q *Queue) OnFailure(fn func(req *Request, err error)) {
	q.onFailure = fn
}

// Enqueue appends req. It never blocks. Request fields are checked at drain time.
func (q *Queue) Enqueue(req *Request) error {
	if req == nil {
		return ErrNilRequest
	}
	q.mu.Lock()
	q.pending = append(q.pending, req)
	q.count.Add(1)
	q.mu.Unlock()
	return nil
}

// Count returns the number of requests waiting to be drained.
func (q *Queue) Count() int {
	return int(q.count.Load())
}

// RequestDeletion is accepted for compatibility and discarded at the next flush.
func (q *Queue) RequestDeletion(generator uint64, key world.ChunkKey) {
	q.mu.Lock()
	q.deletions = append(q.deletions, deletionRequest{generator: generator, key: key})
	q.mu.Unlock()
}

// pop removes up to n requests from the front of the queue.
func (q *Queue) pop(n int) []*Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > len(q.pending) {
		n = len(q.pending)
	}
	batch := make([]*Request, n)
	copy(batch, q.pending[:n])
	clear(q.pending[:n])
	q.pending = q.pending[n:]
	if len(q.pending) == 0 {
		// Drop the backing array once drained so it does not grow without bound
		q.pending = nil
	}
	q.count.Add(int64(-n))
	return batch
}

// FlushUploads uploads up to MaxUploadsPerFlush pending meshes. It must be
// called on the goroutine that owns the graphics context. A failing request
// never aborts the batch: its chunk is reverted to Ready and the error is logged.
func (q *Queue) FlushUploads() {
	defer profiling.Track("upload.FlushUploads")()

	for _, req := range q.pop(MaxUploadsPerFlush) {
		if req.Chunk == nil || req.Mesh == nil {
			q.skipped.Add(1)
			continue
		}
		if req.Chunk.State() == world.StateUnloaded {
			// Evicted while queued
			req.Mesh.Release(q.pool)
			q.skipped.Add(1)
			continue
		}
		if err := q.apply(req); err != nil {
			req.Chunk.SetState(world.StateReady)
			q.failed.Add(1)
			log.Printf("upload: chunk %v: %v", req.Chunk.Key, err)
			if q.onFailure != nil {
				q.onFailure(req, err)
			}
		}
	}

	q.mu.Lock()
	n := len(q.deletions)
	q.deletions = nil
	q.mu.Unlock()
	q.dropped.Add(int64(n))
}

// apply performs one upload. Panics from the GPU are turned into errors.
func (q *Queue) apply(req *Request) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gpu panic: %v", r)
		}
	}()

	c := req.Chunk
	if c.GPU != (world.Handles{}) {
		q.gpu.Delete(c.GPU)
		c.GPU = world.Handles{}
		c.IndexCount = 0
		q.staleFreed.Add(1)
	}

	h, indexCount, err := q.gpu.Upload(req.Mesh)
	if err != nil {
		return err
	}
	if !h.Allocated() {
		if h != (world.Handles{}) {
			q.gpu.Delete(h)
		}
		return fmt.Errorf("gpu returned no vertex array")
	}
	c.GPU = h
	c.IndexCount = indexCount
	c.SetState(world.StateUploaded)
	c.SetMesh(req.Mesh)

	req.Mesh.Release(q.pool)
	q.uploaded.Add(1)
	return nil
}

// Unload releases a chunk's GPU buffers and mesh memory and marks it Unloaded.
// Render thread only.
func (q *Queue) Unload(c *world.Chunk) {
	if c == nil {
		return
	}
	c.SetState(world.StateUnloaded)
	if c.GPU != (world.Handles{}) {
		q.gpu.Delete(c.GPU)
		c.GPU = world.Handles{}
		c.IndexCount = 0
	}
	if m := c.SetMesh(nil); m != nil {
		m.Release(q.pool)
	}
}

// Stats returns the containment counters.
func (q *Queue) Stats() QueueStats {
	return QueueStats{
		Uploaded:          q.uploaded.Load(),
		Failed:            q.failed.Load(),
		Skipped:           q.skipped.Load(),
		StaleHandlesFreed: q.staleFreed.Load(),
		DeletionsDropped:  q.dropped.Load(),
	}
}
