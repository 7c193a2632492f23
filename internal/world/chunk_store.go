package world

import (
	"sync"
	"time"
)

// ChunkStore owns the chunk records known to the streaming system.
type ChunkStore struct {
	chunks    map[ChunkKey]*Chunk
	mu        sync.RWMutex
	modCount  uint64 // Increases on any chunk add/remove
	chunkSize float32
}

// NewChunkStore creates a store whose chunks span chunkSize world units.
func NewChunkStore(chunkSize float32) *ChunkStore {
	return &ChunkStore{
		chunks:    make(map[ChunkKey]*Chunk),
		chunkSize: chunkSize,
	}
}

// ChunkSize returns the world-space edge length of a chunk.
func (cs *ChunkStore) ChunkSize() float32 {
	return cs.chunkSize
}

// Get returns the chunk at key, or nil.
func (cs *ChunkStore) Get(key ChunkKey) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[key]
}

// GetOrCreate returns the chunk at key, creating a Pending one if missing.
// The boolean is true when the chunk was created by this call.
func (cs *ChunkStore) GetOrCreate(key ChunkKey) (*Chunk, bool) {
	cs.mu.RLock()
	c, ok := cs.chunks[key]
	cs.mu.RUnlock()
	if ok {
		return c, false
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	// Double-check: another goroutine may have created it while we waited for the lock
	if c, ok := cs.chunks[key]; ok {
		return c, false
	}
	c = NewChunk(key, cs.chunkSize)
	cs.chunks[key] = c
	cs.modCount++
	return c, true
}

// Remove deletes the record at key. It does not release GPU or mesh resources.
func (cs *ChunkStore) Remove(key ChunkKey) {
	cs.mu.Lock()
	if _, ok := cs.chunks[key]; ok {
		delete(cs.chunks, key)
		cs.modCount++
	}
	cs.mu.Unlock()
}

// Len returns the number of chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// ModCount returns a counter bumped on every add or remove.
func (cs *ChunkStore) ModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// Snapshot returns all chunks in unspecified order.
func (cs *ChunkStore) Snapshot() []*Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]*Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		out = append(out, c)
	}
	return out
}

// OutsideRadius returns chunks farther than radius cells from (cx, cz) on
// either axis. The square matches the rings chunks are streamed in.
func (cs *ChunkStore) OutsideRadius(cx, cz int32, radius int) []*Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	r := int64(radius)
	var out []*Chunk
	for key, c := range cs.chunks {
		dx := int64(key.X) - int64(cx)
		dz := int64(key.Z) - int64(cz)
		if max(dx, -dx, dz, -dz) > r {
			out = append(out, c)
		}
	}
	return out
}

// Stale returns chunks whose last access is before cutoff.
func (cs *ChunkStore) Stale(cutoff time.Time) []*Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	var out []*Chunk
	for _, c := range cs.chunks {
		if c.LastAccess().Before(cutoff) {
			out = append(out, c)
		}
	}
	return out
}

// KeyAt returns the key of the chunk containing world position (x, z).
func (cs *ChunkStore) KeyAt(x, z float32) ChunkKey {
	return ChunkKey{X: floorDiv(x, cs.chunkSize), Z: floorDiv(z, cs.chunkSize)}
}

func floorDiv(v, size float32) int32 {
	q := v / size
	i := int32(q)
	if q < 0 && float32(i) != q {
		i--
	}
	return i
}
