package world

import (
	"sync"
	"testing"
	"time"
)

func TestGetOrCreate(t *testing.T) {
	cs := NewChunkStore(64)
	k := ChunkKey{X: 1, Z: -1}
	if cs.Get(k) != nil {
		t.Fatal("empty store returned a chunk")
	}
	c, created := cs.GetOrCreate(k)
	if !created || c == nil {
		t.Fatal("first GetOrCreate should create")
	}
	again, created := cs.GetOrCreate(k)
	if created || again != c {
		t.Fatal("second GetOrCreate should return the same chunk")
	}
	if cs.Len() != 1 || cs.ModCount() != 1 {
		t.Fatalf("len=%d mod=%d", cs.Len(), cs.ModCount())
	}
}

func TestGetOrCreateConcurrent(t *testing.T) {
	cs := NewChunkStore(64)
	k := ChunkKey{X: 7, Z: 7}
	var wg sync.WaitGroup
	got := make([]*Chunk, 32)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = cs.GetOrCreate(k)
		}(i)
	}
	wg.Wait()
	for i := range got {
		if got[i] != got[0] {
			t.Fatal("concurrent GetOrCreate returned different chunks")
		}
	}
	if cs.Len() != 1 {
		t.Fatalf("len = %d, want 1", cs.Len())
	}
}

func TestRemove(t *testing.T) {
	cs := NewChunkStore(64)
	k := ChunkKey{X: 3}
	cs.GetOrCreate(k)
	cs.Remove(k)
	cs.Remove(k)
	if cs.Len() != 0 {
		t.Fatalf("len = %d, want 0", cs.Len())
	}
	if cs.ModCount() != 2 {
		t.Fatalf("mod = %d, want 2 (missing key must not bump)", cs.ModCount())
	}
}

func TestOutsideRadius(t *testing.T) {
	cs := NewChunkStore(16)
	for x := int32(-3); x <= 3; x++ {
		cs.GetOrCreate(ChunkKey{X: x})
	}
	far := cs.OutsideRadius(0, 0, 2)
	if len(far) != 2 {
		t.Fatalf("got %d chunks outside radius 2, want 2", len(far))
	}
	for _, c := range far {
		if c.Key.X != -3 && c.Key.X != 3 {
			t.Errorf("unexpected chunk %v", c.Key)
		}
	}
}

func TestOutsideRadiusIsSquare(t *testing.T) {
	cs := NewChunkStore(16)
	corner, _ := cs.GetOrCreate(ChunkKey{X: 4, Z: -4})
	cs.GetOrCreate(ChunkKey{X: 3, Z: 3})
	if far := cs.OutsideRadius(0, 0, 4); len(far) != 0 {
		t.Fatalf("%d chunks outside radius 4, want 0", len(far))
	}
	far := cs.OutsideRadius(1, 0, 3)
	if len(far) != 1 || far[0] != corner {
		t.Fatalf("OutsideRadius(1,0,3) returned %d chunks", len(far))
	}
}

func TestStale(t *testing.T) {
	cs := NewChunkStore(16)
	old, _ := cs.GetOrCreate(ChunkKey{X: 1})
	fresh, _ := cs.GetOrCreate(ChunkKey{X: 2})
	now := time.Now()
	old.Touch(now.Add(-time.Minute))
	fresh.Touch(now)

	stale := cs.Stale(now.Add(-30 * time.Second))
	if len(stale) != 1 || stale[0] != old {
		t.Fatalf("Stale returned %d chunks", len(stale))
	}
	if len(cs.Snapshot()) != 2 {
		t.Fatal("Snapshot should list every chunk")
	}
}

func TestKeyAt(t *testing.T) {
	cs := NewChunkStore(64)
	tests := []struct {
		x, z float32
		want ChunkKey
	}{
		{0, 0, ChunkKey{0, 0}},
		{63.9, 64, ChunkKey{0, 1}},
		{-0.1, -64, ChunkKey{-1, -1}},
		{-64.5, 130, ChunkKey{-2, 2}},
	}
	for _, tt := range tests {
		if got := cs.KeyAt(tt.x, tt.z); got != tt.want {
			t.Errorf("KeyAt(%v,%v) = %v, want %v", tt.x, tt.z, got, tt.want)
		}
	}
}
