package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAccumulatesPerFrame(t *testing.T) {
	ResetFrame()
	for iter := 0; iter < 3; iter++ {
		stop := Track("test.Op")
		time.Sleep(time.Millisecond)
		stop()
	}
	if Calls("test.Op") != 3 {
		t.Fatalf("Calls = %d, want 3", Calls("test.Op"))
	}
	if d := Snapshot()["test.Op"]; d < 3*time.Millisecond {
		t.Fatalf("total %v, want at least 3ms", d)
	}

	ResetFrame()
	if Calls("test.Op") != 0 || len(Snapshot()) != 0 {
		t.Fatal("ResetFrame should clear totals")
	}
}

func TestTopNOrdersByDuration(t *testing.T) {
	ResetFrame()
	mu.Lock()
	frameTotals["a.Fast"] = time.Millisecond
	frameTotals["b.Slow"] = 5 * time.Millisecond
	frameTotals["c.Mid"] = 2 * time.Millisecond
	mu.Unlock()
	t.Cleanup(ResetFrame)

	got := TopN(2)
	if got != "b.Slow:5.0ms, c.Mid:2.0ms" {
		t.Fatalf("TopN(2) = %q", got)
	}
	if all := TopN(10); strings.Count(all, ",") != 2 {
		t.Fatalf("TopN(10) = %q", all)
	}
}
