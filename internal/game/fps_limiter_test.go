package game

import (
	"testing"
	"time"
)

func TestFrameBudget(t *testing.T) {
	tests := []struct {
		fps  int
		want time.Duration
	}{
		{0, 0},
		{-5, 0},
		{1, time.Second},
		{50, 20 * time.Millisecond},
		{144, time.Second / 144},
	}
	for _, tt := range tests {
		if got := frameBudget(tt.fps); got != tt.want {
			t.Errorf("frameBudget(%d) = %v, want %v", tt.fps, got, tt.want)
		}
	}
}

func TestWaitPacesFrames(t *testing.T) {
	f := &FPSLimiter{limit: func() int { return 100 }}
	start := time.Now()
	for iter := 0; iter < 5; iter++ {
		f.Wait(false)
	}
	if el := time.Since(start); el < 45*time.Millisecond {
		t.Fatalf("5 frames at 100 FPS took %v", el)
	}
}

func TestWaitUnlimitedReturnsImmediately(t *testing.T) {
	f := &FPSLimiter{limit: func() int { return 0 }}
	start := time.Now()
	for iter := 0; iter < 100; iter++ {
		f.Wait(false)
	}
	if el := time.Since(start); el > 50*time.Millisecond {
		t.Fatalf("unlimited Wait took %v", el)
	}
	if !f.next.IsZero() {
		t.Fatal("unlimited Wait should reset the schedule")
	}
}

func TestWaitIdleUsesIdleRate(t *testing.T) {
	f := &FPSLimiter{limit: func() int { return 0 }}
	start := time.Now()
	f.Wait(true)
	f.Wait(true)
	if el := time.Since(start); el < frameBudget(idleFPS) {
		t.Fatalf("idle frames took %v", el)
	}
}
