package game

import (
	"time"

	"mini-terrain/internal/config"
)

// Frame cap while the cursor is released
const idleFPS = 30

// Remaining time below which Wait spins instead of sleeping
const spinThreshold = 200 * time.Microsecond

// FPSLimiter paces the render loop so upload work is spread evenly across frames.
type FPSLimiter struct {
	next  time.Time
	limit func() int
}

// NewFPSLimiter creates a limiter that follows config.GetFPSLimit.
func NewFPSLimiter() *FPSLimiter {
	return &FPSLimiter{limit: config.GetFPSLimit}
}

// frameBudget returns the frame duration for fps, or 0 when unlimited.
func frameBudget(fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Second / time.Duration(fps)
}

// Wait blocks until the next frame is due.
func (f *FPSLimiter) Wait(idle bool) {
	fps := f.limit()
	if idle {
		fps = idleFPS
	}
	target := frameBudget(fps)
	if target == 0 {
		f.next = time.Time{}
		return
	}

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > spinThreshold {
			time.Sleep(remaining - spinThreshold)
		}
	}

	// Resync after a hitch instead of trying to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
