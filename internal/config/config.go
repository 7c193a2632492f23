package config

import "sync"

// StreamSettings holds render and streaming configuration.
type StreamSettings struct {
	RenderDistance int `yaml:"render_distance"` // in chunks
	EvictMargin    int `yaml:"evict_margin"`    // extra chunks kept beyond render distance
	StaleSeconds   int `yaml:"stale_seconds"`   // untouched chunks older than this are evicted
	Workers        int `yaml:"workers"`         // 0 = NumCPU-1
	MaxInFlight    int `yaml:"max_in_flight"`
	MaxJobsPerCall int `yaml:"max_jobs_per_call"`
	FPSLimit       int `yaml:"fps_limit"` // 0 = unlimited
}

// DefaultStreamSettings returns the built-in defaults.
func DefaultStreamSettings() StreamSettings {
	return StreamSettings{
		RenderDistance: 12,
		EvictMargin:    4,
		StaleSeconds:   30,
		MaxInFlight:    64,
		MaxJobsPerCall: 64,
		FPSLimit:       144,
	}
}

var (
	streamMu     sync.RWMutex
	globalStream = DefaultStreamSettings()
)

// Stream returns a copy of the current streaming settings.
func Stream() StreamSettings {
	streamMu.RLock()
	defer streamMu.RUnlock()
	return globalStream
}

// SetStream replaces the streaming settings after clamping them.
func SetStream(s StreamSettings) {
	s = clampStream(s)
	streamMu.Lock()
	defer streamMu.Unlock()
	globalStream = s
}

func clampStream(s StreamSettings) StreamSettings {
	// Clamp to reasonable values
	s.RenderDistance = clampInt(s.RenderDistance, 2, 64)
	s.EvictMargin = clampInt(s.EvictMargin, 1, 32)
	if s.StaleSeconds < 0 {
		s.StaleSeconds = 0
	}
	s.Workers = clampInt(s.Workers, 0, 64)
	s.MaxInFlight = clampInt(s.MaxInFlight, 8, 4096)
	s.MaxJobsPerCall = clampInt(s.MaxJobsPerCall, 1, 4096)
	if s.FPSLimit < 0 {
		s.FPSLimit = 0
	}
	return s
}

// GetRenderDistance returns the current render distance in chunks
func GetRenderDistance() int {
	return Stream().RenderDistance
}

// SetRenderDistance sets the render distance in chunks
func SetRenderDistance(distance int) {
	streamMu.Lock()
	defer streamMu.Unlock()
	globalStream.RenderDistance = clampInt(distance, 2, 64)
}

// GetChunkEvictRadius returns radius for chunk eviction (larger than load radius)
func GetChunkEvictRadius() int {
	s := Stream()
	return s.RenderDistance + s.EvictMargin
}

// GetFPSLimit returns the frame cap, 0 for unlimited.
func GetFPSLimit() int {
	return Stream().FPSLimit
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
