package config

import "sync"

// WorldGenSettings holds terrain generation configuration.
type WorldGenSettings struct {
	Seed       int64   `yaml:"seed"`
	ChunkSize  float32 `yaml:"chunk_size"` // world units per chunk edge
	Resolution int     `yaml:"resolution"` // quads per chunk edge
	Splatting  bool    `yaml:"splatting"`
	SandLevel  float32 `yaml:"sand_level"`
	SnowLevel  float32 `yaml:"snow_level"`

	// Heightmap, when set, replaces the noise generator.
	Heightmap          string  `yaml:"heightmap"`
	HeightmapCellSize  float64 `yaml:"heightmap_cell_size"`
	HeightmapMaxHeight float64 `yaml:"heightmap_max_height"`
}

// DefaultWorldGenSettings returns the built-in defaults.
func DefaultWorldGenSettings() WorldGenSettings {
	return WorldGenSettings{
		Seed:               1337,
		ChunkSize:          64,
		Resolution:         32,
		Splatting:          true,
		SandLevel:          10,
		SnowLevel:          90,
		HeightmapCellSize:  2,
		HeightmapMaxHeight: 160,
	}
}

var (
	worldGenMu     sync.RWMutex
	globalWorldGen = DefaultWorldGenSettings()
)

// WorldGen returns a copy of the current generation settings.
func WorldGen() WorldGenSettings {
	worldGenMu.RLock()
	defer worldGenMu.RUnlock()
	return globalWorldGen
}

// SetWorldGen replaces the generation settings after clamping them.
func SetWorldGen(w WorldGenSettings) {
	if w.ChunkSize < 4 {
		w.ChunkSize = 4
	}
	w.Resolution = clampInt(w.Resolution, 1, 256)
	if w.HeightmapCellSize <= 0 {
		w.HeightmapCellSize = 1
	}
	worldGenMu.Lock()
	defer worldGenMu.Unlock()
	globalWorldGen = w
}

// GetSeed returns the generation seed.
func GetSeed() int64 {
	return WorldGen().Seed
}

// SetSeed sets the generation seed.
func SetSeed(seed int64) {
	worldGenMu.Lock()
	defer worldGenMu.Unlock()
	globalWorldGen.Seed = seed
}
