// Package config handles configuration loading and management.
package config

// Config holds all settings.
type Config struct {
	Scene   SceneConfig   `yaml:"scene"`
	Bench   BenchConfig   `yaml:"bench"`
	Logging LoggingConfig `yaml:"logging"`
}

// SceneConfig holds visibility tuning settings.
type SceneConfig struct {
	LODMultiplier float32 `yaml:"lod_multiplier"`
	ReferenceFOV  float32 `yaml:"reference_fov"` // degrees
	CullChunkSize int     `yaml:"cull_chunk_size"`
}

// BenchConfig holds synthetic workload settings for visbench.
type BenchConfig struct {
	Objects int     `yaml:"objects"`
	Lights  int     `yaml:"lights"`
	Frames  int     `yaml:"frames"`
	Extent  float32 `yaml:"extent"` // world half-size the objects are spread over
	Seed    int64   `yaml:"seed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Scene: SceneConfig{
			LODMultiplier: 1.0,
			ReferenceFOV:  60,
			CullChunkSize: 512,
		},
		Bench: BenchConfig{
			Objects: 10000,
			Lights:  64,
			Frames:  200,
			Extent:  500,
			Seed:    1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
