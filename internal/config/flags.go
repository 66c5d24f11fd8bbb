package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagObjects = flag.Int("objects", 0, "Number of synthetic objects")
	flagLights  = flag.Int("lights", 0, "Number of point lights")
	flagFrames  = flag.Int("frames", 0, "Frames to simulate")
	flagLOD     = flag.Float64("lod", 0, "Global LOD distance multiplier")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagObjects > 0 {
		cfg.Bench.Objects = *flagObjects
	}
	if *flagLights > 0 {
		cfg.Bench.Lights = *flagLights
	}
	if *flagFrames > 0 {
		cfg.Bench.Frames = *flagFrames
	}
	if *flagLOD > 0 {
		cfg.Scene.LODMultiplier = float32(*flagLOD)
	}
}
