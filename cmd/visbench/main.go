// Package main is a synthetic visibility workload: it fills a scene
// with objects and point lights, orbits a camera through it and logs
// per-frame culling and draw-list timings.
package main

import (
	"fmt"
	gomath "math"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/sightline/internal/config"
	"github.com/Faultbox/sightline/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== sightline visbench ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	b, err := newBench(cfg)
	if err != nil {
		logger.Error("failed to build workload", zap.Error(err))
		os.Exit(1)
	}

	if err := b.run(); err != nil {
		logger.Error("bench error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("bench finished")
}

func degToRad(deg float32) float32 {
	return deg * gomath.Pi / 180
}
