// Package scene is the per-frame visibility and draw-list core of a 3D
// renderer: it tracks renderable objects and point lights, culls them
// against a view frustum, resolves a level of detail per visible
// object, and expands the result into draw records. All mutation
// happens on the main thread; only the read-only cull and LOD steps fan
// out to worker goroutines.
package scene

import (
	gomath "math"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/sightline/pkg/cull"
	"github.com/Faultbox/sightline/pkg/geom"
)

// DefaultReferenceFOV is the vertical field of view, in radians, at
// which the LOD distance multiplier is 1. Narrower views scale the
// multiplier down so detail stays perceptually stable under zoom.
const DefaultReferenceFOV = float32(gomath.Pi / 3) // 60°

// Config contains scene tuning options.
type Config struct {
	// LODMultiplier is the global LOD bias applied to every squared
	// distance before the LOD table lookup. 1 is neutral; values below
	// 1 push detail further out.
	LODMultiplier float32
	// ReferenceFOV is the vertical FOV, in radians, that maps to a
	// neutral LOD correction.
	ReferenceFOV float32
	// CullChunkSize is the number of bounding entries per parallel
	// culling job. 0 selects the package default.
	CullChunkSize int
	// Models resolves persisted model paths during Restore. Optional
	// unless Restore is used on snapshots that reference models.
	Models ModelSource
	// Logger receives lifecycle diagnostics. nil disables logging.
	Logger *zap.Logger
}

// DefaultConfig returns a neutral scene configuration.
func DefaultConfig() Config {
	return Config{
		LODMultiplier: 1,
		ReferenceFOV:  DefaultReferenceFOV,
		CullChunkSize: cull.DefaultChunkSize,
	}
}

// Scene owns the object table, the broad-phase culling index and the
// per-light influence cache. Create one per world with New.
type Scene struct {
	cfg   Config
	log   *zap.Logger
	world World
	index *cull.Index

	objects []object

	lights      []pointLight
	influence   [][]Handle
	lightSlots  map[LightID]int
	lastLightID LightID

	lodMultiplier float32

	eventsMu sync.Mutex
	events   []ModelEvent
}

// New creates a scene bound to a transform store and subscribes to its
// movement and destruction notifications.
func New(world World, cfg Config) *Scene {
	if cfg.LODMultiplier == 0 {
		cfg.LODMultiplier = 1
	}
	if cfg.ReferenceFOV == 0 {
		cfg.ReferenceFOV = DefaultReferenceFOV
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scene{
		cfg:           cfg,
		log:           log,
		world:         world,
		index:         cull.NewIndex(cfg.CullChunkSize),
		lightSlots:    make(map[LightID]int),
		lodMultiplier: cfg.LODMultiplier,
	}
	world.OnEntityMoved(s.entityMoved)
	world.OnEntityDestroyed(s.entityDestroyed)
	return s
}

// SetLODMultiplier sets the global LOD bias.
func (s *Scene) SetLODMultiplier(m float32) { s.lodMultiplier = m }

// LODMultiplier returns the global LOD bias.
func (s *Scene) LODMultiplier() float32 { return s.lodMultiplier }

// ObjectCount returns the number of non-dead object slots.
func (s *Scene) ObjectCount() int {
	n := 0
	for i := range s.objects {
		if !s.objects[i].dead() {
			n++
		}
	}
	return n
}

// VisibleCount returns the number of entries in the broad-phase index.
func (s *Scene) VisibleCount() int { return s.index.Len() }

// Clear drops every object, light and pending model event. The scene
// stays bound to its world and remains usable.
func (s *Scene) Clear() {
	s.objects = s.objects[:0]
	s.index.Clear()
	s.lights = s.lights[:0]
	s.influence = s.influence[:0]
	clear(s.lightSlots)
	s.eventsMu.Lock()
	s.events = nil
	s.eventsMu.Unlock()
	s.log.Debug("scene cleared")
}

// boundingSphere computes the current world-space bounding sphere of a
// live object: model bounding radius scaled by the entity's world scale.
func (s *Scene) boundingSphere(o *object) geom.Sphere {
	return geom.Sphere{
		Center: o.matrix.Translation(),
		Radius: o.model.BoundingRadius() * s.world.Scale(o.entity),
	}
}
