package main

import (
	"fmt"
	gomath "math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/sightline/internal/config"
	"github.com/Faultbox/sightline/internal/logger"
	"github.com/Faultbox/sightline/pkg/geom"
	"github.com/Faultbox/sightline/pkg/math"
	"github.com/Faultbox/sightline/pkg/scene"
)

// benchWorld is a flat transform store backing the synthetic scene.
type benchWorld struct {
	positions []math.Vec3
	scales    []float32
	moved     []func(scene.Entity)
}

func newBenchWorld(n int) *benchWorld {
	return &benchWorld{
		positions: make([]math.Vec3, n),
		scales:    make([]float32, n),
	}
}

func (w *benchWorld) Matrix(e scene.Entity) math.Mat4 {
	p := w.positions[e]
	m := math.Translate(p.X, p.Y, p.Z)
	return m
}

func (w *benchWorld) Position(e scene.Entity) math.Vec3 { return w.positions[e] }
func (w *benchWorld) Scale(e scene.Entity) float32      { return w.scales[e] }

func (w *benchWorld) OnEntityMoved(fn func(scene.Entity))     { w.moved = append(w.moved, fn) }
func (w *benchWorld) OnEntityDestroyed(fn func(scene.Entity)) {}

func (w *benchWorld) move(e scene.Entity, p math.Vec3) {
	w.positions[e] = p
	for _, fn := range w.moved {
		fn(e)
	}
}

// benchModel is a ready-made model with three detail levels.
type benchModel struct {
	path   string
	radius float32
	meshes []scene.Mesh
}

func newBenchModel(path string, radius float32) *benchModel {
	return &benchModel{
		path:   path,
		radius: radius,
		meshes: []scene.Mesh{
			{Name: path + ":lod0", Material: "default.mat", IndexCount: 3000},
			{Name: path + ":lod1", Material: "default.mat", IndexCount: 600},
			{Name: path + ":lod2", Material: "default.mat", IndexCount: 120},
		},
	}
}

func (m *benchModel) Path() string            { return m.path }
func (m *benchModel) Ready() bool             { return true }
func (m *benchModel) BoundingRadius() float32 { return m.radius }
func (m *benchModel) MeshCount() int          { return len(m.meshes) }
func (m *benchModel) Mesh(i int) scene.Mesh   { return m.meshes[i] }
func (m *benchModel) BoneCount() int          { return 0 }

func (m *benchModel) LODRange(sq float32) (int, int) {
	switch {
	case sq < 50*50:
		return 0, 0
	case sq < 200*200:
		return 1, 1
	default:
		return 2, 2
	}
}

// bench holds the ready workload: a populated scene and the camera
// path parameters.
type bench struct {
	cfg    *config.Config
	world  *benchWorld
	scene  *scene.Scene
	extent float32
}

func newBench(cfg *config.Config) (*bench, error) {
	if cfg.Bench.Objects <= 0 || cfg.Bench.Frames <= 0 {
		return nil, fmt.Errorf("workload needs at least one object and one frame, got %d/%d",
			cfg.Bench.Objects, cfg.Bench.Frames)
	}

	n := cfg.Bench.Objects + cfg.Bench.Lights
	world := newBenchWorld(n)
	s := scene.New(world, scene.Config{
		LODMultiplier: cfg.Scene.LODMultiplier,
		ReferenceFOV:  degToRad(cfg.Scene.ReferenceFOV),
		CullChunkSize: cfg.Scene.CullChunkSize,
		Logger:        logger.Log,
	})

	rng := rand.New(rand.NewSource(cfg.Bench.Seed))
	extent := cfg.Bench.Extent
	model := newBenchModel("bench.mdl", 1)

	start := time.Now()
	for i := 0; i < cfg.Bench.Objects; i++ {
		e := scene.Entity(i)
		world.positions[e] = math.Vec3{
			X: (rng.Float32()*2 - 1) * extent,
			Y: (rng.Float32()*2 - 1) * extent * 0.1,
			Z: (rng.Float32()*2 - 1) * extent,
		}
		world.scales[e] = 0.5 + rng.Float32()*2
		h := s.CreateObject(e)
		s.SetModel(h, model)
	}
	for i := 0; i < cfg.Bench.Lights; i++ {
		e := scene.Entity(cfg.Bench.Objects + i)
		world.positions[e] = math.Vec3{
			X: (rng.Float32()*2 - 1) * extent,
			Y: 5,
			Z: (rng.Float32()*2 - 1) * extent,
		}
		world.scales[e] = 1
		id := s.CreatePointLight(e)
		s.SetLightRange(id, 10+rng.Float32()*40)
	}

	logger.Info("workload built",
		zap.Int("objects", cfg.Bench.Objects),
		zap.Int("lights", cfg.Bench.Lights),
		zap.Duration("took", time.Since(start)))

	return &bench{cfg: cfg, world: world, scene: s, extent: extent}, nil
}

// run orbits a camera around the scene center, moving a slice of the
// objects every frame so the influence cache and culling index see
// steady churn.
func (b *bench) run() error {
	frames := b.cfg.Bench.Frames
	rng := rand.New(rand.NewSource(b.cfg.Bench.Seed + 1))

	var cullTotal, drawTotal time.Duration
	var records int

	for frame := 0; frame < frames; frame++ {
		// A little churn: 1% of objects shift each frame.
		for i := 0; i < b.cfg.Bench.Objects/100; i++ {
			e := scene.Entity(rng.Intn(b.cfg.Bench.Objects))
			p := b.world.positions[e]
			p.X += rng.Float32()*2 - 1
			p.Z += rng.Float32()*2 - 1
			b.world.move(e, p)
		}
		b.scene.DrainModelEvents()

		angle := float64(frame) / float64(frames) * 2 * gomath.Pi
		eye := math.Vec3{
			X: float32(gomath.Cos(angle)) * b.extent * 0.8,
			Y: 20,
			Z: float32(gomath.Sin(angle)) * b.extent * 0.8,
		}
		dir := math.Vec3{}.Sub(eye).Normalize()
		view := geom.NewPerspective(eye, dir, math.Vec3{Y: 1},
			degToRad(60), 16.0/9.0, 0.1, b.extent*3)

		start := time.Now()
		visible := b.scene.Cull(view, ^uint64(0))
		cullTotal += time.Since(start)

		start = time.Now()
		draws := b.scene.DrawRecords(view, eye, ^uint64(0))
		drawTotal += time.Since(start)
		records += len(draws)

		if frame%50 == 0 {
			n := 0
			for _, bucket := range visible {
				n += len(bucket)
			}
			logger.Debug("frame",
				zap.Int("frame", frame),
				zap.Int("visible", n),
				zap.Int("draw_records", len(draws)))
		}
	}

	logger.Info("bench summary",
		zap.Int("frames", frames),
		zap.Duration("avg_cull", cullTotal/time.Duration(frames)),
		zap.Duration("avg_draw", drawTotal/time.Duration(frames)),
		zap.Int("avg_records", records/frames))
	return nil
}
