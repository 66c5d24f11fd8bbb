package scene

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/sightline/pkg/geom"
	"github.com/Faultbox/sightline/pkg/math"
)

// fakeWorld is an in-memory transform store.
type fakeWorld struct {
	positions map[Entity]math.Vec3
	scales    map[Entity]float32
	moved     []func(Entity)
	destroyed []func(Entity)
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		positions: make(map[Entity]math.Vec3),
		scales:    make(map[Entity]float32),
	}
}

func (w *fakeWorld) Matrix(e Entity) math.Mat4 {
	p := w.positions[e]
	return math.Translate(p.X, p.Y, p.Z)
}

func (w *fakeWorld) Position(e Entity) math.Vec3 { return w.positions[e] }

func (w *fakeWorld) Scale(e Entity) float32 {
	if s, ok := w.scales[e]; ok {
		return s
	}
	return 1
}

func (w *fakeWorld) OnEntityMoved(fn func(Entity))     { w.moved = append(w.moved, fn) }
func (w *fakeWorld) OnEntityDestroyed(fn func(Entity)) { w.destroyed = append(w.destroyed, fn) }

func (w *fakeWorld) moveTo(e Entity, p math.Vec3) {
	w.positions[e] = p
	for _, fn := range w.moved {
		fn(e)
	}
}

func (w *fakeWorld) destroy(e Entity) {
	delete(w.positions, e)
	for _, fn := range w.destroyed {
		fn(e)
	}
}

// lodBreak maps a minimum squared distance to an inclusive mesh range.
type lodBreak struct {
	minSq    float32
	from, to int
}

// fakeModel is an in-memory mesh asset.
type fakeModel struct {
	path   string
	ready  bool
	radius float32
	meshes []Mesh
	lods   []lodBreak // ascending by minSq; empty means all meshes always
	bones  int
}

func (m *fakeModel) Path() string            { return m.path }
func (m *fakeModel) Ready() bool             { return m.ready }
func (m *fakeModel) BoundingRadius() float32 { return m.radius }
func (m *fakeModel) MeshCount() int          { return len(m.meshes) }
func (m *fakeModel) Mesh(i int) Mesh         { return m.meshes[i] }
func (m *fakeModel) BoneCount() int          { return m.bones }

func (m *fakeModel) LODRange(sq float32) (int, int) {
	if len(m.lods) == 0 {
		return 0, len(m.meshes) - 1
	}
	sel := m.lods[0]
	for _, l := range m.lods {
		if sq >= l.minSq {
			sel = l
		}
	}
	return sel.from, sel.to
}

// singleMeshModel is a ready one-mesh model with bounding radius 1.
func singleMeshModel(path string) *fakeModel {
	return &fakeModel{
		path:   path,
		ready:  true,
		radius: 1,
		meshes: []Mesh{{Name: path + ":0", Material: "default.mat"}},
	}
}

// twoLODModel has mesh 0 below squared distance 100 and mesh 1 above.
func twoLODModel(path string) *fakeModel {
	return &fakeModel{
		path:   path,
		ready:  true,
		radius: 1,
		meshes: []Mesh{
			{Name: path + ":lod0", Material: "hi.mat"},
			{Name: path + ":lod1", Material: "lo.mat"},
		},
		lods: []lodBreak{
			{minSq: 0, from: 0, to: 0},
			{minSq: 100, from: 1, to: 1},
		},
	}
}

// fakeSource resolves paths to registered models.
type fakeSource struct {
	models map[string]*fakeModel
}

func newFakeSource(models ...*fakeModel) *fakeSource {
	src := &fakeSource{models: make(map[string]*fakeModel)}
	for _, m := range models {
		src.models[m.path] = m
	}
	return src
}

func (s *fakeSource) Load(path string) (Model, error) {
	m, ok := s.models[path]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", path)
	}
	return m, nil
}

// frustumAt returns a perspective frustum looking at the target from
// 50 units back along -Z, with a 60° FOV.
func frustumAt(target math.Vec3) geom.Frustum {
	return geom.NewPerspective(
		target.Sub(math.Vec3{Z: 50}), math.Vec3{Z: 1}, math.Vec3{Y: 1},
		float32(gomath.Pi/3), 1.0, 0.1, 1000,
	)
}

// orthoAt returns an orthographic box frustum around the target, which
// carries no FOV-based LOD correction.
func orthoAt(target math.Vec3, half float32) geom.Frustum {
	return geom.NewOrtho(
		target, math.Vec3{Z: 1}, math.Vec3{Y: 1},
		half, half, -half, half,
	)
}

const allLayers = ^uint64(0)

func handlesOf(buckets [][]Handle) map[Handle]int {
	seen := make(map[Handle]int)
	for _, b := range buckets {
		for _, h := range b {
			seen[h]++
		}
	}
	return seen
}
