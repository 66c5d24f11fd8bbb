package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/sightline/pkg/cull"
	"github.com/Faultbox/sightline/pkg/math"
)

// Handle identifies a renderable object slot. It indexes directly into
// the scene's dense object table and is stable for the object's
// lifetime; the slot is reused only after an explicit DestroyObject.
type Handle = cull.Handle

// InvalidHandle is returned by lookups that find no object.
const InvalidHandle Handle = -1

// DefaultLayerMask is the layer mask assigned to new objects.
const DefaultLayerMask uint64 = 1

type objectState uint8

const (
	// stateDead marks a gap slot in the dense table.
	stateDead objectState = iota
	// stateUnassigned: slot has an entity but no model.
	stateUnassigned
	// statePendingReady: model assigned, load not finished.
	statePendingReady
	// stateLive: model ready, object participates in culling.
	stateLive
	// stateOrphaned: entity destroyed while the slot persists. Skipped
	// by movement notifications, reclaimed by DestroyObject.
	stateOrphaned
)

type object struct {
	entity    Entity
	state     objectState
	model     Model
	matrix    math.Mat4
	layerMask uint64

	// meshes points at a private copy of the model's mesh descriptors
	// when customMeshes is set (material overrides); otherwise it
	// mirrors the model's list and is rebuilt on every ready event.
	meshes       []Mesh
	customMeshes bool

	pose *Pose
}

func (o *object) dead() bool { return o.state == stateDead }

// obj fetches the slot for a handle, failing fast on anything that is
// not a live-ish slot. Invalid handle access is programmer error.
func (s *Scene) obj(h Handle) *object {
	if h < 0 || int(h) >= len(s.objects) {
		panic(fmt.Sprintf("scene: handle %d out of table bounds", h))
	}
	o := &s.objects[h]
	if o.dead() {
		panic(fmt.Sprintf("scene: handle %d refers to a dead slot", h))
	}
	return o
}

// CreateObject reserves (or resets) the object slot for an entity and
// returns its handle. The dense table lazily grows to cover the
// entity's index, filling gaps with dead sentinel slots. Re-creating
// over a live slot first destroys the old object so no stale handle
// lingers in the culling index or any influence list.
func (s *Scene) CreateObject(e Entity) Handle {
	if e < 0 {
		panic("scene: CreateObject with invalid entity")
	}
	for int(e) >= len(s.objects) {
		s.objects = append(s.objects, object{entity: InvalidEntity})
	}
	o := &s.objects[e]
	if !o.dead() {
		s.DestroyObject(Handle(e))
	}
	*o = object{
		entity:    e,
		state:     stateUnassigned,
		layerMask: DefaultLayerMask,
		matrix:    s.world.Matrix(e),
	}
	return Handle(e)
}

// ObjectFor returns the handle of the entity's object, or InvalidHandle
// when the entity has none. This is the only entity-to-handle
// conversion in the package.
func (s *Scene) ObjectFor(e Entity) Handle {
	if e < 0 || int(e) >= len(s.objects) {
		return InvalidHandle
	}
	if o := &s.objects[e]; o.dead() || o.entity != e {
		return InvalidHandle
	}
	return Handle(e)
}

// DestroyObject releases a slot: detaches the object from the culling
// index and every light influence list, drops the model reference and
// pose, and resets the slot to the dead sentinel. Destroying an already
// dead slot is a no-op; destruction order across dependent systems
// cannot be globally serialized, so destroy must be idempotent.
func (s *Scene) DestroyObject(h Handle) {
	if h < 0 || int(h) >= len(s.objects) {
		panic(fmt.Sprintf("scene: handle %d out of table bounds", h))
	}
	o := &s.objects[h]
	if o.dead() {
		return
	}
	s.detachFromLights(h)
	s.index.Remove(h)
	s.log.Debug("object destroyed",
		zap.Int32("handle", int32(h)),
		zap.Int32("entity", int32(o.entity)))
	*o = object{entity: InvalidEntity}
}

// SetModel assigns (or clears, with nil) the object's model. Assigning
// the model it already has, when ready, is a no-op; the identity check
// runs before any detach so redundant calls cause no reload churn. The
// skeleton pose of the old model is freed; material overrides survive
// and are re-synced against the new mesh layout when it becomes ready.
func (s *Scene) SetModel(h Handle, m Model) {
	o := s.obj(h)
	if m != nil && m == o.model && m.Ready() {
		return
	}
	if o.model != nil && o.state == stateLive {
		s.detachFromLights(h)
		s.index.Remove(h)
	}
	o.pose = nil
	if !o.customMeshes {
		o.meshes = nil
	}
	o.model = m
	if m == nil {
		o.state = stateUnassigned
		return
	}
	o.state = statePendingReady
	if m.Ready() {
		s.modelReady(h)
	}
}

// ObjectModel returns the object's model (nil when unassigned).
func (s *Scene) ObjectModel(h Handle) Model { return s.obj(h).model }

// ObjectEntity returns the owning entity of the object.
func (s *Scene) ObjectEntity(h Handle) Entity { return s.obj(h).entity }

// ObjectMatrix returns the cached world matrix.
func (s *Scene) ObjectMatrix(h Handle) math.Mat4 { return s.obj(h).matrix }

// ObjectPose returns the skeleton pose, or nil for unboned models.
func (s *Scene) ObjectPose(h Handle) *Pose { return s.obj(h).pose }

// ObjectMeshes returns the object's current mesh list: the model's
// descriptors, or the private override copy when materials were set.
func (s *Scene) ObjectMeshes(h Handle) []Mesh { return s.obj(h).meshes }

// SetLayerMask changes the object's culling layer mask.
func (s *Scene) SetLayerMask(h Handle, mask uint64) {
	o := s.obj(h)
	o.layerMask = mask
	if s.index.Contains(h) {
		s.index.SetMask(h, mask)
	}
}

// LayerMask returns the object's culling layer mask.
func (s *Scene) LayerMask(h Handle) uint64 { return s.obj(h).layerMask }

// SetMeshMaterial overrides the material of one mesh slot, growing the
// object's private mesh copy as needed. The override list always covers
// every index that was ever set.
func (s *Scene) SetMeshMaterial(h Handle, index int, material string) {
	o := s.obj(h)
	if index < 0 {
		panic("scene: negative mesh index")
	}
	if o.customMeshes && index < len(o.meshes) && o.meshes[index].Material == material {
		return
	}
	if n := index + 1; n > len(o.meshes) {
		meshes := make([]Mesh, n)
		copy(meshes, o.meshes)
		o.meshes = meshes
	} else if !o.customMeshes {
		o.meshes = append([]Mesh(nil), o.meshes...)
	}
	o.customMeshes = true
	o.meshes[index].Material = material
}

// MeshMaterial returns the material of one mesh slot ("" when there is
// no mesh at that index).
func (s *Scene) MeshMaterial(h Handle, index int) string {
	o := s.obj(h)
	if index < 0 || index >= len(o.meshes) {
		return ""
	}
	return o.meshes[index].Material
}

// Show re-inserts a hidden object into the broad-phase index. No-op
// when the model is not ready or the object is already visible.
func (s *Scene) Show(h Handle) {
	o := s.obj(h)
	if o.state != stateLive || s.index.Contains(h) {
		return
	}
	s.index.Add(h, s.boundingSphere(o), o.layerMask)
}

// Hide removes an object from the broad-phase index without destroying
// it. Hidden objects keep their light influence membership.
func (s *Scene) Hide(h Handle) {
	s.obj(h)
	s.index.Remove(h)
}
