package scene

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/sightline/pkg/geom"
	"github.com/Faultbox/sightline/pkg/math"
)

func singleRecord(t *testing.T, records []DrawRecord) DrawRecord {
	t.Helper()
	if len(records) != 1 {
		t.Fatalf("got %d draw records, want 1: %v", len(records), records)
	}
	return records[0]
}

func TestDrawRecordsSelectsLODByDistance(t *testing.T) {
	w := newFakeWorld()
	s := New(w, DefaultConfig())

	h := s.CreateObject(0)
	s.SetModel(h, twoLODModel("lod.mdl"))

	// Ortho view so no field-of-view correction applies. The model
	// switches from mesh 0 to mesh 1 at squared distance 100.
	view := orthoAt(math.Vec3{}, 50)

	near := math.Vec3{X: 5} // squared distance 25
	r := singleRecord(t, s.DrawRecords(view, near, allLayers))
	if r.Handle != h || r.Mesh.Name != "lod.mdl:lod0" {
		t.Errorf("near record = %+v, want handle %d mesh lod0", r, h)
	}

	far := math.Vec3{X: 13} // squared distance 169
	r = singleRecord(t, s.DrawRecords(view, far, allLayers))
	if r.Mesh.Name != "lod.mdl:lod1" {
		t.Errorf("far record mesh = %q, want lod1", r.Mesh.Name)
	}
}

func TestDrawRecordsLODMultiplier(t *testing.T) {
	w := newFakeWorld()
	s := New(w, DefaultConfig())

	h := s.CreateObject(0)
	s.SetModel(h, twoLODModel("lod.mdl"))
	view := orthoAt(math.Vec3{}, 50)
	ref := math.Vec3{X: 5} // squared distance 25

	r := singleRecord(t, s.DrawRecords(view, ref, allLayers))
	if r.Mesh.Name != "lod.mdl:lod0" {
		t.Fatalf("mesh = %q before multiplier, want lod0", r.Mesh.Name)
	}

	// 25 * 8 = 200 crosses the breakpoint at 100.
	s.SetLODMultiplier(8)
	r = singleRecord(t, s.DrawRecords(view, ref, allLayers))
	if r.Mesh.Name != "lod.mdl:lod1" {
		t.Errorf("mesh = %q with multiplier 8, want lod1", r.Mesh.Name)
	}
}

func TestDrawRecordsFOVCorrection(t *testing.T) {
	w := newFakeWorld()
	s := New(w, DefaultConfig())

	h := s.CreateObject(0)
	s.SetModel(h, twoLODModel("lod.mdl"))
	ref := math.Vec3{X: 13} // squared distance 169, past the breakpoint

	// A narrow FOV scales the effective distance down: with a 30
	// degree view against the 60 degree reference the factor is
	// 0.25, so 169 becomes 42.25 and the hi mesh is kept.
	narrow := geom.NewPerspective(
		math.Vec3{Z: -50}, math.Vec3{Z: 1}, math.Vec3{Y: 1},
		float32(gomath.Pi/6), 1, 0.1, 1000)
	r := singleRecord(t, s.DrawRecords(narrow, ref, allLayers))
	if r.Mesh.Name != "lod.mdl:lod0" {
		t.Errorf("mesh = %q with narrow FOV, want lod0", r.Mesh.Name)
	}

	// At the reference FOV the correction is a no-op.
	wide := frustumAt(math.Vec3{})
	r = singleRecord(t, s.DrawRecords(wide, ref, allLayers))
	if r.Mesh.Name != "lod.mdl:lod1" {
		t.Errorf("mesh = %q at reference FOV, want lod1", r.Mesh.Name)
	}
}

func TestDrawRecordsOrthoSkipsFOVCorrection(t *testing.T) {
	w := newFakeWorld()
	s := New(w, DefaultConfig())

	h := s.CreateObject(0)
	s.SetModel(h, twoLODModel("lod.mdl"))
	_ = h

	ref := math.Vec3{X: 13}
	r := singleRecord(t, s.DrawRecords(orthoAt(math.Vec3{}, 50), ref, allLayers))
	if r.Mesh.Name != "lod.mdl:lod1" {
		t.Errorf("mesh = %q under ortho view, want uncorrected lod1", r.Mesh.Name)
	}
}

func TestDrawRecordsEmptyScene(t *testing.T) {
	s := New(newFakeWorld(), DefaultConfig())
	if got := s.DrawRecords(frustumAt(math.Vec3{}), math.Vec3{}, allLayers); len(got) != 0 {
		t.Errorf("DrawRecords() = %v on empty scene, want empty", got)
	}
	if got := s.Cull(frustumAt(math.Vec3{}), allLayers); got != nil {
		t.Errorf("Cull() = %v on empty scene, want nil", got)
	}
}

func TestDrawRecordsRespectsLayerMask(t *testing.T) {
	w := newFakeWorld()
	s := New(w, DefaultConfig())

	a := s.CreateObject(0)
	s.SetModel(a, singleMeshModel("a.mdl"))
	b := s.CreateObject(1)
	s.SetModel(b, singleMeshModel("b.mdl"))
	s.SetLayerMask(b, 1<<4)

	records := s.DrawRecords(frustumAt(math.Vec3{}), math.Vec3{}, 1<<4)
	r := singleRecord(t, records)
	if r.Handle != b {
		t.Errorf("record handle = %d, want %d", r.Handle, b)
	}
}

func TestDrawRecordsManyObjects(t *testing.T) {
	w := newFakeWorld()
	cfg := DefaultConfig()
	cfg.CullChunkSize = 16 // force several chunks
	s := New(w, cfg)

	const n = 300
	model := singleMeshModel("unit.mdl")
	view := frustumAt(math.Vec3{})
	inView := 0
	for i := 0; i < n; i++ {
		// Spread along X; roughly half land inside the view.
		w.positions[Entity(i)] = math.Vec3{X: float32(i - n/2)}
		h := s.CreateObject(Entity(i))
		s.SetModel(h, model)
		if view.ContainsSphere(math.Vec3{X: float32(i - n/2)}, 1) {
			inView++
		}
	}

	records := s.DrawRecords(view, math.Vec3{}, allLayers)
	if len(records) != inView {
		t.Errorf("got %d records, want %d", len(records), inView)
	}
	seen := make(map[Handle]bool)
	for _, r := range records {
		if seen[r.Handle] {
			t.Fatalf("handle %d appears twice", r.Handle)
		}
		seen[r.Handle] = true
	}
}

func TestObjectsInFrustum(t *testing.T) {
	w := newFakeWorld()
	s := New(w, DefaultConfig())

	a := s.CreateObject(7)
	s.SetModel(a, singleMeshModel("a.mdl"))
	w.positions[9] = math.Vec3{X: 5000}
	b := s.CreateObject(9)
	s.SetModel(b, singleMeshModel("b.mdl"))

	got := s.ObjectsInFrustum(frustumAt(math.Vec3{}))
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("ObjectsInFrustum() = %v, want [7]", got)
	}
}
