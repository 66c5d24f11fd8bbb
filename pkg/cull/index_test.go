package cull

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/sightline/pkg/geom"
	"github.com/Faultbox/sightline/pkg/math"
)

const allLayers = ^uint64(0)

func testFrustum(target math.Vec3) geom.Frustum {
	// Perspective frustum 50 units back from the target, looking at it.
	pos := target.Sub(math.Vec3{Z: 50})
	return geom.NewPerspective(
		pos, math.Vec3{Z: 1}, math.Vec3{Y: 1},
		float32(gomath.Pi/3), 1.0, 0.1, 1000,
	)
}

func collect(buckets [][]Handle) map[Handle]int {
	seen := make(map[Handle]int)
	for _, b := range buckets {
		for _, h := range b {
			seen[h]++
		}
	}
	return seen
}

func TestCullMatchesIntersectingSpheres(t *testing.T) {
	x := NewIndex(0)
	x.Add(1, geom.Sphere{Center: math.Vec3{}, Radius: 1}, 1)
	x.Add(2, geom.Sphere{Center: math.Vec3{X: 5000}, Radius: 1}, 1)

	seen := collect(x.CullAsync(testFrustum(math.Vec3{}), allLayers).Wait())
	if seen[1] != 1 {
		t.Errorf("handle 1 at origin seen %d times, want 1", seen[1])
	}
	if seen[2] != 0 {
		t.Errorf("handle 2 far away seen %d times, want 0", seen[2])
	}
}

func TestCullLayerMask(t *testing.T) {
	x := NewIndex(0)
	x.Add(1, geom.Sphere{Radius: 1}, 0b01)
	x.Add(2, geom.Sphere{Radius: 1}, 0b10)

	seen := collect(x.CullAsync(testFrustum(math.Vec3{}), 0b10).Wait())
	if _, ok := seen[1]; ok {
		t.Error("handle 1 should be masked out")
	}
	if _, ok := seen[2]; !ok {
		t.Error("handle 2 should match the mask")
	}
}

func TestCullNoDuplicatesAcrossBuckets(t *testing.T) {
	x := NewIndex(8) // force many chunks
	for i := Handle(0); i < 1000; i++ {
		x.Add(i, geom.Sphere{Center: math.Vec3{X: float32(i % 10)}, Radius: 1}, 1)
	}
	seen := collect(x.CullAsync(testFrustum(math.Vec3{}), allLayers).Wait())
	if len(seen) != 1000 {
		t.Fatalf("matched %d handles, want 1000", len(seen))
	}
	for h, n := range seen {
		if n != 1 {
			t.Errorf("handle %d appears %d times across buckets, want 1", h, n)
		}
	}
}

func TestCullEmptyIndex(t *testing.T) {
	x := NewIndex(0)
	buckets := x.CullAsync(testFrustum(math.Vec3{}), allLayers).Wait()
	if len(buckets) != 0 {
		t.Errorf("empty index returned %d buckets, want 0", len(buckets))
	}
}

func TestCullSphereVolume(t *testing.T) {
	x := NewIndex(0)
	x.Add(1, geom.Sphere{Center: math.Vec3{}, Radius: 1}, 1)
	x.Add(2, geom.Sphere{Center: math.Vec3{X: 100}, Radius: 1}, 1)

	light := geom.Sphere{Center: math.Vec3{Z: 5}, Radius: 10}
	seen := collect(x.CullSphereAsync(light, allLayers).Wait())
	if _, ok := seen[1]; !ok {
		t.Error("object at origin should be inside the light volume")
	}
	if _, ok := seen[2]; ok {
		t.Error("object at (100,0,0) should be outside the light volume")
	}
}

func TestRemoveSwapsLastEntry(t *testing.T) {
	x := NewIndex(0)
	x.Add(1, geom.Sphere{Radius: 1}, 1)
	x.Add(2, geom.Sphere{Center: math.Vec3{X: 2}, Radius: 1}, 1)
	x.Add(3, geom.Sphere{Center: math.Vec3{X: 3}, Radius: 1}, 1)
	x.Remove(2)

	if x.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", x.Len())
	}
	if x.Contains(2) {
		t.Error("removed handle still present")
	}
	// The swapped entry must still resolve to its own sphere.
	if got := x.Sphere(3); got.Center.X != 3 {
		t.Errorf("Sphere(3).Center.X = %v, want 3", got.Center.X)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	x := NewIndex(0)
	x.Remove(42) // must not panic
}

func TestAddDuplicatePanics(t *testing.T) {
	x := NewIndex(0)
	x.Add(1, geom.Sphere{Radius: 1}, 1)
	defer func() {
		if recover() == nil {
			t.Error("duplicate Add did not panic")
		}
	}()
	x.Add(1, geom.Sphere{Radius: 1}, 1)
}

func TestUpdateSphereMoves(t *testing.T) {
	x := NewIndex(0)
	x.Add(1, geom.Sphere{Center: math.Vec3{}, Radius: 1}, 1)
	x.UpdateSphere(1, geom.Sphere{Center: math.Vec3{X: 5000}, Radius: 1})

	seen := collect(x.CullAsync(testFrustum(math.Vec3{}), allLayers).Wait())
	if _, ok := seen[1]; ok {
		t.Error("moved object still culled at its old position")
	}
	seen = collect(x.CullAsync(testFrustum(math.Vec3{X: 5000}), allLayers).Wait())
	if _, ok := seen[1]; !ok {
		t.Error("moved object not culled at its new position")
	}
}

func TestClear(t *testing.T) {
	x := NewIndex(0)
	x.Add(1, geom.Sphere{Radius: 1}, 1)
	x.Clear()
	if x.Len() != 0 || x.Contains(1) {
		t.Error("Clear left entries behind")
	}
	x.Add(1, geom.Sphere{Radius: 1}, 1) // reusable after Clear
}
