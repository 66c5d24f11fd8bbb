package geom

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/sightline/pkg/math"
)

// Plane is a half-space: Normal·p + D >= 0 for points on the inside.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// DistanceTo returns the signed distance from a point to the plane.
// Positive means inside (same side as Normal).
func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

func planeFrom(normal, point math.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, D: -n.Dot(point)}
}

// Frustum holds six inward-facing clip planes plus the camera metadata
// the LOD pipeline needs. FOV is the vertical field of view in radians;
// it is negative for orthographic frusta so callers can tell the two
// apart (LOD correction only applies to perspective views).
type Frustum struct {
	Planes    [6]Plane
	Position  math.Vec3
	Direction math.Vec3
	FOV       float32
}

// Plane order within Frustum.Planes.
const (
	PlaneNear = iota
	PlaneFar
	PlaneLeft
	PlaneRight
	PlaneTop
	PlaneBottom
)

// NewPerspective builds a perspective frustum. dir and up need not be
// normalized, fovY is the vertical field of view in radians and aspect
// is width/height.
func NewPerspective(pos, dir, up math.Vec3, fovY, aspect, near, far float32) Frustum {
	z := dir.Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	tanV := math32.Tan(fovY * 0.5)
	tanH := tanV * aspect

	f := Frustum{Position: pos, Direction: z, FOV: fovY}
	f.Planes[PlaneNear] = planeFrom(z, pos.Add(z.Scale(near)))
	f.Planes[PlaneFar] = planeFrom(z.Scale(-1), pos.Add(z.Scale(far)))
	f.Planes[PlaneLeft] = planeFrom(y.Cross(z.Sub(x.Scale(tanH))), pos)
	f.Planes[PlaneRight] = planeFrom(z.Add(x.Scale(tanH)).Cross(y), pos)
	f.Planes[PlaneTop] = planeFrom(x.Cross(z.Add(y.Scale(tanV))), pos)
	f.Planes[PlaneBottom] = planeFrom(z.Sub(y.Scale(tanV)).Cross(x), pos)
	return f
}

// NewOrtho builds an orthographic frustum: a box centered on the axis
// from pos along dir, spanning [near, far] in depth and ±width / ±height
// across. Used with near = -r, far = r, width = height = r it yields the
// axis-aligned box volume of a point light of range r.
func NewOrtho(pos, dir, up math.Vec3, width, height, near, far float32) Frustum {
	z := dir.Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	f := Frustum{Position: pos, Direction: z, FOV: -1}
	f.Planes[PlaneNear] = planeFrom(z, pos.Add(z.Scale(near)))
	f.Planes[PlaneFar] = planeFrom(z.Scale(-1), pos.Add(z.Scale(far)))
	f.Planes[PlaneLeft] = planeFrom(x, pos.Sub(x.Scale(width)))
	f.Planes[PlaneRight] = planeFrom(x.Scale(-1), pos.Add(x.Scale(width)))
	f.Planes[PlaneTop] = planeFrom(y.Scale(-1), pos.Add(y.Scale(height)))
	f.Planes[PlaneBottom] = planeFrom(y, pos.Sub(y.Scale(height)))
	return f
}

// ContainsSphere reports whether the sphere intersects the frustum.
// A sphere touching any boundary counts as inside.
func (f *Frustum) ContainsSphere(center math.Vec3, radius float32) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceTo(center) < -radius {
			return false
		}
	}
	return true
}
