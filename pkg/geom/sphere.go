// Package geom provides the bounding volumes and frustum tests used by
// broad-phase culling.
package geom

import "github.com/Faultbox/sightline/pkg/math"

// Sphere is a bounding sphere in world space.
type Sphere struct {
	Center math.Vec3
	Radius float32
}

// Intersects reports whether the two spheres overlap or touch.
func (s Sphere) Intersects(other Sphere) bool {
	r := s.Radius + other.Radius
	return s.Center.SquaredDistance(other.Center) <= r*r
}

// Contains reports whether the point lies inside the sphere.
func (s Sphere) Contains(p math.Vec3) bool {
	return s.Center.SquaredDistance(p) <= s.Radius*s.Radius
}
