package scene

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/sightline/pkg/geom"
	"github.com/Faultbox/sightline/pkg/math"
)

// LightID identifies a point light. Ids are assigned monotonically and
// never reused; they are independent from object handles and stable
// across save/restore.
type LightID int32

// InvalidLightID is the zero-value sentinel for light lookups.
const InvalidLightID LightID = 0

type pointLight struct {
	id     LightID
	entity Entity

	diffuseColor      math.Vec3
	specularColor     math.Vec3
	diffuseIntensity  float32
	specularIntensity float32
	attenuation       float32
	rng               float32
	fov               float32
	castShadows       bool
}

func (s *Scene) lightSlot(id LightID) int {
	i, ok := s.lightSlots[id]
	if !ok {
		panic(fmt.Sprintf("scene: unknown light id %d", id))
	}
	return i
}

// lightSphere is the light's influence volume: a sphere of radius
// range at the light entity's position. Spot lights use the same
// omnidirectional volume; the cone is not corrected for, so influence
// lists over-include geometry outside the actual cone. This matches
// the approximation the renderer has always shipped with.
func (s *Scene) lightSphere(i int) geom.Sphere {
	return geom.Sphere{
		Center: s.world.Position(s.lights[i].entity),
		Radius: s.lights[i].rng,
	}
}

// CreatePointLight creates a point light at an entity with default
// parameters and computes its initial influence list.
func (s *Scene) CreatePointLight(e Entity) LightID {
	s.lastLightID++
	l := pointLight{
		id:                s.lastLightID,
		entity:            e,
		diffuseColor:      math.Vec3{X: 1, Y: 1, Z: 1},
		specularColor:     math.Vec3{X: 1, Y: 1, Z: 1},
		diffuseIntensity:  1,
		specularIntensity: 1,
		attenuation:       2,
		rng:               10,
		fov:               2 * gomath.Pi,
	}
	s.lights = append(s.lights, l)
	s.influence = append(s.influence, nil)
	s.lightSlots[l.id] = len(s.lights) - 1
	s.DetectInfluence(l.id)
	s.log.Debug("point light created",
		zap.Int32("light", int32(l.id)),
		zap.Int32("entity", int32(e)))
	return l.id
}

// DestroyPointLight removes a light and its influence list.
func (s *Scene) DestroyPointLight(id LightID) {
	i := s.lightSlot(id)
	last := len(s.lights) - 1
	if i != last {
		s.lights[i] = s.lights[last]
		s.influence[i] = s.influence[last]
		s.lightSlots[s.lights[i].id] = i
	}
	s.lights = s.lights[:last]
	s.influence = s.influence[:last]
	delete(s.lightSlots, id)
}

// LightCount returns the number of point lights.
func (s *Scene) LightCount() int { return len(s.lights) }

// DetectInfluence rebuilds a light's influence list wholesale with a
// culling query restricted to the light's volume, all layers included.
func (s *Scene) DetectInfluence(id LightID) {
	i := s.lightSlot(id)
	buckets := s.index.CullSphereAsync(s.lightSphere(i), ^uint64(0)).Wait()
	list := s.influence[i][:0]
	for _, b := range buckets {
		list = append(list, b...)
	}
	s.influence[i] = list
}

// detachFromLights removes a handle from every light's influence list.
func (s *Scene) detachFromLights(h Handle) {
	for i := range s.influence {
		list := s.influence[i]
		for j, other := range list {
			if other == h {
				list[j] = list[len(list)-1]
				s.influence[i] = list[:len(list)-1]
				break
			}
		}
	}
}

// Influenced returns one draw record per mesh of every object in the
// light's influence list.
func (s *Scene) Influenced(id LightID) []DrawRecord {
	i := s.lightSlot(id)
	var records []DrawRecord
	for _, h := range s.influence[i] {
		o := &s.objects[h]
		for _, m := range o.meshes {
			records = append(records, DrawRecord{Handle: h, Mesh: m})
		}
	}
	return records
}

// InfluencedInFrustum is Influenced additionally intersected with a
// frustum, for shadow-casting sub-selection: an object contributes only
// when its bounding sphere also intersects the frustum.
func (s *Scene) InfluencedInFrustum(id LightID, frustum geom.Frustum) []DrawRecord {
	i := s.lightSlot(id)
	var records []DrawRecord
	for _, h := range s.influence[i] {
		o := &s.objects[h]
		sphere := s.boundingSphere(o)
		if !frustum.ContainsSphere(sphere.Center, sphere.Radius) {
			continue
		}
		for _, m := range o.meshes {
			records = append(records, DrawRecord{Handle: h, Mesh: m})
		}
	}
	return records
}

// InfluencedHandles returns the raw influence list of a light. The
// returned slice is owned by the scene; callers must not mutate it.
func (s *Scene) InfluencedHandles(id LightID) []Handle {
	return s.influence[s.lightSlot(id)]
}

// LightsInFrustum returns the lights whose influence sphere intersects
// the frustum.
func (s *Scene) LightsInFrustum(frustum geom.Frustum) []LightID {
	var ids []LightID
	for i := range s.lights {
		sphere := s.lightSphere(i)
		if frustum.ContainsSphere(sphere.Center, sphere.Radius) {
			ids = append(ids, s.lights[i].id)
		}
	}
	return ids
}

// ClosestLights returns up to max lights ordered by squared distance
// from a reference point.
func (s *Scene) ClosestLights(ref math.Vec3, max int) []LightID {
	if max <= 0 || len(s.lights) == 0 {
		return nil
	}
	ids := make([]LightID, 0, max)
	dists := make([]float32, 0, max)
	for i := range s.lights {
		d := ref.SquaredDistance(s.world.Position(s.lights[i].entity))
		if len(ids) < max {
			ids = append(ids, s.lights[i].id)
			dists = append(dists, d)
		} else if d < dists[len(dists)-1] {
			ids[len(ids)-1] = s.lights[i].id
			dists[len(dists)-1] = d
		} else {
			continue
		}
		for j := len(ids) - 1; j > 0 && dists[j-1] > dists[j]; j-- {
			dists[j-1], dists[j] = dists[j], dists[j-1]
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// LightEntity returns the entity the light is attached to.
func (s *Scene) LightEntity(id LightID) Entity { return s.lights[s.lightSlot(id)].entity }

// LightRange returns the light's influence radius.
func (s *Scene) LightRange(id LightID) float32 { return s.lights[s.lightSlot(id)].rng }

// SetLightRange changes the influence radius and recomputes the
// influence list, since membership depends on it.
func (s *Scene) SetLightRange(id LightID, r float32) {
	s.lights[s.lightSlot(id)].rng = r
	s.DetectInfluence(id)
}

// LightFOV returns the cone angle in radians (2π for omni lights).
func (s *Scene) LightFOV(id LightID) float32 { return s.lights[s.lightSlot(id)].fov }

// SetLightFOV sets the cone angle. Influence membership is not
// affected; see lightSphere for the cone approximation.
func (s *Scene) SetLightFOV(id LightID, fov float32) {
	s.lights[s.lightSlot(id)].fov = fov
}

// LightDiffuseColor returns the diffuse color.
func (s *Scene) LightDiffuseColor(id LightID) math.Vec3 {
	return s.lights[s.lightSlot(id)].diffuseColor
}

// SetLightDiffuseColor sets the diffuse color.
func (s *Scene) SetLightDiffuseColor(id LightID, c math.Vec3) {
	s.lights[s.lightSlot(id)].diffuseColor = c
}

// LightIntensity returns the diffuse intensity.
func (s *Scene) LightIntensity(id LightID) float32 {
	return s.lights[s.lightSlot(id)].diffuseIntensity
}

// SetLightIntensity sets the diffuse intensity.
func (s *Scene) SetLightIntensity(id LightID, v float32) {
	s.lights[s.lightSlot(id)].diffuseIntensity = v
}

// LightAttenuation returns the attenuation parameter.
func (s *Scene) LightAttenuation(id LightID) float32 {
	return s.lights[s.lightSlot(id)].attenuation
}

// SetLightAttenuation sets the attenuation parameter.
func (s *Scene) SetLightAttenuation(id LightID, v float32) {
	s.lights[s.lightSlot(id)].attenuation = v
}

// LightCastShadows reports whether the light casts shadows.
func (s *Scene) LightCastShadows(id LightID) bool {
	return s.lights[s.lightSlot(id)].castShadows
}

// SetLightCastShadows toggles shadow casting.
func (s *Scene) SetLightCastShadows(id LightID, v bool) {
	s.lights[s.lightSlot(id)].castShadows = v
}
