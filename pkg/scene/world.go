package scene

import "github.com/Faultbox/sightline/pkg/math"

// Entity identifies an entity in the external transform store. It is a
// distinct type from Handle: entity ids and object-table slots happen to
// share a numbering scheme, but the conversion lives in exactly one
// place (ObjectFor) so the two domains never mix by accident.
type Entity int32

// InvalidEntity is the sentinel for a dead or orphaned slot.
const InvalidEntity Entity = -1

// World is the external transform store. The scene reads transforms on
// demand and subscribes to movement and destruction notifications at
// construction. Both callbacks fire on the main thread.
type World interface {
	Matrix(e Entity) math.Mat4
	Position(e Entity) math.Vec3
	Scale(e Entity) float32

	OnEntityMoved(fn func(Entity))
	OnEntityDestroyed(fn func(Entity))
}
