package scene

import "github.com/Faultbox/sightline/pkg/math"

// Mesh is a draw-ready mesh descriptor. Objects normally reference the
// model's own descriptors; a per-object copy exists only when materials
// have been overridden.
type Mesh struct {
	Name        string
	Material    string
	IndexOffset int32
	IndexCount  int32
}

// Model is a loaded mesh asset, owned by the external asset system.
// The scene only reads it: bounding radius for the culling sphere, the
// mesh list for draw expansion, and the LOD table.
//
// Implementations report load/unload transitions by posting a
// ModelEvent to every scene that references them; they never touch
// scene state directly.
type Model interface {
	// Path is the asset path, used as the stable key in snapshots.
	Path() string
	Ready() bool
	// BoundingRadius is the object-space bounding radius; the scene
	// scales it by the entity's world scale.
	BoundingRadius() float32
	MeshCount() int
	Mesh(i int) Mesh
	// LODRange maps a squared distance to the inclusive [from, to] mesh
	// index range of the selected level of detail. Implementations must
	// be monotonic: a larger squared distance never selects a range
	// with a smaller from index.
	LODRange(squaredDistance float32) (from, to int)
	BoneCount() int
}

// ModelSource resolves persisted model paths during Restore.
type ModelSource interface {
	Load(path string) (Model, error)
}

// ModelEvent reports one ready/unready transition of a model. Events
// may be posted from whatever goroutine finishes the load; the scene
// applies them on the main thread when DrainModelEvents runs.
type ModelEvent struct {
	Model Model
	Ready bool
}

// Pose is the per-object skeleton pose, allocated when a boned model
// becomes ready and owned exclusively by the object.
type Pose struct {
	Positions []math.Vec3
	Rotations [][4]float32
}

// NewPose allocates an identity pose for boneCount bones.
func NewPose(boneCount int) *Pose {
	p := &Pose{
		Positions: make([]math.Vec3, boneCount),
		Rotations: make([][4]float32, boneCount),
	}
	for i := range p.Rotations {
		p.Rotations[i][3] = 1
	}
	return p
}

// BoneCount returns the number of bones in the pose.
func (p *Pose) BoneCount() int { return len(p.Positions) }
