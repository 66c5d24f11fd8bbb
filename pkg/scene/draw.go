package scene

import (
	"sync"

	"github.com/Faultbox/sightline/pkg/geom"
	"github.com/Faultbox/sightline/pkg/math"
)

// DrawRecord is one (object, mesh) pair ready for draw submission.
// Records are produced per query and never persisted. For multi-mesh
// LOD ranges every mesh index in the selected [from, to] range yields
// one record, which lets adjacent submeshes blend across a LOD switch.
type DrawRecord struct {
	Handle Handle
	Mesh   Mesh
}

// Cull runs a broad-phase query and returns the handle buckets. The
// union of the buckets is exactly the set of visible objects on the
// masked layers; bucket boundaries are a parallelism artifact.
func (s *Scene) Cull(frustum geom.Frustum, layerMask uint64) [][]Handle {
	if s.index.Len() == 0 {
		return nil
	}
	return s.index.CullAsync(frustum, layerMask).Wait()
}

// DrawRecords culls the scene and expands every visible object into
// per-mesh draw records. lodRefPoint is the camera (or other reference)
// position LOD distances are measured from. One worker goroutine runs
// per non-empty bucket; workers read object state and write only their
// own bucket's pre-sized output slot, so no locks are needed. The call
// blocks until every worker finishes.
//
// Record order across buckets is unspecified; within a bucket it
// follows broad-phase order.
func (s *Scene) DrawRecords(frustum geom.Frustum, lodRefPoint math.Vec3, layerMask uint64) []DrawRecord {
	if s.index.Len() == 0 {
		return nil
	}
	buckets := s.index.CullAsync(frustum, layerMask).Wait()

	lodMul := s.lodMultiplier
	if frustum.FOV > 0 {
		// Narrower FOV means the view is zoomed in: scale squared
		// distances down so objects keep their perceived detail.
		t := frustum.FOV / s.cfg.ReferenceFOV
		lodMul *= t * t
	}

	outs := make([][]DrawRecord, len(buckets))
	var wg sync.WaitGroup
	for bi, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		wg.Add(1)
		go func(bi int, bucket []Handle) {
			defer wg.Done()
			records := make([]DrawRecord, 0, len(bucket))
			for _, h := range bucket {
				o := &s.objects[h]
				// Every handle in the index has a ready model; the
				// insertion gate in modelReady guarantees it.
				sq := o.matrix.Translation().SquaredDistance(lodRefPoint) * lodMul
				from, to := o.model.LODRange(sq)
				for mi := from; mi <= to; mi++ {
					records = append(records, DrawRecord{Handle: h, Mesh: o.meshes[mi]})
				}
			}
			outs[bi] = records
		}(bi, bucket)
	}
	wg.Wait()

	total := 0
	for _, r := range outs {
		total += len(r)
	}
	records := make([]DrawRecord, 0, total)
	for _, r := range outs {
		records = append(records, r...)
	}
	return records
}

// ObjectsInFrustum returns the entities of every visible object.
func (s *Scene) ObjectsInFrustum(frustum geom.Frustum) []Entity {
	var entities []Entity
	for _, bucket := range s.Cull(frustum, ^uint64(0)) {
		for _, h := range bucket {
			entities = append(entities, s.objects[h].entity)
		}
	}
	return entities
}
