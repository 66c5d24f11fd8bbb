// Package cull implements the broad-phase culling index: one bounding
// sphere and layer mask per renderable handle, with an asynchronous
// chunked frustum query.
//
// The index is owned and mutated by a single goroutine (the frame loop).
// CullAsync fans the read-only sphere tests out to worker goroutines;
// callers must not mutate the index until the returned query has been
// waited on.
package cull

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Faultbox/sightline/pkg/geom"
)

// Handle identifies a renderable slot in the owning scene's object
// table. It is a distinct type so entity ids cannot be passed where a
// table slot is expected.
type Handle int32

// DefaultChunkSize is the number of entries a single culling job tests.
const DefaultChunkSize = 512

// Index holds the bounding entries in dense parallel slices so a chunk
// of sphere tests walks contiguous memory.
type Index struct {
	handles []Handle
	spheres []geom.Sphere
	masks   []uint64
	slots   map[Handle]int

	chunkSize int
}

// NewIndex creates an empty index. chunkSize <= 0 selects
// DefaultChunkSize.
func NewIndex(chunkSize int) *Index {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Index{
		slots:     make(map[Handle]int),
		chunkSize: chunkSize,
	}
}

// Len returns the number of entries.
func (x *Index) Len() int { return len(x.handles) }

// Contains reports whether the handle has an entry.
func (x *Index) Contains(h Handle) bool {
	_, ok := x.slots[h]
	return ok
}

// Add inserts an entry. Adding a handle that is already present is a
// programmer error and panics.
func (x *Index) Add(h Handle, sphere geom.Sphere, mask uint64) {
	if _, ok := x.slots[h]; ok {
		panic(fmt.Sprintf("cull: handle %d already in index", h))
	}
	x.slots[h] = len(x.handles)
	x.handles = append(x.handles, h)
	x.spheres = append(x.spheres, sphere)
	x.masks = append(x.masks, mask)
}

// Remove drops an entry, swapping the last entry into its slot.
// Removing an absent handle is a no-op so show/hide and model unload do
// not have to track whether the entry still exists.
func (x *Index) Remove(h Handle) {
	i, ok := x.slots[h]
	if !ok {
		return
	}
	last := len(x.handles) - 1
	if i != last {
		x.handles[i] = x.handles[last]
		x.spheres[i] = x.spheres[last]
		x.masks[i] = x.masks[last]
		x.slots[x.handles[i]] = i
	}
	x.handles = x.handles[:last]
	x.spheres = x.spheres[:last]
	x.masks = x.masks[:last]
	delete(x.slots, h)
}

// UpdateSphere replaces the bounding sphere of an existing entry.
// Panics on an absent handle.
func (x *Index) UpdateSphere(h Handle, sphere geom.Sphere) {
	x.spheres[x.slot(h)] = sphere
}

// SetMask replaces the layer mask of an existing entry.
// Panics on an absent handle.
func (x *Index) SetMask(h Handle, mask uint64) {
	x.masks[x.slot(h)] = mask
}

// Sphere returns the bounding sphere of an existing entry.
// Panics on an absent handle.
func (x *Index) Sphere(h Handle) geom.Sphere {
	return x.spheres[x.slot(h)]
}

func (x *Index) slot(h Handle) int {
	i, ok := x.slots[h]
	if !ok {
		panic(fmt.Sprintf("cull: handle %d not in index", h))
	}
	return i
}

// Clear removes all entries.
func (x *Index) Clear() {
	x.handles = x.handles[:0]
	x.spheres = x.spheres[:0]
	x.masks = x.masks[:0]
	clear(x.slots)
}

// Query is a pending culling query. Wait blocks until every chunk job
// has finished and returns the result buckets.
type Query struct {
	wg      sync.WaitGroup
	buckets [][]Handle
}

// Wait blocks until the query is drained. The union of the returned
// buckets is exactly the matching set; bucket boundaries are a
// parallelism artifact and not stable across calls.
func (q *Query) Wait() [][]Handle {
	q.wg.Wait()
	return q.buckets
}

// CullAsync begins a frustum query. An entry matches when its sphere
// intersects the frustum and its layer mask ANDs non-zero with mask.
// Each entry is tested exactly once and no handle appears in more than
// one bucket. An empty index completes immediately without spawning any
// jobs.
func (x *Index) CullAsync(frustum geom.Frustum, mask uint64) *Query {
	return x.cullAsync(mask, func(s geom.Sphere) bool {
		return frustum.ContainsSphere(s.Center, s.Radius)
	})
}

// CullSphereAsync begins a query using a sphere as the test volume.
// Point-light influence detection uses this with the light's
// {position, range} sphere.
func (x *Index) CullSphereAsync(volume geom.Sphere, mask uint64) *Query {
	return x.cullAsync(mask, func(s geom.Sphere) bool {
		return volume.Intersects(s)
	})
}

func (x *Index) cullAsync(mask uint64, test func(geom.Sphere) bool) *Query {
	q := &Query{}
	n := len(x.handles)
	if n == 0 {
		return q
	}

	chunk := x.chunkSize
	// Small scenes still get one chunk per worker so the test runs wide.
	if workers := runtime.NumCPU(); n/chunk < workers {
		if c := (n + workers - 1) / workers; c < chunk {
			chunk = c
		}
	}

	numChunks := (n + chunk - 1) / chunk
	q.buckets = make([][]Handle, numChunks)
	q.wg.Add(numChunks)
	for ci := 0; ci < numChunks; ci++ {
		start := ci * chunk
		end := min(start+chunk, n)
		go func(ci, start, end int) {
			defer q.wg.Done()
			var out []Handle
			for i := start; i < end; i++ {
				if x.masks[i]&mask != 0 && test(x.spheres[i]) {
					out = append(out, x.handles[i])
				}
			}
			q.buckets[ci] = out
		}(ci, start, end)
	}
	return q
}
