package scene

import "go.uber.org/zap"

// entityMoved handles a movement notification from the transform
// store: refresh the cached world matrix, push the new bounding sphere
// into the broad-phase index, then re-evaluate light influence
// membership. Orphaned and not-ready objects are skipped. A moved light
// entity triggers a full influence recompute for that light.
func (s *Scene) entityMoved(e Entity) {
	if h := s.ObjectFor(e); h != InvalidHandle {
		o := &s.objects[h]
		if o.state == stateLive {
			o.matrix = s.world.Matrix(e)
			sphere := s.boundingSphere(o)
			if s.index.Contains(h) {
				s.index.UpdateSphere(h, sphere)
			}
			s.detachFromLights(h)
			for i := range s.lights {
				if s.lightSphere(i).Intersects(sphere) {
					s.influence[i] = append(s.influence[i], h)
				}
			}
		}
	}

	for i := range s.lights {
		if s.lights[i].entity == e {
			s.DetectInfluence(s.lights[i].id)
			break
		}
	}
}

// entityDestroyed marks the entity's object slot orphaned. The slot
// persists until an explicit DestroyObject reclaims it; movement
// notifications no longer touch it.
func (s *Scene) entityDestroyed(e Entity) {
	if h := s.ObjectFor(e); h != InvalidHandle {
		s.objects[h].state = stateOrphaned
	}
}

// PostModelEvent queues a model ready/unready transition. Safe to call
// from any goroutine; the transition is applied when the main thread
// drains the inbox.
func (s *Scene) PostModelEvent(ev ModelEvent) {
	s.eventsMu.Lock()
	s.events = append(s.events, ev)
	s.eventsMu.Unlock()
}

// DrainModelEvents applies queued model transitions. Call once per
// frame from the main thread, before issuing culling queries. Each
// load/unload transition fans out to every object referencing the
// model; state gates make a duplicated event harmless.
func (s *Scene) DrainModelEvents() {
	s.eventsMu.Lock()
	events := s.events
	s.events = nil
	s.eventsMu.Unlock()

	for _, ev := range events {
		for i := range s.objects {
			o := &s.objects[i]
			if o.model == nil || o.model != ev.Model {
				continue
			}
			h := Handle(i)
			switch {
			case ev.Ready && o.state == statePendingReady:
				s.modelReady(h)
			case !ev.Ready && o.state == stateLive:
				s.modelUnready(h)
			}
		}
	}
}

// modelReady promotes a pending object to live: cache the world
// matrix, insert the bounding sphere into the broad-phase index,
// allocate the pose for boned models, sync mesh descriptors against
// the model layout and seed light influence membership.
func (s *Scene) modelReady(h Handle) {
	o := &s.objects[h]
	o.matrix = s.world.Matrix(o.entity)
	sphere := s.boundingSphere(o)
	s.index.Add(h, sphere, o.layerMask)
	if bc := o.model.BoneCount(); bc > 0 {
		o.pose = NewPose(bc)
	}
	s.syncMeshes(o)
	o.state = stateLive

	for i := range s.lights {
		if s.lightSphere(i).Intersects(sphere) {
			s.influence[i] = append(s.influence[i], h)
		}
	}
	s.log.Debug("model ready",
		zap.Int32("handle", int32(h)),
		zap.String("model", o.model.Path()))
}

// modelUnready demotes a live object to pending: remove it from the
// broad-phase index and every influence list, free the pose, and drop
// the mirrored mesh list (override copies survive for the next ready).
func (s *Scene) modelUnready(h Handle) {
	o := &s.objects[h]
	if !o.customMeshes {
		o.meshes = nil
	}
	o.pose = nil
	s.detachFromLights(h)
	s.index.Remove(h)
	o.state = statePendingReady
	s.log.Debug("model unloaded",
		zap.Int32("handle", int32(h)),
		zap.String("model", o.model.Path()))
}

// syncMeshes rebuilds the object's mesh list from the model layout.
// Override materials set before this ready are carried over slot by
// slot; the list is truncated or grown to the model's mesh count.
func (s *Scene) syncMeshes(o *object) {
	count := o.model.MeshCount()
	meshes := make([]Mesh, count)
	for i := 0; i < count; i++ {
		meshes[i] = o.model.Mesh(i)
		if o.customMeshes && i < len(o.meshes) && o.meshes[i].Material != "" {
			meshes[i].Material = o.meshes[i].Material
		}
	}
	o.meshes = meshes
}
