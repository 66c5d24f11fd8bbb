package scene

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/sightline/pkg/math"
)

// objectSnapshot is the persisted form of one object slot: the entity
// key, the model path and any per-mesh material override paths. No
// transform is stored; the world matrix comes back from the transform
// store on restore.
type objectSnapshot struct {
	Entity int32  `yaml:"entity"`
	Model  string `yaml:"model,omitempty"`
	// Pointer so a mask explicitly set to 0 (never culled in) survives
	// the round trip; absent means the default mask.
	LayerMask *uint64  `yaml:"layer_mask,omitempty"`
	Materials []string `yaml:"materials,omitempty"`
}

type lightSnapshot struct {
	ID                LightID    `yaml:"id"`
	Entity            int32      `yaml:"entity"`
	Range             float32    `yaml:"range"`
	FOV               float32    `yaml:"fov"`
	DiffuseColor      [3]float32 `yaml:"diffuse_color,flow"`
	DiffuseIntensity  float32    `yaml:"diffuse_intensity"`
	SpecularColor     [3]float32 `yaml:"specular_color,flow"`
	SpecularIntensity float32    `yaml:"specular_intensity"`
	Attenuation       float32    `yaml:"attenuation"`
	CastShadows       bool       `yaml:"cast_shadows,omitempty"`
}

type snapshot struct {
	Objects []objectSnapshot `yaml:"objects"`
	Lights  []lightSnapshot  `yaml:"lights"`
}

// Snapshot serializes the scene's object and light definitions to
// YAML. Broad-phase and influence state are not persisted; both are
// reconstructed from this data on Restore.
func (s *Scene) Snapshot() ([]byte, error) {
	var snap snapshot
	for i := range s.objects {
		o := &s.objects[i]
		if o.dead() {
			continue
		}
		os := objectSnapshot{Entity: int32(o.entity)}
		if o.layerMask != DefaultLayerMask {
			mask := o.layerMask
			os.LayerMask = &mask
		}
		if o.model != nil {
			os.Model = o.model.Path()
		}
		if o.customMeshes {
			os.Materials = make([]string, len(o.meshes))
			for j := range o.meshes {
				os.Materials[j] = o.meshes[j].Material
			}
		}
		snap.Objects = append(snap.Objects, os)
	}
	for i := range s.lights {
		l := &s.lights[i]
		snap.Lights = append(snap.Lights, lightSnapshot{
			ID:                l.id,
			Entity:            int32(l.entity),
			Range:             l.rng,
			FOV:               l.fov,
			DiffuseColor:      [3]float32{l.diffuseColor.X, l.diffuseColor.Y, l.diffuseColor.Z},
			DiffuseIntensity:  l.diffuseIntensity,
			SpecularColor:     [3]float32{l.specularColor.X, l.specularColor.Y, l.specularColor.Z},
			SpecularIntensity: l.specularIntensity,
			Attenuation:       l.attenuation,
			CastShadows:       l.castShadows,
		})
	}
	return yaml.Marshal(&snap)
}

// Restore replaces the scene contents with a snapshot. Model paths are
// resolved through Config.Models; models that are already ready enter
// the culling index immediately, the rest follow through the event
// inbox. A corrupt snapshot (unparseable yaml, duplicate entities,
// more material overrides than the model has meshes) is a load error.
func (s *Scene) Restore(data []byte) error {
	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing snapshot: %w", err)
	}
	s.Clear()

	var errs error
	seen := make(map[Entity]bool)
	for _, os := range snap.Objects {
		e := Entity(os.Entity)
		if e < 0 {
			errs = multierr.Append(errs, fmt.Errorf("object with invalid entity %d", os.Entity))
			continue
		}
		if seen[e] {
			errs = multierr.Append(errs, fmt.Errorf("duplicate object entity %d", os.Entity))
			continue
		}
		seen[e] = true

		h := s.CreateObject(e)
		if os.LayerMask != nil {
			s.SetLayerMask(h, *os.LayerMask)
		}
		for j, material := range os.Materials {
			if material != "" {
				s.SetMeshMaterial(h, j, material)
			}
		}
		if os.Model == "" {
			continue
		}
		if s.cfg.Models == nil {
			errs = multierr.Append(errs, fmt.Errorf("entity %d: no model source to load %q", os.Entity, os.Model))
			continue
		}
		m, err := s.cfg.Models.Load(os.Model)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("entity %d: loading model %q: %w", os.Entity, os.Model, err))
			continue
		}
		if m.Ready() && len(os.Materials) > m.MeshCount() {
			errs = multierr.Append(errs, fmt.Errorf("entity %d: %d material overrides for %d meshes",
				os.Entity, len(os.Materials), m.MeshCount()))
			continue
		}
		s.SetModel(h, m)
	}

	for _, ls := range snap.Lights {
		if err := s.restoreLight(ls); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if errs != nil {
		s.log.Warn("snapshot restore finished with errors", zap.Error(errs))
	}
	return errs
}

func (s *Scene) restoreLight(ls lightSnapshot) error {
	if ls.ID <= 0 {
		return fmt.Errorf("light with invalid id %d", ls.ID)
	}
	if _, ok := s.lightSlots[ls.ID]; ok {
		return fmt.Errorf("duplicate light id %d", ls.ID)
	}
	l := pointLight{
		id:                ls.ID,
		entity:            Entity(ls.Entity),
		diffuseColor:      math.Vec3{X: ls.DiffuseColor[0], Y: ls.DiffuseColor[1], Z: ls.DiffuseColor[2]},
		specularColor:     math.Vec3{X: ls.SpecularColor[0], Y: ls.SpecularColor[1], Z: ls.SpecularColor[2]},
		diffuseIntensity:  ls.DiffuseIntensity,
		specularIntensity: ls.SpecularIntensity,
		attenuation:       ls.Attenuation,
		rng:               ls.Range,
		fov:               ls.FOV,
		castShadows:       ls.CastShadows,
	}
	s.lights = append(s.lights, l)
	s.influence = append(s.influence, nil)
	s.lightSlots[l.id] = len(s.lights) - 1
	if l.id > s.lastLightID {
		s.lastLightID = l.id
	}
	s.DetectInfluence(l.id)
	return nil
}
