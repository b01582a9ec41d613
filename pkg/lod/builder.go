package lod

import (
	"fmt"

	"github.com/cityforge/cityforge/pkg/params"
	"github.com/cityforge/cityforge/pkg/solid"
)

// ConsistencyError means a finer representation escaped the envelope
// of a coarser one. That is an assembler defect, not bad input: the
// building's output is withheld rather than shipped inconsistent.
type ConsistencyError struct {
	BuildingID string
	Coarse     string
	Fine       string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("building %s: %s escapes the envelope of %s", e.BuildingID, e.Fine, e.Coarse)
}

// Build assembles all sixteen representations of one building. Any
// assembly failure (*solid.GeometryError) or containment violation
// (*ConsistencyError) withholds the whole building.
func Build(b *params.Building) (map[string]*solid.Model, error) {
	models := make(map[string]*solid.Model, len(Points))
	for _, pt := range Points {
		m, err := solid.Assemble(b, pt.Spec)
		if err != nil {
			return nil, err
		}
		models[pt.Name] = m
	}
	if err := checkContainment(b, models); err != nil {
		return nil, err
	}
	return models, nil
}

// checkContainment verifies the cross-LOD envelope chain. The block
// series grows with its reference height; the ridge-height block bounds
// the detailed roof; the roof bounds the main body of the part union;
// overhang variants stay within their base model grown horizontally by
// the overhang lengths.
func checkContainment(b *params.Building, models map[string]*solid.Model) error {
	env := func(name string) solid.Envelope {
		return models[name].Exterior.Envelope()
	}
	within := func(coarse, fine string, e solid.Envelope) error {
		if !e.Contains(env(fine)) {
			return &ConsistencyError{BuildingID: b.ID, Coarse: coarse, Fine: fine}
		}
		return nil
	}

	chain := [][2]string{
		{"1.2", "1.1"},
		{"1.1", "1.0"},
		{"1.2", "2.0"},
	}
	for _, pair := range chain {
		if err := within(pair[0], pair[1], env(pair[0])); err != nil {
			return err
		}
	}

	// The part union may protrude horizontally, so only its main body
	// is held against the roof model.
	if !env("2.0").Contains(mainBodyEnvelope(models["3.0"])) {
		return &ConsistencyError{BuildingID: b.ID, Coarse: "2.0", Fine: "3.0"}
	}

	grown := func(name string) solid.Envelope {
		return env(name).ExpandXY(b.OverhangX, b.OverhangY)
	}
	overhung := [][2]string{
		{"1.2", "2.2"},
		{"2.1", "2.3"},
		{"3.0", "3.1"},
		{"3.0", "3.3"},
	}
	for _, pair := range overhung {
		if err := within(pair[0], pair[1], grown(pair[0])); err != nil {
			return err
		}
	}
	return nil
}

// mainBodyEnvelope bounds only the surfaces not owned by a part. The
// shared ground surface is skipped too: it traces the union outline,
// part protrusions included.
func mainBodyEnvelope(m *solid.Model) solid.Envelope {
	var sh solid.Shell
	for _, s := range m.Exterior.Surfaces {
		if s.Owner == "" && s.Role != solid.RoleGround {
			sh.Surfaces = append(sh.Surfaces, s)
		}
	}
	return sh.Envelope()
}
