// Package lod enumerates the sixteen generated levels of detail and
// builds the full set of representations for a building, verifying
// that coarser models envelope finer ones before anything is emitted.
package lod

import (
	"strings"

	"github.com/cityforge/cityforge/pkg/solid"
)

// Point is one entry of the refined LOD series: a family, a reference
// height, and the feature toggles layered on top.
type Point struct {
	Name string
	Spec solid.Spec
}

// Major returns the whole-number LOD the point belongs to (0 to 3).
func (p Point) Major() int {
	return int(p.Name[0] - '0')
}

// FileTag returns the point name in a form usable in file names,
// e.g. "LOD2_3".
func (p Point) FileTag() string {
	return "LOD" + strings.ReplaceAll(p.Name, ".", "_")
}

// Points lists all sixteen LOD points in ascending order. Four
// families, four variants each: the planar series flattens the
// building at increasing reference heights, the block series extrudes
// to them, the roof series adds the actual roof shape, parts and
// overhangs, and the detailed series completes the union with
// overhangs and interiors.
var Points = []Point{
	{"0.0", solid.Spec{Family: solid.FamilyPlanar, Reference: solid.RefGround}},
	{"0.1", solid.Spec{Family: solid.FamilyPlanar, Reference: solid.RefEave}},
	{"0.2", solid.Spec{Family: solid.FamilyPlanar, Reference: solid.RefMean}},
	{"0.3", solid.Spec{Family: solid.FamilyPlanar, Reference: solid.RefRidge}},

	{"1.0", solid.Spec{Family: solid.FamilyBlock, Reference: solid.RefEave}},
	{"1.1", solid.Spec{Family: solid.FamilyBlock, Reference: solid.RefMean}},
	{"1.2", solid.Spec{Family: solid.FamilyBlock, Reference: solid.RefRidge}},
	{"1.3", solid.Spec{Family: solid.FamilyBlock, Reference: solid.RefMean, Parts: true}},

	{"2.0", solid.Spec{Family: solid.FamilyRoof, Reference: solid.RefEave}},
	{"2.1", solid.Spec{Family: solid.FamilyRoof, Reference: solid.RefEave, Parts: true}},
	{"2.2", solid.Spec{Family: solid.FamilyRoof, Reference: solid.RefEave, Overhangs: true}},
	{"2.3", solid.Spec{Family: solid.FamilyRoof, Reference: solid.RefEave, Parts: true, Overhangs: true}},

	{"3.0", solid.Spec{Family: solid.FamilyDetailed, Reference: solid.RefEave, Parts: true}},
	{"3.1", solid.Spec{Family: solid.FamilyDetailed, Reference: solid.RefEave, Parts: true, Overhangs: true}},
	{"3.2", solid.Spec{Family: solid.FamilyDetailed, Reference: solid.RefEave, Parts: true, Interior: true}},
	{"3.3", solid.Spec{Family: solid.FamilyDetailed, Reference: solid.RefEave, Parts: true, Overhangs: true, Interior: true}},
}

// ByName looks up a point by its series name, e.g. "2.1".
func ByName(name string) (Point, bool) {
	for _, p := range Points {
		if p.Name == name {
			return p, true
		}
	}
	return Point{}, false
}
