package solid

import "github.com/cityforge/cityforge/pkg/params"

// Family selects the shape class of a representation.
type Family int

const (
	// FamilyPlanar is a single horizontal polygon at a reference
	// height, with no volume.
	FamilyPlanar Family = iota
	// FamilyBlock is a prismatic extrusion of the footprint to a
	// reference height, with a flat top regardless of roof type.
	FamilyBlock
	// FamilyRoof is the block to the eave plus the actual roof shape
	// up to the ridge.
	FamilyRoof
	// FamilyDetailed is the roof family with the full architectural
	// treatment; variants layer overhangs and interiors on top.
	FamilyDetailed
)

func (f Family) String() string {
	switch f {
	case FamilyPlanar:
		return "planar"
	case FamilyBlock:
		return "block"
	case FamilyRoof:
		return "roof"
	case FamilyDetailed:
		return "detailed"
	}
	return "unknown"
}

// Reference names the height a planar or block representation is
// pegged to.
type Reference string

const (
	RefGround Reference = "ground"
	RefEave   Reference = "eave"
	RefMean   Reference = "mean"
	RefRidge  Reference = "ridge"
)

// Height resolves the reference against a building's parameters.
func (r Reference) Height(b *params.Building) float64 {
	switch r {
	case RefGround:
		return 0
	case RefEave:
		return b.EaveHeight
	case RefMean:
		return b.MeanRoofHeight
	case RefRidge:
		return b.RidgeHeight
	}
	return 0
}

// Spec describes what a single representation of a building contains.
type Spec struct {
	Family    Family
	Reference Reference
	Parts     bool
	Overhangs bool
	Interior  bool
}
