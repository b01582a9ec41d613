package params

import (
	"fmt"

	"github.com/cityforge/cityforge/pkg/geo"
)

// RoofType enumerates the supported roof constructions.
type RoofType string

const (
	RoofFlat      RoofType = "Flat"
	RoofShed      RoofType = "Shed"
	RoofGabled    RoofType = "Gabled"
	RoofHipped    RoofType = "Hipped"
	RoofPyramidal RoofType = "Pyramidal"
)

// RoofTypes lists all roof types in a stable order.
var RoofTypes = []RoofType{RoofFlat, RoofShed, RoofGabled, RoofHipped, RoofPyramidal}

// ParseRoofType converts a string to a RoofType.
func ParseRoofType(s string) (RoofType, error) {
	for _, rt := range RoofTypes {
		if string(rt) == s {
			return rt, nil
		}
	}
	return "", fmt.Errorf("unknown roof type %q", s)
}

// HasRidge reports whether the roof type has a ridge above the eaves.
func (rt RoofType) HasRidge() bool {
	return rt != RoofFlat
}

// PartKind enumerates the supported building part kinds.
type PartKind string

const (
	PartGarage PartKind = "Garage"
	PartAlcove PartKind = "Alcove"
)

// Part is a secondary structure (garage or alcove) attached flush
// against one edge of its parent building's footprint. Parts form a
// tree of depth one: a part has exactly one parent and never nests.
type Part struct {
	ParentID string
	Kind     PartKind
	Edge     int     // index of the parent footprint edge
	Offset   float64 // start of the contact patch along the edge, meters
	Length   float64 // extent along the edge
	Width    float64 // protrusion outward from the edge
	Height   float64 // part eave height
	RoofType RoofType
}

// Building is the root parameter record: everything needed to construct
// every representation of one building. Created once by the generator
// (or loaded from a parameter file) and immutable afterwards.
type Building struct {
	ID       string
	Origin   geo.Point2 // placement of the footprint in the global frame
	Rotation float64    // degrees, counterclockwise about the footprint centroid

	// Footprint in local coordinates, simple, counterclockwise.
	Footprint geo.Polygon

	EaveHeight     float64
	RidgeHeight    float64
	MeanRoofHeight float64

	RoofType     RoofType
	RidgeSetback float64 // horizontal eave-to-ridge distance for hipped/pyramidal
	OverhangX    float64 // roof overhang beyond the west/east eaves
	OverhangY    float64 // roof overhang beyond the south/north eaves

	Storeys       int
	StoreyHeight  float64
	WallThickness float64
	Joist         float64 // inter-storey slab thickness

	Parts []Part
}

// RoofRise returns the vertical extent of the roof above the eaves.
func (b *Building) RoofRise() float64 {
	return b.RidgeHeight - b.EaveHeight
}

// PlacedFootprint returns the footprint in the global frame: rotated
// about its centroid and shifted to the building origin.
func (b *Building) PlacedFootprint() geo.Polygon {
	fp := b.Footprint
	if b.Rotation != 0 {
		fp = fp.RotateAround(fp.Centroid(), b.Rotation*degToRad)
	}
	return fp.Translate(b.Origin)
}

const degToRad = 3.14159265358979323846 / 180.0

// Validate checks the parameter invariants. It returns the first
// violation found, wrapped with the building ID.
func (b *Building) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("building %s: %s", b.ID, fmt.Sprintf(format, args...))
	}

	if b.ID == "" {
		return fmt.Errorf("building has empty ID")
	}
	if b.Footprint.IsEmpty() {
		return fail("footprint has fewer than 3 vertices")
	}
	if !b.Footprint.IsSimple() {
		return fail("footprint is self-intersecting")
	}
	if !b.Footprint.IsCounterClockwise() {
		return fail("footprint winding is not counterclockwise")
	}
	if b.EaveHeight < 0 {
		return fail("eave height %.2f is negative", b.EaveHeight)
	}
	if b.RoofType.HasRidge() {
		if b.RidgeHeight < b.EaveHeight {
			return fail("ridge height %.2f below eave height %.2f", b.RidgeHeight, b.EaveHeight)
		}
	}
	if b.MeanRoofHeight < b.EaveHeight || b.MeanRoofHeight > b.RidgeHeight {
		return fail("mean roof height %.2f outside [%.2f, %.2f]",
			b.MeanRoofHeight, b.EaveHeight, b.RidgeHeight)
	}
	if b.Storeys < 1 {
		return fail("storey count %d < 1", b.Storeys)
	}

	n := b.Footprint.Len()
	for i, p := range b.Parts {
		if p.ParentID != b.ID {
			return fail("part %d references parent %q", i, p.ParentID)
		}
		if p.Edge < 0 || p.Edge >= n {
			return fail("part %d edge index %d out of range", i, p.Edge)
		}
		if p.Length <= 0 || p.Width <= 0 || p.Height <= 0 {
			return fail("part %d has non-positive dimensions", i)
		}
		if p.Offset < 0 || p.Offset+p.Length > b.Footprint.EdgeLength(p.Edge) {
			return fail("part %d does not fit its edge", i)
		}
		if p.Height > b.EaveHeight {
			return fail("part %d taller than parent eaves", i)
		}
	}
	return nil
}

// Rect2 is an axis-aligned rectangle in the ground plane.
type Rect2 struct {
	Min geo.Point2
	Max geo.Point2
}

// StreetNetwork describes the decorative road network as an outline
// rectangle with rectangular block holes.
type StreetNetwork struct {
	Outline Rect2
	Holes   []Rect2
}

// Park is a decorative vegetated cell.
type Park struct {
	Bounds Rect2
	Height float64
}

// City is the root of a parameter file: an ordered building sequence
// plus optional decorative features.
type City struct {
	Buildings []Building
	Streets   *StreetNetwork
	Parks     []Park
}

// Validate checks every building in order.
func (c *City) Validate() error {
	for i := range c.Buildings {
		if err := c.Buildings[i].Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
