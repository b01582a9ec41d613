package solid

import (
	"math"

	"github.com/cityforge/cityforge/pkg/geo"
	"github.com/cityforge/cityforge/pkg/params"
)

// roofFaces builds the surfaces above the eave plane for the
// ridge-bearing roof types. Their open boundary is exactly the
// footprint ring at the eave height, traversed counterclockwise, so
// they close against the wall tops (or the eave ring of an overhang).
func (a *assembler) roofFaces(fp geo.Polygon, rt params.RoofType, eave, ridge float64) ([]Surface, error) {
	if ridge-eave < 1e-9 {
		return nil, geomErrf(a.b.ID, "%s roof with no rise above the eaves", rt)
	}
	switch rt {
	case params.RoofGabled:
		return a.ridgedFaces(fp, eave, ridge, -1)
	case params.RoofHipped:
		return a.ridgedFaces(fp, eave, ridge, a.b.RidgeSetback)
	case params.RoofPyramidal:
		return a.pyramidFaces(fp, eave, ridge)
	}
	return nil, geomErrf(a.b.ID, "no roof construction for type %s", rt)
}

// ridgedFaces covers gabled and hipped roofs on an axis-aligned
// rectangular footprint. The ridge runs parallel to the longer side.
// A negative setback means gabled: the ridge spans the full length and
// the ends are closed with vertical gable triangles. A positive
// setback pulls the ridge ends inward and closes them with inclined
// hip triangles.
func (a *assembler) ridgedFaces(fp geo.Polygon, eave, ridge, setback float64) ([]Surface, error) {
	if !a.axisAlignedRect(fp) {
		return nil, geomErrf(a.b.ID, "ridged roof requires an axis-aligned rectangular footprint")
	}
	lo, hi := fp.BoundingBox()

	// Construct with the ridge along Y; transpose first when the
	// footprint is wider than deep.
	flip := hi.X-lo.X > hi.Y-lo.Y
	if flip {
		lo, hi = transpose2(lo), transpose2(hi)
	}
	cx := (lo.X + hi.X) / 2

	gabled := setback < 0
	s := setback
	if gabled {
		s = 0
	} else if s <= 0 || 2*s >= hi.Y-lo.Y {
		return nil, geomErrf(a.b.ID, "ridge setback %.2f leaves no ridge on a %.2f deep footprint", s, hi.Y-lo.Y)
	}

	r0 := geo.Point3{X: cx, Y: lo.Y + s, Z: ridge}
	r1 := geo.Point3{X: cx, Y: hi.Y - s, Z: ridge}

	endRole := RoleRoof
	if gabled {
		endRole = RoleWall // vertical gable, belongs to the wall
	}
	faces := []Surface{
		{Role: RoleRoof, Ring: []geo.Point3{
			{X: lo.X, Y: lo.Y, Z: eave}, r0, r1, {X: lo.X, Y: hi.Y, Z: eave},
		}},
		{Role: RoleRoof, Ring: []geo.Point3{
			{X: hi.X, Y: lo.Y, Z: eave}, {X: hi.X, Y: hi.Y, Z: eave}, r1, r0,
		}},
		{Role: endRole, Ring: []geo.Point3{
			{X: lo.X, Y: lo.Y, Z: eave}, {X: hi.X, Y: lo.Y, Z: eave}, r0,
		}},
		{Role: endRole, Ring: []geo.Point3{
			{X: hi.X, Y: hi.Y, Z: eave}, {X: lo.X, Y: hi.Y, Z: eave}, r1,
		}},
	}
	if flip {
		transposeSurfaces(faces)
	}
	return faces, nil
}

// pyramidFaces fans one triangle per eave edge up to a single apex
// above the footprint centroid. Valid on any convex footprint.
func (a *assembler) pyramidFaces(fp geo.Polygon, eave, ridge float64) ([]Surface, error) {
	if !fp.IsConvex() {
		return nil, geomErrf(a.b.ID, "pyramidal roof requires a convex footprint")
	}
	apex := fp.Centroid().AtHeight(ridge)
	faces := make([]Surface, fp.Len())
	for i := 0; i < fp.Len(); i++ {
		p, q := fp.Edge(i)
		faces[i] = Surface{Role: RoleRoof, Ring: []geo.Point3{
			p.AtHeight(eave), q.AtHeight(eave), apex,
		}}
	}
	return faces, nil
}

// axisAlignedRect reports whether every vertex of a rectangular
// footprint sits on a corner of its bounding box.
func (a *assembler) axisAlignedRect(fp geo.Polygon) bool {
	if fp.Len() != 4 || !fp.IsRectangular() {
		return false
	}
	lo, hi := fp.BoundingBox()
	const eps = 1e-9
	for _, v := range fp.Vertices {
		onX := math.Abs(v.X-lo.X) < eps || math.Abs(v.X-hi.X) < eps
		onY := math.Abs(v.Y-lo.Y) < eps || math.Abs(v.Y-hi.Y) < eps
		if !onX || !onY {
			return false
		}
	}
	return true
}

func transpose2(p geo.Point2) geo.Point2 {
	return geo.Point2{X: p.Y, Y: p.X}
}

// transposeSurfaces swaps the X and Y axes of every ring. Swapping is
// a reflection, so each ring is also reversed to keep normals outward.
func transposeSurfaces(faces []Surface) {
	for i := range faces {
		ring := faces[i].Ring
		for j, p := range ring {
			ring[j] = geo.Point3{X: p.Y, Y: p.X, Z: p.Z}
		}
		faces[i].Reverse()
	}
}
