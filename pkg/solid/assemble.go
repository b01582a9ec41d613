package solid

import (
	"math"

	"github.com/cityforge/cityforge/pkg/geo"
	"github.com/cityforge/cityforge/pkg/params"
)

// Assemble constructs the representation described by spec for one
// building. All geometry is built in the building's local frame and
// rotated and translated into the global frame at the end, so roof
// constructions can assume an axis-aligned footprint.
//
// Parameter combinations that cannot be realised as a closed shell
// (a gabled roof on a non-rectangular footprint, a wall thickness that
// swallows the footprint) are reported as *GeometryError.
func Assemble(b *params.Building, spec Spec) (*Model, error) {
	fp := b.Footprint.EnsureCCW()
	if fp.Len() < 3 {
		return nil, geomErrf(b.ID, "footprint has %d vertices", fp.Len())
	}

	a := &assembler{b: b, fp: fp}
	if spec.Parts && spec.Family != FamilyPlanar {
		if err := a.indexParts(); err != nil {
			return nil, err
		}
	}

	m := &Model{BuildingID: b.ID, Spec: spec}
	switch spec.Family {
	case FamilyPlanar:
		a.planar(m, spec.Reference)
	case FamilyBlock:
		if err := a.volume(m, spec.Reference.Height(b), params.RoofFlat, false); err != nil {
			return nil, err
		}
	case FamilyRoof, FamilyDetailed:
		if err := a.volume(m, b.EaveHeight, b.RoofType, spec.Overhangs); err != nil {
			return nil, err
		}
	default:
		return nil, geomErrf(b.ID, "unknown family %v", spec.Family)
	}

	if spec.Interior && spec.Family == FamilyDetailed {
		if err := a.interior(m); err != nil {
			return nil, err
		}
	}

	a.place(m)
	if err := m.Check(); err != nil {
		return nil, geomErrf(b.ID, "watertightness audit failed: %v", err)
	}
	return m, nil
}

type assembler struct {
	b  *params.Building
	fp geo.Polygon

	// parts attached to each footprint edge, sorted by offset. Only
	// populated when Spec.Parts is set.
	byEdge map[int][]partRef
}

type partRef struct {
	params.Part
	idx int
}

// planar emits the footprint as a single horizontal surface at the
// reference height. The ground variant faces up like a footprint trace;
// the roof-edge variants carry the roof role.
func (a *assembler) planar(m *Model, ref Reference) {
	role := RoleGround
	if ref != RefGround {
		role = RoleRoof
	}
	m.Exterior.Add(role, "", ringAt(a.fp, ref.Height(a.b))...)
}

// volume builds the exterior shell: ground, walls up to the wall top,
// and the roof shape above. For the block family the roof type is
// forced flat and top is the reference height; for the roofed families
// top is the eave height.
func (a *assembler) volume(m *Model, top float64, rt params.RoofType, overhang bool) error {
	b := a.b

	// The roof sits on the footprint, or on the expanded footprint
	// when overhangs are requested. The shed plane is anchored to the
	// roof footprint so its high edge never exceeds the ridge height.
	roofFp := a.fp
	extended := overhang && (b.OverhangX > 0 || b.OverhangY > 0)
	if extended {
		roofFp = a.fp.OffsetOut(b.OverhangX, b.OverhangY)
	}

	topAt := func(geo.Point2) float64 { return top }
	if rt == params.RoofShed {
		topAt = shedPlane(roofFp, top, b.RidgeHeight)
	}

	// Walls, one per footprint edge, notched where a part attaches.
	walls := make([]Surface, a.fp.Len())
	for i := 0; i < a.fp.Len(); i++ {
		p, q := a.fp.Edge(i)
		walls[i] = Surface{Role: RoleWall, Ring: []geo.Point3{
			p.AtHeight(0), q.AtHeight(0), q.AtHeight(topAt(q)), p.AtHeight(topAt(p)),
		}}
	}
	if len(a.byEdge) > 0 {
		if err := a.attachParts(m, walls, topAt); err != nil {
			return err
		}
		m.Exterior.Add(RoleGround, "", a.unionGroundRing()...)
	} else {
		m.Exterior.Add(RoleGround, "", reversed(ringAt(a.fp, 0))...)
	}

	// A down-facing ring of ceiling surfaces bridges the wall tops to
	// the extended roof edge.
	if extended {
		a.addEaveRing(m, a.fp, roofFp, topAt)
	}

	var faces []Surface
	switch rt {
	case params.RoofFlat:
		faces = []Surface{{Role: RoleRoof, Ring: ringAt(roofFp, top)}}
	case params.RoofShed:
		faces = []Surface{{Role: RoleRoof, Ring: ringWith(roofFp, topAt)}}
	default:
		var err error
		faces, err = a.roofFaces(roofFp, rt, top, b.RidgeHeight)
		if err != nil {
			return err
		}
		if rt == params.RoofGabled && !extended {
			faces = a.foldGables(walls, faces, top)
		}
	}
	m.Exterior.Surfaces = append(m.Exterior.Surfaces, walls...)
	m.Exterior.Surfaces = append(m.Exterior.Surfaces, faces...)
	return nil
}

// foldGables absorbs each vertical gable triangle into the wall below
// it, so a gable end reads as one pentagonal wall surface rather than
// a rectangle with a loose triangle on top.
func (a *assembler) foldGables(walls, faces []Surface, eave float64) []Surface {
	rest := faces[:0]
	for _, f := range faces {
		if f.Role != RoleWall || len(f.Ring) != 3 {
			rest = append(rest, f)
			continue
		}
		// Base endpoints in ring order, apex is the remaining vertex.
		var base [2]geo.Point3
		var apex geo.Point3
		for i, p := range f.Ring {
			if quantize(p.Z-eave) != 0 {
				apex = p
				base[0] = f.Ring[(i+1)%3]
				base[1] = f.Ring[(i+2)%3]
			}
		}
		host := -1
		for i := 0; i < a.fp.Len(); i++ {
			p, q := a.fp.Edge(i)
			if pointKey(p.AtHeight(eave)) == pointKey(base[0]) &&
				pointKey(q.AtHeight(eave)) == pointKey(base[1]) {
				host = i
				break
			}
		}
		if host < 0 {
			rest = append(rest, f)
			continue
		}
		// Wall rings end with the top edge q@eave, p@eave; the apex
		// slots in between.
		ring := walls[host].Ring
		walls[host].Ring = append(ring[:len(ring)-1], apex, ring[len(ring)-1])
	}
	return rest
}

// shedPlane returns the inclined roof plane of a shed roof: the eave
// height on the west extreme of the given footprint rising linearly to
// the ridge height on the east extreme. Defined over the whole plane,
// so walls built on an inner footprint stay coplanar with the roof.
func shedPlane(fp geo.Polygon, eave, ridge float64) func(geo.Point2) float64 {
	lo, hi := fp.BoundingBox()
	run := hi.X - lo.X
	return func(p geo.Point2) float64 {
		return eave + (ridge-eave)*(p.X-lo.X)/run
	}
}

// addEaveRing emits the down-facing band between the wall tops and the
// roof edge. Both rings follow the roof plane, so each quad is planar.
func (a *assembler) addEaveRing(m *Model, inner, outer geo.Polygon, topAt func(geo.Point2) float64) {
	n := inner.Len()
	for i := 0; i < n; i++ {
		ia := inner.Vertices[i]
		ib := inner.Vertices[(i+1)%n]
		oa := outer.Vertices[i]
		ob := outer.Vertices[(i+1)%n]
		m.Exterior.Add(RoleRoof, "",
			ia.AtHeight(topAt(ia)), ib.AtHeight(topAt(ib)),
			ob.AtHeight(topAt(ob)), oa.AtHeight(topAt(oa)))
	}
}

// place moves the model from the local to the global frame: rotation
// about the footprint centroid, then translation to the origin.
// Heights are unaffected.
func (a *assembler) place(m *Model) {
	rot := a.b.Rotation * math.Pi / 180
	center := a.fp.Centroid()
	move := func(ring []geo.Point3) {
		for i, p := range ring {
			q := p.Plan()
			if rot != 0 {
				q = q.RotateAround(center, rot)
			}
			q = q.Add(a.b.Origin)
			ring[i] = geo.Point3{X: q.X, Y: q.Y, Z: p.Z}
		}
	}
	for i := range m.Exterior.Surfaces {
		move(m.Exterior.Surfaces[i].Ring)
	}
	for _, sh := range m.Interior {
		for i := range sh.Surfaces {
			move(sh.Surfaces[i].Ring)
		}
	}
	for i := range m.Floors {
		move(m.Floors[i].Ring)
	}
}

func ringAt(p geo.Polygon, z float64) []geo.Point3 {
	out := make([]geo.Point3, p.Len())
	for i, v := range p.Vertices {
		out[i] = v.AtHeight(z)
	}
	return out
}

func ringWith(p geo.Polygon, zAt func(geo.Point2) float64) []geo.Point3 {
	out := make([]geo.Point3, p.Len())
	for i, v := range p.Vertices {
		out[i] = v.AtHeight(zAt(v))
	}
	return out
}

func reversed(ring []geo.Point3) []geo.Point3 {
	out := make([]geo.Point3, len(ring))
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}
