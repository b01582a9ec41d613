package solid

import "github.com/cityforge/cityforge/pkg/geo"

// interior populates the model with the storey structure: one floor
// plan per storey, one thin slab solid between consecutive storeys,
// and the inner shell left when the walls are peeled off the
// footprint. Everything is derived from the footprint inset by the
// wall thickness.
func (a *assembler) interior(m *Model) error {
	b := a.b
	plan := a.fp.Inset(b.WallThickness)
	if plan.IsEmpty() || plan.Len() < 3 {
		return geomErrf(b.ID, "wall thickness %.2f swallows the footprint", b.WallThickness)
	}
	plan = plan.EnsureCCW()

	shellTop := b.EaveHeight - b.Joist
	if shellTop <= 0 {
		return geomErrf(b.ID, "joist %.2f at least as thick as the eave height", b.Joist)
	}
	m.Interior = append(m.Interior, prism(plan, 0, shellTop))

	for k := 1; k < b.Storeys; k++ {
		z := float64(k) * b.StoreyHeight
		if z >= shellTop {
			break
		}
		m.Interior = append(m.Interior, prism(plan, z-b.Joist, z))
	}

	for k := 0; k < b.Storeys; k++ {
		z := float64(k) * b.StoreyHeight
		if k > 0 && z >= shellTop {
			break
		}
		m.Floors = append(m.Floors, Surface{Role: RoleInteriorFloor, Ring: ringAt(plan, z)})
	}
	return nil
}

// prism extrudes a plan between two heights into a closed shell. The
// top carries the floor role (it is walked on), the underside reads as
// a ceiling.
func prism(plan geo.Polygon, z0, z1 float64) Shell {
	var sh Shell
	sh.Add(RoleRoof, "", reversed(ringAt(plan, z0))...)
	for i := 0; i < plan.Len(); i++ {
		p, q := plan.Edge(i)
		sh.Add(RoleWall, "", p.AtHeight(z0), q.AtHeight(z0), q.AtHeight(z1), p.AtHeight(z1))
	}
	sh.Add(RoleInteriorFloor, "", ringAt(plan, z1)...)
	return sh
}
